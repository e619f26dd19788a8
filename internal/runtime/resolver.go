// Package runtime resolves and validates the Node.js environment the
// external CLI runs on.
package runtime

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"leetbridge/internal/invoker"
	appErr "leetbridge/pkg/errors"
	"leetbridge/pkg/utils/logger"
)

// Env is a validated runtime environment.
type Env struct {
	NodePath    string
	NodeVersion string
	CLIScript   string
	UseWSL      bool
}

// Options configures a Resolver.
type Options struct {
	// NodePath is an explicit executable path; empty means discover.
	NodePath string
	// ToolHome is the CLI package directory holding bin/leetcode.
	ToolHome string
	UseWSL   bool
	// MinNodeMajor is the lowest accepted Node.js major version.
	MinNodeMajor int
}

// Resolver locates a usable Node.js executable and the CLI entry script.
// Results are cached until Invalidate.
type Resolver struct {
	opts Options
	iv   *invoker.Invoker

	mu     sync.Mutex
	cached *Env
}

// NewResolver creates a resolver probing through the given invoker.
func NewResolver(opts Options, iv *invoker.Invoker) *Resolver {
	return &Resolver{opts: opts, iv: iv}
}

// Resolve returns a validated environment. Each candidate path is probed
// with `node -v` and the first one satisfying the version floor wins.
func (r *Resolver) Resolve(ctx context.Context) (Env, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached != nil {
		return *r.cached, nil
	}

	candidates, err := r.candidates(ctx)
	if err != nil {
		return Env{}, err
	}

	var lastErr error
	for _, candidate := range candidates {
		version, probeErr := r.probe(ctx, candidate)
		if probeErr != nil {
			lastErr = probeErr
			continue
		}
		major, parseErr := parseNodeMajor(version)
		if parseErr != nil {
			lastErr = appErr.Wrapf(parseErr, appErr.NodeProbeFailed,
				"unexpected version output from %s: %q", candidate, version)
			continue
		}
		if major < r.opts.MinNodeMajor {
			lastErr = appErr.Newf(appErr.NodeVersionTooOld,
				"node %s at %s is below required major %d", version, candidate, r.opts.MinNodeMajor)
			continue
		}

		script, scriptErr := r.locateCLI(ctx)
		if scriptErr != nil {
			return Env{}, scriptErr
		}
		env := Env{
			NodePath:    candidate,
			NodeVersion: version,
			CLIScript:   script,
			UseWSL:      r.opts.UseWSL,
		}
		r.cached = &env
		logger.Info(ctx, "node runtime resolved",
			zap.String("path", candidate),
			zap.String("version", version),
			zap.Bool("wsl", r.opts.UseWSL))
		return env, nil
	}

	if lastErr != nil {
		return Env{}, lastErr
	}
	return Env{}, appErr.EnvironmentError(appErr.NodeNotFound, r.opts.NodePath)
}

// Invalidate drops the cached environment, forcing re-resolution after a
// configuration change.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

// candidates builds the ordered probe list: explicit config path, PATH
// lookup, then platform fallbacks.
func (r *Resolver) candidates(ctx context.Context) ([]string, error) {
	if r.opts.NodePath != "" {
		p := r.opts.NodePath
		if r.opts.UseWSL {
			translated, err := ToWSLPath(ctx, r.iv, p)
			if err != nil {
				return nil, err
			}
			p = translated
		}
		return []string{p}, nil
	}

	if r.opts.UseWSL {
		// PATH of the host is meaningless inside the distribution
		return []string{"node", "/usr/local/bin/node", "/usr/bin/node"}, nil
	}

	var list []string
	if found, err := exec.LookPath("node"); err == nil {
		list = append(list, found)
	}
	switch goruntime.GOOS {
	case "windows":
		list = append(list,
			filepath.Join(os.Getenv("ProgramFiles"), "nodejs", "node.exe"))
	case "darwin":
		list = append(list, "/usr/local/bin/node", "/opt/homebrew/bin/node")
	default:
		list = append(list, "/usr/local/bin/node", "/usr/bin/node")
	}
	return dedup(list), nil
}

// probe runs `node -v` and returns the trimmed version string.
func (r *Resolver) probe(ctx context.Context, nodePath string) (string, error) {
	res, err := r.iv.Run(ctx, invoker.Request{Name: nodePath, Args: []string{"-v"}})
	if err != nil {
		return "", appErr.Wrapf(err, appErr.NodeNotFound, "probe %s failed: %v", nodePath, err)
	}
	if res.ExitCode != 0 {
		return "", appErr.Newf(appErr.NodeProbeFailed, "probe %s exited with %d", nodePath, res.ExitCode)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// locateCLI verifies the entry script exists and translates it for WSL.
func (r *Resolver) locateCLI(ctx context.Context) (string, error) {
	if r.opts.ToolHome == "" {
		return "", appErr.New(appErr.ToolHomeInvalid)
	}
	script := filepath.Join(r.opts.ToolHome, "bin", "leetcode")
	if _, err := os.Stat(script); err != nil {
		return "", appErr.EnvironmentError(appErr.CLIScriptNotFound, script)
	}
	if r.opts.UseWSL {
		return ToWSLPath(ctx, r.iv, script)
	}
	return script, nil
}

// parseNodeMajor extracts the major version from strings like "v18.17.0".
func parseNodeMajor(version string) (int, error) {
	v := strings.TrimPrefix(strings.TrimSpace(version), "v")
	head, _, _ := strings.Cut(v, ".")
	return strconv.Atoi(head)
}

func dedup(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	result := list[:0]
	for _, item := range list {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}
