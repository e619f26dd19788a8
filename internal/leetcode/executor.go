// Package leetcode adapts editor-side operations onto the external CLI:
// every operation builds an argument vector, runs it through the
// invoker, and post-processes the captured output.
package leetcode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"leetbridge/internal/cli/config"
	"leetbridge/internal/invoker"
	"leetbridge/internal/metadata"
	"leetbridge/internal/runtime"
	appErr "leetbridge/pkg/errors"
)

// LoginMethod selects the CLI sign-in flow.
type LoginMethod string

const (
	LoginAccount  LoginMethod = "account"
	LoginCookie   LoginMethod = "cookie"
	LoginGitHub   LoginMethod = "github"
	LoginLinkedIn LoginMethod = "linkedin"
)

// Credentials feed the interactive sign-in flow. For cookie login the
// Password field carries the session cookie.
type Credentials struct {
	Username string
	Password string
}

// ShowOptions control problem rendering.
type ShowOptions struct {
	Language string
	// OutDir generates a solution file into the directory when set.
	OutDir string
	// CodeOnly requests only the code template.
	CodeOnly bool
}

// ShowResult is the outcome of ShowProblem.
type ShowResult struct {
	// FilePath is the generated solution file, when one was produced.
	FilePath string
	Raw      string
}

// cnEndpointPlugin is the CLI plugin that retargets it at the China
// endpoint; disabling it restores the default endpoint.
const cnEndpointPlugin = "leetcode.cn"

// Executor is the adapter around the external CLI.
type Executor struct {
	cfg      config.Config
	resolver *runtime.Resolver
	iv       *invoker.Invoker
}

// New creates an executor.
func New(cfg config.Config, resolver *runtime.Resolver, iv *invoker.Invoker) *Executor {
	return &Executor{cfg: cfg, resolver: resolver, iv: iv}
}

// request assembles the full invocation for a CLI argument vector.
func (e *Executor) request(ctx context.Context, cliArgs []string) (invoker.Request, error) {
	env, err := e.resolver.Resolve(ctx)
	if err != nil {
		return invoker.Request{}, err
	}
	extra, err := e.cfg.ExtraArgv()
	if err != nil {
		return invoker.Request{}, err
	}
	args := append([]string{env.CLIScript}, cliArgs...)
	args = append(args, extra...)
	return invoker.Request{
		Name: env.NodePath,
		Args: args,
		Dir:  e.cfg.WorkspaceFolder,
	}, nil
}

// RunRaw runs a CLI argument vector in captured mode with cache repair
// and returns stdout.
func (e *Executor) RunRaw(ctx context.Context, cliArgs ...string) (string, error) {
	req, err := e.request(ctx, cliArgs)
	if err != nil {
		return "", err
	}

	res, runErr := e.iv.Run(ctx, req)
	if needsRepair(res.Combined()) {
		if repairErr := e.repairPluginCache(ctx); repairErr != nil {
			return "", repairErr
		}
		res, runErr = e.iv.Run(ctx, req)
	}
	if runErr != nil {
		return "", runErr
	}
	if err := classifyOutput(res.Combined()); err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// classifyOutput maps CLI error markers onto coded errors.
func classifyOutput(output string) error {
	lowered := strings.ToLower(output)
	switch {
	case strings.Contains(lowered, "session expired"):
		return appErr.New(appErr.SessionExpired)
	case strings.Contains(lowered, "login required"), strings.Contains(lowered, "please login"):
		return appErr.NotSignedInError()
	case strings.Contains(output, "[ERROR]"):
		return appErr.New(appErr.CommandFailed).WithDetail("output", head(output))
	}
	return nil
}

// Version returns the CLI's own version string.
func (e *Executor) Version(ctx context.Context) (string, error) {
	out, err := e.RunRaw(ctx, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ListOptions filter the problem listing. Query carries the CLI's
// single-letter filter flags (e=easy, m=medium, h=hard, d=done,
// s=starred, L=locked), Tag narrows by topic tag, Keyword is a
// free-text title match.
type ListOptions struct {
	Query   string
	Tag     string
	Keyword string
}

// ListProblems lists problems known to the active endpoint.
func (e *Executor) ListProblems(ctx context.Context, opts ListOptions) ([]Problem, error) {
	args := []string{"list"}
	if opts.Query != "" {
		args = append(args, "-q", opts.Query)
	}
	if opts.Tag != "" {
		args = append(args, "-t", opts.Tag)
	}
	if opts.Keyword != "" {
		args = append(args, opts.Keyword)
	}
	out, err := e.RunRaw(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parseProblems(out)
}

// DifficultyLevels converts listed problems into the shape the metadata
// index groups by.
func DifficultyLevels(problems []Problem) []metadata.ProblemLevel {
	levels := make([]metadata.ProblemLevel, 0, len(problems))
	for _, p := range problems {
		levels = append(levels, metadata.ProblemLevel{ID: p.ID, Level: p.Difficulty})
	}
	return levels
}

// ShowProblem renders one problem, optionally generating a solution file.
func (e *Executor) ShowProblem(ctx context.Context, id int, opts ShowOptions) (ShowResult, error) {
	if id <= 0 {
		return ShowResult{}, appErr.ValidationError("id", "must be positive")
	}
	args := []string{"show", strconv.Itoa(id)}
	if opts.CodeOnly {
		args = append(args, "-c")
	} else {
		args = append(args, "-g", "-x")
	}
	if opts.Language != "" {
		args = append(args, "-l", opts.Language)
	}
	if opts.OutDir != "" {
		outDir, err := e.hostToCLIPath(ctx, opts.OutDir)
		if err != nil {
			return ShowResult{}, err
		}
		args = append(args, "-o", outDir)
	}

	out, err := e.RunRaw(ctx, args...)
	if err != nil {
		return ShowResult{}, err
	}
	result := ShowResult{Raw: out}
	if p := parseSourcePath(out); p != "" {
		hostPath, err := e.cliToHostPath(ctx, p)
		if err != nil {
			return ShowResult{}, err
		}
		result.FilePath = hostPath
	}
	return result, nil
}

// SubmitSolution submits a solution file and returns the judge report.
func (e *Executor) SubmitSolution(ctx context.Context, filePath string) (string, error) {
	p, err := e.hostToCLIPath(ctx, filePath)
	if err != nil {
		return "", err
	}
	return e.RunRaw(ctx, "submit", p)
}

// TestSolution runs a solution against the default or custom test cases.
// Custom cases use the CLI's newline escape convention.
func (e *Executor) TestSolution(ctx context.Context, filePath, cases string) (string, error) {
	p, err := e.hostToCLIPath(ctx, filePath)
	if err != nil {
		return "", err
	}
	args := []string{"test", p}
	if cases != "" {
		args = append(args, "-t", strings.ReplaceAll(cases, "\n", `\n`))
	}
	return e.RunRaw(ctx, args...)
}

// StarProblem marks or unmarks a problem as favorite.
func (e *Executor) StarProblem(ctx context.Context, id int, star bool) error {
	if id <= 0 {
		return appErr.ValidationError("id", "must be positive")
	}
	args := []string{"star", strconv.Itoa(id)}
	if !star {
		args = append(args, "-d")
	}
	_, err := e.RunRaw(ctx, args...)
	return err
}

// ListSessions lists the account's practice sessions.
func (e *Executor) ListSessions(ctx context.Context) ([]Session, error) {
	out, err := e.RunRaw(ctx, "session")
	if err != nil {
		return nil, err
	}
	return parseSessions(out)
}

// CreateSession creates a named practice session.
func (e *Executor) CreateSession(ctx context.Context, name string) error {
	if name == "" {
		return appErr.ValidationError("name", "required")
	}
	if _, err := e.RunRaw(ctx, "session", "-c", name); err != nil {
		return appErr.Wrap(err, appErr.SessionCreateFailed)
	}
	return nil
}

// EnableSession activates a session by id.
func (e *Executor) EnableSession(ctx context.Context, id string) error {
	if id == "" {
		return appErr.ValidationError("id", "required")
	}
	out, err := e.RunRaw(ctx, "session", "-e", id)
	if err != nil {
		return appErr.Wrap(err, appErr.SessionSwitchFailed)
	}
	if strings.Contains(strings.ToLower(out), "not found") {
		return appErr.Newf(appErr.SessionNotFound, "session %s not found", id)
	}
	return nil
}

// CurrentUser returns the signed-in username.
func (e *Executor) CurrentUser(ctx context.Context) (string, error) {
	out, err := e.RunRaw(ctx, "user")
	if err != nil {
		return "", err
	}
	return parseCurrentUser(out)
}

// SignOut drops the CLI's stored credentials.
func (e *Executor) SignOut(ctx context.Context) error {
	_, err := e.RunRaw(ctx, "user", "-L")
	return err
}

// SignIn drives the CLI's interactive sign-in. Credentials are written
// to the child's stdin; output is streamed to progress (may be nil) and
// inspected for the result.
func (e *Executor) SignIn(ctx context.Context, method LoginMethod, creds Credentials, progress io.Writer) (string, error) {
	flag, err := loginFlag(method)
	if err != nil {
		return "", err
	}
	if creds.Username == "" || creds.Password == "" {
		return "", appErr.ValidationError("credentials", "username and password/cookie required")
	}

	req, err := e.request(ctx, []string{"user", flag})
	if err != nil {
		return "", err
	}

	stdin := strings.NewReader(creds.Username + "\n" + creds.Password + "\n")
	var captured bytes.Buffer
	output := io.Writer(&captured)
	if progress != nil {
		output = io.MultiWriter(&captured, progress)
	}

	exit, err := e.iv.RunInteractive(ctx, req, stdin, output)
	if err != nil {
		return "", err
	}

	out := captured.String()
	if user, parseErr := parseCurrentUser(out); parseErr == nil {
		return user, nil
	}
	if strings.Contains(out, "Successfully login") {
		return creds.Username, nil
	}
	return "", appErr.Newf(appErr.SignInFailed, "sign in via %s failed (exit %d)", method, exit).
		WithDetail("output", head(out))
}

func loginFlag(method LoginMethod) (string, error) {
	switch method {
	case LoginAccount, "":
		return "-l", nil
	case LoginCookie:
		return "-c", nil
	case LoginGitHub:
		return "-g", nil
	case LoginLinkedIn:
		return "-i", nil
	default:
		return "", appErr.Newf(appErr.LoginUnsupported, "unknown login method %q", method)
	}
}

// SwitchEndpoint retargets the CLI by toggling the endpoint plugin.
func (e *Executor) SwitchEndpoint(ctx context.Context, endpoint string) error {
	var args []string
	switch endpoint {
	case "leetcode":
		args = []string{"plugin", "-d", cnEndpointPlugin}
	case "leetcode-cn":
		args = []string{"plugin", "-e", cnEndpointPlugin}
	default:
		return appErr.Newf(appErr.EndpointUnknown, "unknown endpoint %q", endpoint)
	}
	if _, err := e.RunRaw(ctx, args...); err != nil {
		return appErr.Wrap(err, appErr.EndpointSwitchFailed)
	}
	return nil
}

// hostToCLIPath translates a host path into the view the CLI sees.
func (e *Executor) hostToCLIPath(ctx context.Context, p string) (string, error) {
	if !e.iv.WSLMode() {
		return p, nil
	}
	translated, err := runtime.ToWSLPath(ctx, e.iv, p)
	if err != nil {
		return "", err
	}
	return translated, nil
}

// cliToHostPath translates a CLI-reported path back into the host view.
func (e *Executor) cliToHostPath(ctx context.Context, p string) (string, error) {
	if !e.iv.WSLMode() {
		return p, nil
	}
	return runtime.ToWindowsPath(ctx, e.iv, p)
}

// String renders a problem row the way pickers display it.
func (p Problem) String() string {
	mark := " "
	if p.Accepted {
		mark = "✔"
	} else if p.Attempted {
		mark = "✘"
	}
	return fmt.Sprintf("%s [%4d] %-60s %-6s (%.2f %%)", mark, p.ID, p.Title, p.Difficulty, p.AcceptRate)
}
