// Package invoker runs external commands and normalizes their results
// across direct and WSL-wrapped execution.
package invoker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErr "leetbridge/pkg/errors"
	"leetbridge/pkg/utils/contextkey"
	"leetbridge/pkg/utils/logger"
)

// wslLauncher is the Windows launcher binary that forwards an argument
// vector into the default WSL distribution.
const wslLauncher = "wsl"

// waitDelay bounds how long Wait blocks on the output pipes after the
// process group was signaled.
const waitDelay = 3 * time.Second

// Request describes one subprocess invocation.
type Request struct {
	Name string
	Args []string
	Dir  string
	Env  []string // appended to the inherited environment
}

// Result carries the captured outcome of an invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Combined returns stdout and stderr joined for signature matching.
func (r Result) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	return r.Stdout + "\n" + r.Stderr
}

// Invoker executes subprocesses with a shared timeout and execution mode.
type Invoker struct {
	timeout time.Duration
	wslMode bool
}

// New creates an invoker. A zero timeout disables the per-invocation
// deadline.
func New(timeout time.Duration, wslMode bool) *Invoker {
	return &Invoker{timeout: timeout, wslMode: wslMode}
}

// WSLMode reports whether invocations are wrapped in the WSL launcher.
func (iv *Invoker) WSLMode() bool {
	return iv.wslMode
}

// wrap rewrites the argument vector for the active execution mode.
func (iv *Invoker) wrap(req Request) (string, []string) {
	if !iv.wslMode {
		return req.Name, req.Args
	}
	return wslLauncher, append([]string{req.Name}, req.Args...)
}

// Run executes the request in captured mode: stdout and stderr are
// collected and the exit status is normalized into Result.
func (iv *Invoker) Run(ctx context.Context, req Request) (Result, error) {
	ctx = context.WithValue(ctx, contextkey.InvocationID, uuid.NewString())
	if iv.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, iv.timeout)
		defer cancel()
	}

	name, args := iv.wrap(req)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = req.Dir
	cmd.Env = append(os.Environ(), req.Env...)
	// the CLI forks plugin children that inherit the output pipes;
	// cancellation must signal the whole group and Wait must not hang
	// on their copy of the pipe
	setProcGroup(cmd)
	cmd.Cancel = func() error { return killProcGroup(cmd) }
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCodeFromErr(runErr, cmd.ProcessState),
		Duration: time.Since(start),
	}

	logger.Info(ctx, "cli invocation finished",
		zap.String("cmd", name),
		zap.String("args", strings.Join(args, " ")),
		zap.Int("exit", res.ExitCode),
		zap.Duration("duration", res.Duration))

	if runErr != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return res, appErr.Wrap(runErr, appErr.CommandTimeout).
				WithDetail("cmd", name).
				WithDetail("timeout", iv.timeout.String())
		case errors.Is(ctx.Err(), context.Canceled):
			return res, appErr.Wrap(runErr, appErr.CommandKilled).WithDetail("cmd", name)
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return res, appErr.InvocationError(runErr, truncate(res.Stdout), truncate(res.Stderr)).
				WithDetail("exit", res.ExitCode)
		}
		// the process never ran
		return res, appErr.Wrap(runErr, appErr.CommandStartFailed).WithDetail("cmd", name)
	}
	return res, nil
}

// RunInteractive executes the request in streaming mode: stdin is fed to
// the process and output goes to the caller's writer as it is produced.
// It returns the process exit code.
func (iv *Invoker) RunInteractive(ctx context.Context, req Request, stdin io.Reader, output io.Writer) (int, error) {
	ctx = context.WithValue(ctx, contextkey.InvocationID, uuid.NewString())
	if iv.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, iv.timeout)
		defer cancel()
	}

	name, args := iv.wrap(req)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = req.Dir
	cmd.Env = append(os.Environ(), req.Env...)
	setProcGroup(cmd)
	cmd.Cancel = func() error { return killProcGroup(cmd) }
	cmd.WaitDelay = waitDelay
	cmd.Stdin = stdin
	cmd.Stdout = output
	cmd.Stderr = output

	start := time.Now()
	runErr := cmd.Run()
	exit := exitCodeFromErr(runErr, cmd.ProcessState)

	logger.Info(ctx, "interactive invocation finished",
		zap.String("cmd", name),
		zap.Int("exit", exit),
		zap.Duration("duration", time.Since(start)))

	if runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return exit, appErr.Wrap(runErr, appErr.CommandTimeout).WithDetail("cmd", name)
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			// callers inspect the streamed output themselves
			return exit, nil
		}
		if errors.Is(runErr, io.ErrClosedPipe) || errors.Is(runErr, io.EOF) {
			return exit, appErr.Wrap(runErr, appErr.InteractiveEOF)
		}
		return exit, appErr.Wrap(runErr, appErr.CommandStartFailed).WithDetail("cmd", name)
	}
	return exit, nil
}

// exitCodeFromErr normalizes the process exit status.
func exitCodeFromErr(err error, state *os.ProcessState) int {
	if state != nil {
		return state.ExitCode()
	}
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

const outputDetailLimit = 2048

// truncate bounds captured output attached to errors.
func truncate(s string) string {
	if len(s) <= outputDetailLimit {
		return s
	}
	return s[:outputDetailLimit] + "..."
}
