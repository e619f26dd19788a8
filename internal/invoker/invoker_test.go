package invoker

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	appErr "leetbridge/pkg/errors"
)

func TestRunCaptured(t *testing.T) {
	iv := New(10*time.Second, false)
	res, err := iv.Run(context.Background(), Request{
		Name: "sh",
		Args: []string{"-c", "echo out; echo err 1>&2"},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "out" {
		t.Fatalf("stdout = %q", res.Stdout)
	}
	if strings.TrimSpace(res.Stderr) != "err" {
		t.Fatalf("stderr = %q", res.Stderr)
	}
	if res.ExitCode != 0 {
		t.Fatalf("exit = %d", res.ExitCode)
	}
	if res.Duration <= 0 {
		t.Fatal("duration should be measured")
	}
}

func TestRunNonZeroExit(t *testing.T) {
	iv := New(10*time.Second, false)
	res, err := iv.Run(context.Background(), Request{
		Name: "sh",
		Args: []string{"-c", "echo broken 1>&2; exit 3"},
	})
	if !appErr.Is(err, appErr.CommandFailed) {
		t.Fatalf("expected CommandFailed, got %v", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("exit = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "broken") {
		t.Fatalf("stderr should be captured even on failure, got %q", res.Stderr)
	}
}

func TestRunStartFailure(t *testing.T) {
	iv := New(10*time.Second, false)
	_, err := iv.Run(context.Background(), Request{Name: "definitely-not-a-binary-xyz"})
	if !appErr.Is(err, appErr.CommandStartFailed) {
		t.Fatalf("expected CommandStartFailed, got %v", err)
	}
}

func TestRunTimeout(t *testing.T) {
	iv := New(100*time.Millisecond, false)
	_, err := iv.Run(context.Background(), Request{
		Name: "sh",
		Args: []string{"-c", "sleep 5"},
	})
	if !appErr.Is(err, appErr.CommandTimeout) {
		t.Fatalf("expected CommandTimeout, got %v", err)
	}
}

func TestRunEnvAppended(t *testing.T) {
	iv := New(10*time.Second, false)
	res, err := iv.Run(context.Background(), Request{
		Name: "sh",
		Args: []string{"-c", "echo $LEETBRIDGE_TEST_VAR"},
		Env:  []string{"LEETBRIDGE_TEST_VAR=42"},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "42" {
		t.Fatalf("stdout = %q, want 42", res.Stdout)
	}
}

func TestRunInteractive(t *testing.T) {
	iv := New(10*time.Second, false)
	var output bytes.Buffer
	exit, err := iv.RunInteractive(context.Background(), Request{Name: "cat"},
		strings.NewReader("hello\n"), &output)
	if err != nil {
		t.Fatalf("interactive run failed: %v", err)
	}
	if exit != 0 {
		t.Fatalf("exit = %d", exit)
	}
	if output.String() != "hello\n" {
		t.Fatalf("output = %q", output.String())
	}
}

func TestRunInteractiveNonZeroExitIsNotError(t *testing.T) {
	iv := New(10*time.Second, false)
	var output bytes.Buffer
	exit, err := iv.RunInteractive(context.Background(), Request{
		Name: "sh",
		Args: []string{"-c", "echo denied; exit 1"},
	}, strings.NewReader(""), &output)
	if err != nil {
		t.Fatalf("interactive run should let callers inspect output, got %v", err)
	}
	if exit != 1 {
		t.Fatalf("exit = %d, want 1", exit)
	}
	if !strings.Contains(output.String(), "denied") {
		t.Fatalf("output = %q", output.String())
	}
}

func TestWrapWSLMode(t *testing.T) {
	direct := New(0, false)
	name, args := direct.wrap(Request{Name: "node", Args: []string{"cli.js", "list"}})
	if name != "node" || len(args) != 2 {
		t.Fatalf("direct wrap changed argv: %s %v", name, args)
	}

	wsl := New(0, true)
	name, args = wsl.wrap(Request{Name: "node", Args: []string{"cli.js", "list"}})
	if name != "wsl" {
		t.Fatalf("wsl wrap name = %q", name)
	}
	want := []string{"node", "cli.js", "list"}
	if len(args) != len(want) {
		t.Fatalf("wsl wrap args = %v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestCombined(t *testing.T) {
	res := Result{Stdout: "a", Stderr: "b"}
	if res.Combined() != "a\nb" {
		t.Fatalf("combined = %q", res.Combined())
	}
	if (Result{Stdout: "a"}).Combined() != "a" {
		t.Fatal("combined without stderr should be stdout")
	}
}
