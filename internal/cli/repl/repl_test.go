package repl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"leetbridge/internal/cli/command"
	"leetbridge/internal/cli/config"
	"leetbridge/internal/cli/state"
	"leetbridge/internal/invoker"
	"leetbridge/internal/leetcode"
	"leetbridge/internal/runtime"
	appErr "leetbridge/pkg/errors"
)

func writeScript(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write script failed: %v", err)
	}
}

// newTestSession builds a session around a shell script standing in for
// the Node runtime. In WSL mode a fake `wsl` launcher that execs its
// argument vector is put on PATH.
func newTestSession(t *testing.T, body string, wslMode bool) *Session {
	t.Helper()
	dir := t.TempDir()

	toolHome := filepath.Join(dir, "cli")
	if err := os.MkdirAll(filepath.Join(toolHome, "bin"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	writeScript(t, filepath.Join(toolHome, "bin", "leetcode"), "#!/usr/bin/env node\n")

	script := filepath.Join(dir, "node")
	writeScript(t, script, "#!/bin/sh\nif [ \"$1\" = \"-v\" ]; then echo \"v18.17.0\"; exit 0; fi\nshift\n"+body+"\n")

	if wslMode {
		writeScript(t, filepath.Join(dir, "wsl"), "#!/bin/sh\nexec \"$@\"\n")
		t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}

	cfg := config.Config{NodePath: script, ToolHome: toolHome, MinNodeMajor: 12, UseWSL: wslMode}
	iv := invoker.New(10*time.Second, wslMode)
	resolver := runtime.NewResolver(runtime.Options{
		NodePath:     script,
		ToolHome:     toolHome,
		UseWSL:       wslMode,
		MinNodeMajor: 12,
	}, iv)
	exec := leetcode.New(cfg, resolver, iv)

	sessionState := &state.SessionState{Endpoint: "leetcode", User: "grace"}
	return New(exec, command.Registry(), sessionState, filepath.Join(dir, "state.json"),
		filepath.Join(toolHome, "lib", "companies.js"), nil)
}

func TestDispatchSubmitTranslatesWindowsPath(t *testing.T) {
	s := newTestSession(t, `echo "$@"`, true)

	out, err := s.dispatch(context.Background(), s.commands["submit create"],
		command.Params{"file": `C:\Users\dev\1.two-sum.go`})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !strings.Contains(out, "/mnt/c/Users/dev/1.two-sum.go") {
		t.Fatalf("file path was not translated: %q", out)
	}
	if strings.Contains(out, `C:\`) {
		t.Fatalf("windows path leaked into argv: %q", out)
	}
}

func TestDispatchShowReturnsGeneratedPath(t *testing.T) {
	s := newTestSession(t, `echo "* Source Code:       /home/dev/ws/1.two-sum.go"`, false)

	out, err := s.dispatch(context.Background(), s.commands["problem show"],
		command.Params{"id": "1", "lang": "golang", "out": "/home/dev/ws"})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !strings.Contains(out, "generated: /home/dev/ws/1.two-sum.go") {
		t.Fatalf("generated path missing: %q", out)
	}
}

func TestDispatchListRendersRows(t *testing.T) {
	s := newTestSession(t, `echo "      ✔ [   1] Two Sum                 Easy   (46.71 %)"`, false)

	out, err := s.dispatch(context.Background(), s.commands["problem list"], command.Params{})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !strings.Contains(out, "Two Sum") {
		t.Fatalf("listing = %q", out)
	}
}

func TestDispatchWhoami(t *testing.T) {
	s := newTestSession(t, `echo " ✔ You are now login as grace"`, false)

	out, err := s.dispatch(context.Background(), s.commands["user whoami"], command.Params{})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if out != "grace" {
		t.Fatalf("user = %q", out)
	}
}

func TestDispatchRejectsBadProblemID(t *testing.T) {
	s := newTestSession(t, `echo unused`, false)

	_, err := s.dispatch(context.Background(), s.commands["problem show"], command.Params{"id": "zero"})
	if !appErr.Is(err, appErr.ValidationFailed) {
		t.Fatalf("expected ValidationFailed, got %v", err)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	s := newTestSession(t, `echo unused`, false)
	if _, err := s.dispatch(context.Background(), command.Command{Service: "nope", Action: "x"}, command.Params{}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestHandleCommandRequiresSession(t *testing.T) {
	s := newTestSession(t, `echo unused`, false)
	s.sessionState.User = ""

	err := s.handleCommand(context.Background(), nil, "submit create file=x.go")
	if !appErr.Is(err, appErr.NotSignedIn) {
		t.Fatalf("expected NotSignedIn, got %v", err)
	}
}

func TestHandleCommandPersistsEndpoint(t *testing.T) {
	s := newTestSession(t, `echo "plugin updated"`, false)

	if err := s.handleCommand(context.Background(), nil, "plugin endpoint name=leetcode-cn"); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if s.sessionState.Endpoint != "leetcode-cn" {
		t.Fatalf("endpoint = %q", s.sessionState.Endpoint)
	}
	loaded, err := state.Load(s.statePath)
	if err != nil {
		t.Fatalf("load state failed: %v", err)
	}
	if loaded.Endpoint != "leetcode-cn" {
		t.Fatalf("persisted endpoint = %q", loaded.Endpoint)
	}
}
