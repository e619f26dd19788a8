package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/shlex"

	"leetbridge/internal/cli/command"
	"leetbridge/internal/cli/state"
	"leetbridge/internal/leetcode"
	"leetbridge/internal/metadata"
	appErr "leetbridge/pkg/errors"
)

// Session holds REPL state.
type Session struct {
	exec         *leetcode.Executor
	commands     map[string]command.Command
	sessionState *state.SessionState
	statePath    string

	metadataPath string
	cache        *metadata.SnapshotCache
	index        *metadata.Index

	outputWriter *bufio.Writer
}

func New(exec *leetcode.Executor, commands map[string]command.Command, sessionState *state.SessionState, statePath, metadataPath string, cache *metadata.SnapshotCache) *Session {
	return &Session{
		exec:         exec,
		commands:     commands,
		sessionState: sessionState,
		statePath:    statePath,
		metadataPath: metadataPath,
		cache:        cache,
		outputWriter: bufio.NewWriter(os.Stdout),
	}
}

func (s *Session) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "leet> ",
		InterruptPrompt: "^C",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil { // io.EOF on ctrl-d
			s.printLine("bye")
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if done := s.handleSystemCommand(ctx, line); done {
			continue
		}
		if strings.HasPrefix(line, "data ") || line == "data" {
			if err := s.handleData(ctx, strings.TrimSpace(strings.TrimPrefix(line, "data"))); err != nil {
				s.printLine("error: %v", err)
			}
			continue
		}
		if err := s.handleCommand(ctx, rl, line); err != nil {
			s.printLine("error: %v", err)
		}
	}
}

func (s *Session) handleSystemCommand(ctx context.Context, line string) bool {
	switch line {
	case "exit", "quit":
		s.printLine("bye")
		os.Exit(0)
	case "help":
		s.printHelp()
		return true
	case "show state":
		s.printLine("endpoint: %s", s.sessionState.Endpoint)
		if s.sessionState.User == "" {
			s.printLine("user: <not signed in>")
		} else {
			s.printLine("user: %s", s.sessionState.User)
			if !s.sessionState.CookieExpiresAt.IsZero() {
				s.printLine("cookie expires: %s", s.sessionState.CookieExpiresAt)
			}
		}
		return true
	case "show version":
		version, err := s.exec.Version(ctx)
		if err != nil {
			s.printLine("error: %v", err)
		} else {
			s.printLine("%s", version)
		}
		return true
	}
	return false
}

// handleData serves lookups over the CLI's bundled tag metadata.
func (s *Session) handleData(ctx context.Context, args string) error {
	idx, err := s.loadIndex(ctx)
	if err != nil {
		return err
	}
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return fmt.Errorf("usage: data tags|companies|tag <name>|company <name>|difficulty")
	}
	switch fields[0] {
	case "tags":
		s.printList(idx.Tags())
	case "companies":
		s.printList(idx.Companies())
	case "tag":
		if len(fields) < 2 {
			return fmt.Errorf("usage: data tag <name>")
		}
		slugs, err := idx.Tag(strings.Join(fields[1:], " "))
		if err != nil {
			return err
		}
		s.printList(slugs)
	case "company":
		if len(fields) < 2 {
			return fmt.Errorf("usage: data company <name>")
		}
		slugs, err := idx.Company(strings.Join(fields[1:], " "))
		if err != nil {
			return err
		}
		s.printList(slugs)
	case "difficulty":
		problems, err := s.exec.ListProblems(ctx, leetcode.ListOptions{})
		if err != nil {
			return err
		}
		grouped := metadata.GroupByDifficulty(leetcode.DifficultyLevels(problems))
		for _, level := range []string{"Easy", "Medium", "Hard"} {
			s.printLine("%s: %d problems", level, len(grouped[level]))
		}
	default:
		return fmt.Errorf("unknown data command: %s", fields[0])
	}
	return nil
}

func (s *Session) loadIndex(ctx context.Context) (*metadata.Index, error) {
	if s.index != nil {
		return s.index, nil
	}
	idx, err := metadata.LoadIndexed(ctx, s.metadataPath, s.cache)
	if err != nil {
		return nil, err
	}
	s.index = idx
	return idx, nil
}

func (s *Session) handleCommand(ctx context.Context, rl *readline.Instance, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) < 2 {
		return fmt.Errorf("invalid command, use: <service> <action> key=value ...")
	}
	key := fmt.Sprintf("%s %s", tokens[0], tokens[1])
	cmd, ok := s.commands[key]
	if !ok {
		return fmt.Errorf("unknown command: %s", key)
	}
	params := command.Params{}
	for _, token := range tokens[2:] {
		parts := strings.SplitN(token, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid param: %s", token)
		}
		params.Set(parts[0], parts[1])
	}

	if cmd.RequiresSession && !s.sessionState.SignedIn() {
		return appErr.NotSignedInError()
	}
	if err := s.promptMissing(rl, cmd, params); err != nil {
		return err
	}

	if cmd.Interactive {
		return s.runSignIn(ctx, params)
	}

	output, err := s.dispatch(ctx, cmd, params)
	if err != nil {
		return err
	}
	if output != "" {
		s.printLine("%s", strings.TrimRight(output, "\n"))
	}
	s.recordStateChange(cmd, params)
	return nil
}

// dispatch routes a registry command onto its executor operation, so
// file arguments pass through the executor's path translation.
func (s *Session) dispatch(ctx context.Context, cmd command.Command, params command.Params) (string, error) {
	switch cmd.Service + " " + cmd.Action {
	case "problem list":
		problems, err := s.exec.ListProblems(ctx, leetcode.ListOptions{
			Query: params.Get("query"),
			Tag:   params.Get("tag"),
		})
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for _, p := range problems {
			b.WriteString(p.String())
			b.WriteByte('\n')
		}
		return b.String(), nil
	case "problem show":
		id, err := problemID(params)
		if err != nil {
			return "", err
		}
		res, err := s.exec.ShowProblem(ctx, id, leetcode.ShowOptions{
			Language: params.Get("lang"),
			OutDir:   params.Get("out"),
			CodeOnly: command.ParseBool(params.Get("code")),
		})
		if err != nil {
			return "", err
		}
		if res.FilePath != "" {
			return res.Raw + "\ngenerated: " + res.FilePath, nil
		}
		return res.Raw, nil
	case "problem star", "problem unstar":
		id, err := problemID(params)
		if err != nil {
			return "", err
		}
		if err := s.exec.StarProblem(ctx, id, cmd.Action == "star"); err != nil {
			return "", err
		}
		if cmd.Action == "star" {
			return fmt.Sprintf("starred problem %d", id), nil
		}
		return fmt.Sprintf("unstarred problem %d", id), nil
	case "submit create":
		return s.exec.SubmitSolution(ctx, params.Get("file"))
	case "submit test":
		return s.exec.TestSolution(ctx, params.Get("file"), params.Get("cases"))
	case "session list":
		sessions, err := s.exec.ListSessions(ctx)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for _, sess := range sessions {
			mark := " "
			if sess.Active {
				mark = "✔"
			}
			fmt.Fprintf(&b, "%s %-6s %-20s %d/%d\n", mark, sess.ID, sess.Name, sess.Accepted, sess.Submitted)
		}
		return b.String(), nil
	case "session create":
		if err := s.exec.CreateSession(ctx, params.Get("name")); err != nil {
			return "", err
		}
		return "session created", nil
	case "session enable":
		if err := s.exec.EnableSession(ctx, params.Get("id")); err != nil {
			return "", err
		}
		return "session enabled", nil
	case "user whoami":
		return s.exec.CurrentUser(ctx)
	case "user logout":
		if err := s.exec.SignOut(ctx); err != nil {
			return "", err
		}
		return "signed out", nil
	case "plugin endpoint":
		if err := s.exec.SwitchEndpoint(ctx, params.Get("name")); err != nil {
			return "", err
		}
		return "endpoint switched to " + params.Get("name"), nil
	case "cli version":
		return s.exec.Version(ctx)
	}
	return "", fmt.Errorf("unknown command: %s %s", cmd.Service, cmd.Action)
}

func problemID(params command.Params) (int, error) {
	id, err := command.ParseInt(params.Get("id"))
	if err != nil {
		return 0, appErr.ValidationError("id", "must be a number")
	}
	return id, nil
}

// runSignIn drives the interactive login flow and persists the result.
func (s *Session) runSignIn(ctx context.Context, params command.Params) error {
	method := leetcode.LoginMethod(params.Get("method"))
	creds := leetcode.Credentials{
		Username: params.Get("username"),
		Password: params.Get("password"),
	}
	_ = s.outputWriter.Flush()
	user, err := s.exec.SignIn(ctx, method, creds, os.Stdout)
	if err != nil {
		return err
	}
	s.sessionState.User = user
	if method == leetcode.LoginCookie {
		if expiry, err := state.CookieExpiry(creds.Password); err == nil {
			s.sessionState.CookieExpiresAt = expiry
		}
	}
	if err := state.Save(s.statePath, *s.sessionState); err != nil {
		return err
	}
	s.printLine("signed in as %s", user)
	return nil
}

// recordStateChange persists endpoint switches and sign-outs.
func (s *Session) recordStateChange(cmd command.Command, params command.Params) {
	switch {
	case cmd.Service == "plugin" && cmd.Action == "endpoint":
		s.sessionState.Endpoint = params.Get("name")
	case cmd.Service == "user" && cmd.Action == "logout":
		s.sessionState.User = ""
		s.sessionState.CookieExpiresAt = time.Time{}
		s.sessionState.ActiveSession = ""
	case cmd.Service == "session" && cmd.Action == "enable":
		s.sessionState.ActiveSession = params.Get("id")
	default:
		return
	}
	if err := state.Save(s.statePath, *s.sessionState); err != nil {
		s.printLine("save state failed: %v", err)
	}
}

func (s *Session) promptMissing(rl *readline.Instance, cmd command.Command, params command.Params) error {
	params.Canonicalize(cmd.Fields)
	for _, field := range cmd.Fields {
		if !field.Required {
			continue
		}
		if params.Has(field.Name) && params.Get(field.Name) != "" {
			continue
		}
		value, err := s.promptValue(rl, field)
		if err != nil {
			return err
		}
		params.Set(field.Name, value)
	}
	return nil
}

func (s *Session) promptValue(rl *readline.Instance, field command.Field) (string, error) {
	if field.Type == command.FieldSecret {
		secret, err := rl.ReadPassword(field.Prompt + ": ")
		if err != nil {
			return "", fmt.Errorf("read input failed: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}
	rl.SetPrompt(field.Prompt + ": ")
	defer rl.SetPrompt("leet> ")
	line, err := rl.Readline()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", appErr.New(appErr.InteractiveAborted)
		}
		return "", fmt.Errorf("read input failed: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (s *Session) printList(items []string) {
	for _, item := range items {
		s.printLine("  %s", item)
	}
	s.printLine("(%d entries)", len(items))
}

func (s *Session) printHelp() {
	s.printLine("usage: <service> <action> key=value ...")
	s.printLine("system: help | exit | show state | show version")
	s.printLine("data:   data tags | data companies | data tag <name> | data company <name> | data difficulty")
	s.printLine("examples:")
	s.printLine("  problem list")
	s.printLine("  problem show id=1 lang=golang out=./workspace")
	s.printLine("  submit create file=./two-sum.go")
	s.printLine("  submit test file=./two-sum.go cases=\"[3,2,4]\\n6\"")
	s.printLine("  session enable id=4750")
	s.printLine("  user login method=cookie")
	s.printLine("  plugin endpoint name=leetcode-cn")
}

func (s *Session) printLine(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.outputWriter, format+"\n", args...)
	_ = s.outputWriter.Flush()
}
