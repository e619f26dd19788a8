package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"leetbridge/internal/cli/command"
	"leetbridge/internal/cli/config"
	"leetbridge/internal/cli/repl"
	"leetbridge/internal/cli/state"
	"leetbridge/internal/invoker"
	"leetbridge/internal/leetcode"
	"leetbridge/internal/metadata"
	"leetbridge/internal/runtime"
	appErr "leetbridge/pkg/errors"
	"leetbridge/pkg/utils/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	nodePath := flag.String("node", "", "Override Node.js executable path")
	toolHome := flag.String("tool-home", "", "Override CLI package directory")
	useWSL := flag.Bool("wsl", false, "Run the CLI through WSL")
	statePath := flag.String("state", "", "Override state file path")
	timeout := flag.Duration("timeout", 0, "Override invocation timeout (e.g. 30s)")
	logLevel := flag.String("log-level", "", "Override log level")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
			os.Exit(appErr.GetCode(err).ExitStatus())
		}
		cfg = loaded
	}
	if *nodePath != "" {
		cfg.NodePath = *nodePath
	}
	if *toolHome != "" {
		cfg.ToolHome = *toolHome
	}
	if *useWSL {
		cfg.UseWSL = true
	}
	if *statePath != "" {
		cfg.StatePath = *statePath
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.OutputPath,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	sessionState, err := state.Load(cfg.StatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load state failed: %v\n", err)
		os.Exit(appErr.GetCode(err).ExitStatus())
	}
	if sessionState.Endpoint == "" {
		sessionState.Endpoint = cfg.Endpoint
	}

	iv := invoker.New(cfg.Timeout, cfg.UseWSL)
	resolver := runtime.NewResolver(runtime.Options{
		NodePath:     cfg.NodePath,
		ToolHome:     cfg.ToolHome,
		UseWSL:       cfg.UseWSL,
		MinNodeMajor: cfg.MinNodeMajor,
	}, iv)
	executor := leetcode.New(cfg, resolver, iv)
	cache := metadata.NewSnapshotCache(cfg.Cache.Root, cfg.Cache.TTL, cfg.Cache.MaxBytes)

	session := repl.New(executor, command.Registry(), &sessionState, cfg.StatePath, cfg.MetadataFile(), cache)
	if err := session.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "repl failed: %v\n", err)
		os.Exit(appErr.GetCode(err).ExitStatus())
	}
}
