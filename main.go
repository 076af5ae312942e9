// loreline - terminal client for the Loreline document intelligence
// service: streaming chat over your own documents, from the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/loreline-tui/internal/api"
	"github.com/jeranaias/loreline-tui/internal/auth"
	"github.com/jeranaias/loreline-tui/internal/chat"
	"github.com/jeranaias/loreline-tui/internal/cli"
	"github.com/jeranaias/loreline-tui/internal/config"
	"github.com/jeranaias/loreline-tui/internal/history"
	"github.com/jeranaias/loreline-tui/internal/logging"
	"github.com/jeranaias/loreline-tui/internal/settings"
	"github.com/jeranaias/loreline-tui/internal/speech"
	"github.com/jeranaias/loreline-tui/internal/ui"
	"github.com/jeranaias/loreline-tui/internal/workspace"
	"github.com/jeranaias/loreline-tui/internal/ws"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnvOverrides()
	if args.Verbose {
		cfg.Log.Level = "debug"
	}
	if args.Quiet {
		cfg.Log.Level = "error"
	}

	log, logLevel := logging.New(cfg.Log)
	defer log.Sync()

	stateDir, err := config.Dir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store := auth.NewStore(filepath.Join(stateDir, "credentials.json"), log)
	if err := store.Load(); err != nil {
		log.Warn("credential load failed", zap.Error(err))
	}

	client := api.NewClient(cfg.Server.APIURL, store, log).
		WithTimeout(time.Duration(cfg.Server.RequestTimeoutSecs) * time.Second)

	ctx := context.Background()

	switch cmd {
	case cli.CmdLogin:
		exitOn(cli.HandleLogin(ctx, client))
	case cli.CmdSignup:
		exitOn(cli.HandleSignup(ctx, client))
	case cli.CmdLogout:
		exitOn(cli.HandleLogout(client))
	case cli.CmdStatus:
		archive := openArchive(stateDir, log)
		defer closeArchive(archive)
		exitOn(cli.HandleStatus(ctx, cfg, store, client, archive))
	case cli.CmdConfig:
		exitOn(cli.HandleConfig(args, cfg))
	case cli.CmdTUI:
		runTUI(cfg, log, logLevel, store, client, stateDir)
	default:
		cli.PrintUsage()
		os.Exit(1)
	}
}

func runTUI(cfg *config.Config, log *zap.Logger, logLevel zap.AtomicLevel, store *auth.Store, client *api.Client, stateDir string) {
	wsMgr := ws.NewManager(cfg.Server.WSURL, store, log)
	defer wsMgr.Close()

	conv := chat.NewConversation(wsMgr, client, log)
	wsp := workspace.New(client, filepath.Join(stateDir, "active_session.json"), log)
	engine := speech.Probe(cfg.Speech.Synthesizer, cfg.Speech.Recognizer, log)
	setStore := settings.NewStore(filepath.Join(stateDir, "users"))

	archive := openArchive(stateDir, log)
	defer closeArchive(archive)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Keep the token pair fresh while the UI runs.
	interval := time.Duration(cfg.Auth.RefreshIntervalMins) * time.Minute
	refresher := auth.NewRefresher(store, interval, client.RefreshTokens, log)
	go refresher.Run(ctx)

	// Pick up config edits without a restart. Only the log level
	// applies live; everything else needs a relaunch. Watch blocks
	// until ctx is cancelled, so it gets its own goroutine.
	if confPath, perr := config.Path(); perr != nil {
		log.Warn("config watch unavailable", zap.Error(perr))
	} else {
		go func() {
			werr := config.Watch(ctx, confPath, log, func(next *config.Config) {
				logLevel.SetLevel(logging.ParseLevel(next.Log.Level))
			})
			if werr != nil {
				log.Warn("config watch unavailable", zap.Error(werr))
			}
		}()
	}

	err := ui.Run(ui.Deps{
		Config:       cfg,
		Log:          log,
		Client:       client,
		Store:        store,
		WS:           wsMgr,
		Conversation: conv,
		Workspace:    wsp,
		Speech:       engine,
		Settings:     setStore,
		Archive:      archive,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openArchive(stateDir string, log *zap.Logger) *history.Archive {
	archive, err := history.Open(filepath.Join(stateDir, "history.db"), log)
	if err != nil {
		log.Warn("history archive unavailable", zap.Error(err))
		return nil
	}
	return archive
}

func closeArchive(archive *history.Archive) {
	if archive != nil {
		archive.Close()
	}
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
