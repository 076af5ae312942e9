// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdSignup
	CmdLogout
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Verbose bool
	Quiet   bool

	// Command-specific
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args remaining after command extraction
	Raw []string
}

const usageText = `loreline - document intelligence chat for the terminal

Loreline is a terminal client for a Loreline server. It streams chat
responses over a WebSocket, keeps your uploaded documents in view
while they are ingested, and can speak replies aloud when the host
machine has a speech synthesizer.

Usage:
  loreline                   Start the TUI (default)
  loreline login             Sign in and store credentials
  loreline signup            Create an account
  loreline logout            Discard stored credentials
  loreline status, s         Show connection and account status
  loreline config [list|get|set]  Configuration
  loreline version, -v       Show version

Config Commands:
  loreline config list             Show the full configuration
  loreline config get <key>        Show one value
  loreline config set <key> <val>  Set a value

  Keys: server.api_url, server.ws_url, server.timeout_secs,
        auth.refresh_interval_mins, speech.synthesizer,
        speech.recognizer, log.level, log.path

Environment:
  LORELINE_API_URL    Override the REST endpoint
  LORELINE_WS_URL     Override the WebSocket endpoint
  LORELINE_LOG_LEVEL  Override the log level

Files:
  ~/.loreline/config.toml        Configuration
  ~/.loreline/credentials.json   Stored token pair
  ~/.loreline/history.db         Local exchange archive
`

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version details to stdout.
func PrintVersion() {
	fmt.Printf("loreline %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// Parse reads os.Args and returns the command to run.
func Parse() (Command, Args) {
	return parse(os.Args[1:])
}

// parse is the testable core of Parse.
func parse(argv []string) (Command, Args) {
	var args Args

	remaining := make([]string, 0, len(argv))
	for _, a := range argv {
		switch a {
		case "--verbose":
			args.Verbose = true
		case "--quiet", "-q":
			args.Quiet = true
		case "-v", "--version":
			return CmdVersion, args
		case "-h", "--help":
			return CmdHelp, args
		default:
			remaining = append(remaining, a)
		}
	}

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "login":
		return CmdLogin, args

	case "signup":
		return CmdSignup, args

	case "logout":
		return CmdLogout, args

	case "status", "s":
		return CmdStatus, args

	case "config":
		if len(remaining) > 0 {
			args.Subcommand = remaining[0]
		}
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = strings.Join(remaining[2:], " ")
		}
		return CmdConfig, args

	case "version":
		return CmdVersion, args

	case "help":
		return CmdHelp, args

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		return CmdHelp, args
	}
}
