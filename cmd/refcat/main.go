package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/hpungsan/refcat/internal/config"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"categories": true, "list": true, "search": true, "show": true,
	"export": true, "lint": true, "serve": true, "mcp": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	// Global flags (--doc, --html, ...) come before the subcommand
	if len(arg) > 1 && arg[0] == '-' {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
              __           _
   _ __ ___  / _| ___ __ _| |_
  | '__/ _ \| |_ / __/ _' | __|
  | | |  __/|  _| (_| (_| | |_
  |_|  \___||_|  \___\__,_|\__|

  Reference catalog for framework cheatsheets

  Usage: refcat [--doc FILE] <command> [options]
         refcat --help

  MCP server mode requires piped input.`)
}

// newLogger returns the process logger. Stdout carries CLI JSON and the MCP
// protocol, so logs always go to stderr.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("REFCAT_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	logger := newLogger()

	// Handle --help/--version before loading config
	if isHelpOrVersion() {
		app := newCLIApp(config.DefaultConfig(), logger)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine working directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadWithRepo(filepath.Join(homeDir, ".refcat"), cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(cfg, logger)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'refcat --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default): serve the configured document
	if err := runMCP(&env{cfg: cfg, logger: logger}, cfg.Document); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
