package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/quire/internal/config"
	"github.com/hpungsan/quire/internal/mcp"
	"github.com/hpungsan/quire/internal/storage"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"new": true, "show": true, "list": true, "save": true, "delete": true,
	"insert": true, "source": true, "export": true, "import": true,
	"active": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
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
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
    ___  _   _ ___ ___ ___
   / _ \| | | |_ _| _ \ __|
  | (_) | |_| || ||   / _|
   \__\_\\___/|___|_|_\___|

  Newsletter drafts and their sources

  Usage: quire <command> [options]
         quire --help

  MCP server mode requires piped input.`)
}

// newLogger writes structured logs to stderr; stdout carries command output
// or the MCP stream. QUIRE_LOG_LEVEL selects debug, info, warn or error.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if v := os.Getenv("QUIRE_LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: invalid QUIRE_LOG_LEVEL %q, using warn\n", v)
			level = slog.LevelWarn
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before storage init (no storage needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, config.DefaultConfig(), slog.Default())
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

	baseDir := filepath.Join(homeDir, ".quire")
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create %s: %v\n", baseDir, err)
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = baseDir
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := config.LoadEnv(cfg, baseDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load environment: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger()

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", "tools", strings.Join(unknown, ", "))
	}

	backend, closer, err := storage.Open(context.Background(), cfg, baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to open %s storage: %v\n", cfg.Backend, err)
		os.Exit(1)
	}
	defer closer.Close()

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(backend, cfg, logger)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			closer.Close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'quire --help' for usage.\n")
		closer.Close()
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(newIndex(backend, cfg, logger), cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		closer.Close()
		os.Exit(1)
	}
}
