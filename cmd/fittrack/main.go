package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/hpungsan/fittrack/internal/config"
	"github.com/hpungsan/fittrack/internal/logger"
	"github.com/hpungsan/fittrack/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands and global flags.
var cliCommands = map[string]bool{
	"goal": true, "activity": true, "dashboard": true, "chart": true,
	"clear": true, "sample": true, "report": true,
	"export": true, "import": true,
	"serve": true, "mcp": true,
	"help": true, "--ephemeral": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return isHelpOrVersion()
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
   __ _ _   _                  _
  / _(_) |_| |_ _ __ __ _  ___| | __
 | |_| | __| __| '__/ _' |/ __| |/ /
 |  _| | |_| |_| | | (_| | (__|   <
 |_| |_|\__|\__|_|  \__,_|\___|_|\_\

  Goals, activities and daily progress

  Usage: fittrack <command> [options]
         fittrack --help

  MCP server mode requires piped input.`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before touching storage.
	if isHelpOrVersion() {
		if err := newCLIApp(&appEnv{}).Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	baseDir, err := config.BaseDir()
	if err != nil {
		fatal("%v", err)
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		fatal("failed to load config: %v", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.PrettyLog)
	if err != nil {
		fatal("failed to build logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	env := &appEnv{baseDir: baseDir, cfg: cfg, log: log}
	defer env.close()

	if isCLIMode() {
		if err := newCLIApp(env).Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			env.close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal: show error instead of starting the MCP server.
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'fittrack --help' for usage.\n")
		os.Exit(1)
	}

	tr, err := env.tracker(context.Background(), false)
	if err != nil {
		fatal("failed to open storage: %v", err)
	}
	if err := mcp.Run(tr, cfg, baseDir, Version, log); err != nil {
		env.close()
		fatal("%v", err)
	}
}
