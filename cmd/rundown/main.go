package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ianthehenry/rundown/config"
	"github.com/ianthehenry/rundown/pkg/rundown"
)

// Version is set at build time via -ldflags
var Version = "0.1.0-dev"

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	// Subcommands come before flag parsing
	if len(args) > 0 {
		switch args[0] {
		case "check":
			return runCheck(args[1:], stdout, stderr, getenv)
		case "sexp":
			return runSexp(args[1:], stdout, stderr, getenv)
		}
	}

	flags := flag.NewFlagSet("rundown", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configPath  = flags.String("config", "", "Path to config file")
		list        = flags.Bool("list", false, "List components instead of writing the document")
		watch       = flags.Bool("watch", false, "Re-run whenever the document changes")
		showVersion = flags.Bool("version", false, "Show version")
		showHelp    = flags.Bool("help", false, "Show help")
	)

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}

	if *showVersion {
		fmt.Fprintf(stdout, "rundown version %s\n", Version)
		return nil
	}

	if flags.NArg() > 1 {
		return fmt.Errorf("expected at most one file, got %d", flags.NArg())
	}

	cfg, configFile, err := config.LoadWithPath(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	// stdout carries the document, so every log line goes to stderr
	log := newLogger(stderr, stderr, cfg.Logging.Level)
	if configFile != "" {
		log.logDebug("using config %s", configFile)
	}

	path := cfg.Input
	if flags.NArg() == 1 {
		path = flags.Arg(0)
	}

	process := func() error {
		return splitFile(path, *list, stdout)
	}

	if !*watch {
		return process()
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := process(); err != nil {
		log.logError("%v", err)
	}

	w, err := newWatcher(path, cfg.Watch.Debounce, log, func() {
		if err := process(); err != nil {
			log.logError("%v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	return w.Run(ctx)
}

// splitFile reads a markdown document and writes it back out component by
// component, or one summary line per component when list is set.
func splitFile(path string, list bool, out io.Writer) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	components := rundown.Split(string(content))
	if !list {
		return rundown.Render(out, components)
	}

	for _, c := range components {
		fmt.Fprintf(out, "%s %d..%d", c.Kind, c.Start, c.End)
		if c.Kind == rundown.CodeBlock {
			fmt.Fprintf(out, " %s", c.Flavor.Kind)
			if lang := c.Language(); lang != "" {
				fmt.Fprintf(out, " %s", lang)
			}
			if c.Flavor.Kind == rundown.Fenced && !c.Flavor.HasEndLine {
				fmt.Fprint(out, " (unclosed)")
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}

// errSyntax is returned after syntax errors have already been reported
var errSyntax = errors.New("syntax errors found")

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `rundown - split markdown into text and code blocks

Usage:
  rundown [options] [file]
  rundown check [--json] [--config PATH] [file...]
  rundown sexp [-e EXPR] [--json] [file]

Commands:
  check            Parse S-expression code blocks and report syntax errors
  sexp             Parse S-expressions (interactive when no input is given)

Options:
  --config PATH    Path to config file (default: auto-detect)
  --list           List components instead of writing the document
  --watch          Re-run whenever the document changes
  --version        Show version
  --help           Show this help

Config Resolution:
  1. --config flag
  2. RUNDOWN_CONFIG environment variable
  3. ./rundown.yaml
  4. ~/.config/rundown/rundown.yaml
  5. built-in defaults (input: input.md)

Examples:
  rundown                       Write input.md back out
  rundown --list README.md      Show the components of README.md
  rundown check notes.md        Check lisp/scheme/sexp blocks in notes.md
  rundown sexp -e '(a "b")'     Parse an expression

`)
}
