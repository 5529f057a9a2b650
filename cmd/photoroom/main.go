package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"photoroom/ask"
	"photoroom/config"
)

// Set by the release build
var version = "dev"

// ExitError carries a process exit code
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// options are the global flags
type options struct {
	debug      bool
	dryRun     bool
	plain      bool
	version    bool
	configPath string
	command    string
	args       []string
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer, fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprint(w, `
photoroom - interactive CLI for the PhotoRoom API

Usage:
  photoroom [options]              interactive menu
  photoroom [options] account      show account credits
  photoroom [options] watch DIR    remove backgrounds of images added to DIR
  photoroom help                   show this help

Options:
`)
		fs.PrintDefaults()
	}
}

// parseArgs reads global flags and the command. help is true when usage
// was printed and the process should exit cleanly.
func parseArgs(args []string, stderr io.Writer) (opts options, help bool, err error) {
	fs := flag.NewFlagSet("photoroom", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(stderr, fs)

	fs.BoolVar(&opts.debug, "debug", false, "Log API requests and responses to stderr.")
	fs.BoolVar(&opts.debug, "d", false, "Shorthand for --debug.")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Print requests instead of sending them; write nothing.")
	fs.BoolVar(&opts.plain, "plain", false, "Use numbered line prompts instead of the interactive UI.")
	fs.BoolVar(&opts.version, "version", false, "Print the version and exit.")
	fs.StringVar(&opts.configPath, "config", "", "Path to config.yaml.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, true, nil
		}
		return opts, false, &ExitError{Code: 2, Message: err.Error()}
	}

	rest := fs.Args()
	if len(rest) > 0 {
		opts.command, opts.args = rest[0], rest[1:]
	}

	switch opts.command {
	case "", "account":
		if len(opts.args) > 0 {
			return opts, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument %q", opts.args[0])}
		}
	case "watch":
		if len(opts.args) != 1 {
			return opts, false, &ExitError{Code: 2, Message: "usage: photoroom watch DIR"}
		}
	case "help":
		fs.Usage()
		return opts, true, nil
	default:
		return opts, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q (try 'photoroom help')", opts.command)}
	}
	return opts, false, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, help, err := parseArgs(args, stderr)
	if err != nil || help {
		return err
	}
	if opts.version {
		fmt.Fprintf(stdout, "photoroom %s\n", version)
		return nil
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	if opts.debug {
		level = slog.LevelDebug
	}
	log := newLogger(stderr, level)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, stdout, log, opts.dryRun)
	if err != nil {
		return err
	}
	a.spin = isTerminal(stdout) && !opts.plain

	switch opts.command {
	case "account":
		if err := a.showAccount(ctx); err != nil {
			printFailure(stdout, err)
			return &ExitError{Code: 1}
		}
		return nil
	case "watch":
		return a.goodbyeOnCancel(a.watch(ctx, opts.args[0]))
	}

	p, closePrompter, err := ask.Open(opts.plain)
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer closePrompter()
	a.setPrompter(p)

	return a.goodbyeOnCancel(a.menu(ctx))
}
