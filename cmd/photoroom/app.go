package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"photoroom/ask"
	"photoroom/config"
	"photoroom/keystore"
	"photoroom/prapi"
)

var errNoKey = errors.New("no API key configured; add one under 'Manage API keys' or set " + keystore.EnvVar)

// app holds what every command needs
type app struct {
	cfg    *config.Config
	keys   *keystore.Store
	out    io.Writer
	log    *slog.Logger
	dryRun bool
	spin   bool // Show a spinner while requests run

	prompter ask.Prompter
	engine   *ask.Engine
}

func newApp(cfg *config.Config, out io.Writer, log *slog.Logger, dryRun bool) (*app, error) {
	keys, err := keystore.Open(cfg.KeysFile, log)
	if err != nil {
		return nil, fmt.Errorf("load API keys: %w", err)
	}
	return &app{cfg: cfg, keys: keys, out: out, log: log, dryRun: dryRun}, nil
}

func (a *app) setPrompter(p ask.Prompter) {
	a.prompter = p
	a.engine = ask.NewEngine(p, a.cfg.MaxAttempts)
}

// canCallAPI reports whether API commands are usable
func (a *app) canCallAPI() bool {
	_, ok := a.keys.Active()
	return ok || a.dryRun
}

// client builds an API client for the active key
func (a *app) client() (*prapi.Client, error) {
	key, ok := a.keys.Active()
	if !ok && !a.dryRun {
		return nil, errNoKey
	}
	return prapi.NewClient(prapi.Config{
		APIKey:      key.Secret,
		SDKURL:      a.cfg.SDKURL,
		ImageAPIURL: a.cfg.ImageAPIURL,
		Timeout:     a.cfg.Timeout,
		DryRun:      a.dryRun,
		Out:         a.out,
		Logger:      a.log,
	})
}

// goodbyeOnCancel turns an interrupt into a clean exit
func (a *app) goodbyeOnCancel(err error) error {
	if errors.Is(err, ask.ErrCancelled) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(a.out, "\nGoodbye!")
		return nil
	}
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
