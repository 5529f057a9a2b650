package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"photoroom/ask/asktest"
	"photoroom/config"
	"photoroom/keystore"
	"photoroom/prapi/praptest"
)

const testKey = "sandbox_sk_test"

func quietLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApp builds an app against a fake API with scripted prompts.
// withKey stores and activates testKey.
func newTestApp(t *testing.T, withKey, dryRun bool, answers ...any) (*app, *asktest.Prompter, *bytes.Buffer, *praptest.Server) {
	t.Helper()
	t.Setenv(keystore.EnvVar, "")

	srv := praptest.NewServer(testKey)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.SDKURL = srv.URL
	cfg.ImageAPIURL = srv.URL
	cfg.OutputDir = filepath.Join(t.TempDir(), "output")
	cfg.Watch.OutputDir = cfg.OutputDir
	cfg.KeysFile = filepath.Join(t.TempDir(), "keys.json")

	var out bytes.Buffer
	a, err := newApp(cfg, &out, quietLog(), dryRun)
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	if withKey {
		if _, err := a.keys.Add("Test", keystore.Sandbox, testKey, true); err != nil {
			t.Fatalf("Add key: %v", err)
		}
	}

	p := asktest.New(answers...)
	a.setPrompter(p)
	return a, p, &out, srv
}

// writeImages creates small image files in a new directory
func writeImages(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("img:"+name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
