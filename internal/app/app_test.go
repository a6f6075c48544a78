package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/checklist/internal/config"
	"github.com/five82/checklist/internal/logging"
	"github.com/five82/checklist/internal/mutation"
	"github.com/five82/checklist/internal/testutil"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNew_LoadsConfigAndOpensLog(t *testing.T) {
	logDir := t.TempDir()
	path := writeConfig(t, "endpoint = \"example.test/v1/graphql\"\nlog_dir = \""+logDir+"\"\n")

	a, err := New(Options{ConfigPath: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if got, want := a.Config.Endpoint, "http://example.test/v1/graphql"; got != want {
		t.Fatalf("Endpoint = %q, want %q", got, want)
	}
	if _, err := os.Stat(logging.Path(logDir)); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if a.Store == nil || a.Session == nil || a.Coordinator == nil {
		t.Fatal("New() left components unset")
	}
}

func TestNew_Overrides(t *testing.T) {
	path := writeConfig(t, "log_dir = \""+t.TempDir()+"\"\n")

	a, err := New(Options{ConfigPath: path, Endpoint: "localhost:9999/graphql", LogLevel: "DEBUG"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if got, want := a.Config.Endpoint, "http://localhost:9999/graphql"; got != want {
		t.Fatalf("Endpoint = %q, want %q", got, want)
	}
	if a.Config.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", a.Config.LogLevel)
	}
}

func TestNew_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		opts Options
	}{
		{"bad log level", "log_level = \"loud\"\n", Options{}},
		{"bad duration", "request_timeout = \"soon\"\n", Options{}},
		{"bad toml", "endpoint = \n", Options{}},
		{"bad override level", "", Options{LogLevel: "chatty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.ConfigPath = writeConfig(t, tt.body+"log_dir = \""+t.TempDir()+"\"\n")
			_, err := New(opts)
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("New() error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestAssemble_WiresSessionAndCoordinator(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.Seed("first", false)
	svc.Seed("second", true)

	a := Assemble(config.Default(), svc, nil)
	ctx := context.Background()

	if err := a.Session.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if snap := a.Store.Snapshot(); !snap.IsReady() || len(snap.Items) != 2 {
		t.Fatalf("snapshot after start = %+v, want 2 ready items", snap)
	}

	if _, err := a.Coordinator.Add(ctx, mutation.AddParams{Text: "third"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if got := len(a.Store.Snapshot().Items); got != 3 {
		t.Fatalf("items after add = %d, want 3", got)
	}
}

func TestClose_WithoutLogFile(t *testing.T) {
	a := Assemble(config.Default(), testutil.NewFakeService(), nil)
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
