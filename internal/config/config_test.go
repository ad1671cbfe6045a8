package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := config.Config{
		Server: config.ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			SessionTTL:      2 * time.Hour,
			SweepInterval:   5 * time.Minute,
		},
		Log:    config.LogConfig{Level: "info", Format: "console"},
		Submit: config.SubmitConfig{Timeout: 30 * time.Second},
	}
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeFile(t, "formwizard.yaml", `
server:
  addr: ":9090"
  session_ttl: 30m
log:
  level: debug
  format: json
submit:
  timeout: 5s
  strict_contract: true
render:
  locale: es
`)
	t.Setenv("FORMWIZARD_SUBMIT_ENDPOINT", "http://localhost:9999/submit")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.SessionTTL != 30*time.Minute {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if diff := cmp.Diff(config.LogConfig{Level: "debug", Format: "json"}, cfg.Log); diff != "" {
		t.Fatalf("log mismatch (-want +got):\n%s", diff)
	}
	want := config.SubmitConfig{Timeout: 5 * time.Second, Endpoint: "http://localhost:9999/submit", StrictContract: true}
	if diff := cmp.Diff(want, cfg.Submit); diff != "" {
		t.Fatalf("submit mismatch (-want +got):\n%s", diff)
	}
	if cfg.Render.Locale != "es" {
		t.Fatalf("locale = %q", cfg.Render.Locale)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := writeFile(t, "formwizard.yaml", "log:\n  format: xml\n")
	if _, err := config.Load(path); err == nil {
		t.Fatalf("expected invalid log format to fail")
	}
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected explicit missing file to fail")
	}
}
