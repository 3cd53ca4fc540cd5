package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected port 8000, got %q", cfg.Port)
	}
	if cfg.DocumentRoot != "DOF_PDF" {
		t.Errorf("expected document root DOF_PDF, got %q", cfg.DocumentRoot)
	}
	if cfg.RemoteFetchTimeout != 30*time.Second {
		t.Errorf("expected 30s fetch timeout, got %v", cfg.RemoteFetchTimeout)
	}
	if cfg.MaxRemoteBytes != 200<<20 {
		t.Errorf("expected 200MB body cap, got %d", cfg.MaxRemoteBytes)
	}
	if cfg.LatestFilesLimit != 5 {
		t.Errorf("expected latest limit 5, got %d", cfg.LatestFilesLimit)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("expected wildcard CORS, got %v", cfg.CORSAllowedOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dof.yaml")
	body := `
port: "9100"
document_root: /srv/dof
remote_fetch_timeout: 5s
latest_files_limit: 12
cors_allowed_origins:
  - https://a.example
  - https://b.example
reindex_schedule: "0 3 * * *"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "9200")
	t.Setenv("REINDEX_ON_START", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9200" {
		t.Errorf("expected env to override file port, got %q", cfg.Port)
	}
	if cfg.DocumentRoot != "/srv/dof" {
		t.Errorf("expected file document root, got %q", cfg.DocumentRoot)
	}
	if cfg.RemoteFetchTimeout != 5*time.Second {
		t.Errorf("expected 5s timeout from file, got %v", cfg.RemoteFetchTimeout)
	}
	if cfg.LatestFilesLimit != 12 {
		t.Errorf("expected limit 12, got %d", cfg.LatestFilesLimit)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.ReindexOnStart {
		t.Error("expected REINDEX_ON_START from env")
	}
	if cfg.DatabasePath != "dofdb.sqlite" {
		t.Errorf("expected default database path kept, got %q", cfg.DatabasePath)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("LATEST_FILES_LIMIT", "lots")
	t.Setenv("REMOTE_FETCH_TIMEOUT", "-1s")
	t.Setenv("CORS_ALLOWED_ORIGINS", " , ")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LatestFilesLimit != 5 {
		t.Errorf("expected default limit, got %d", cfg.LatestFilesLimit)
	}
	if cfg.RemoteFetchTimeout != 30*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.RemoteFetchTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("expected default origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestEnvList(t *testing.T) {
	t.Setenv("ORIGINS", "https://a.example, https://b.example,,")
	got := envList("ORIGINS", nil)
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("unexpected list: %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-numeric port", func(c *Config) { c.Port = "http" }},
		{"empty database path", func(c *Config) { c.DatabasePath = "" }},
		{"empty document root", func(c *Config) { c.DocumentRoot = "" }},
		{"bad schedule", func(c *Config) { c.ReindexSchedule = "every day" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "debug"
	lvl, err := cfg.SlogLevel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lvl != slog.LevelDebug {
		t.Errorf("expected debug, got %v", lvl)
	}
}
