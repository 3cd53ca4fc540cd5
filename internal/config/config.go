package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Catalog database
	DatabasePath string `yaml:"database_path"`

	// Document storage
	ProjectRoot  string `yaml:"project_root"`
	DocumentRoot string `yaml:"document_root"`

	// Remote fetches
	RemoteFetchTimeout time.Duration `yaml:"remote_fetch_timeout"`
	MaxRemoteBytes     int64         `yaml:"max_remote_bytes"`
	RemoteStatsWindow  time.Duration `yaml:"remote_stats_window"`

	// Listing
	LatestFilesLimit int `yaml:"latest_files_limit"`

	// Page-count sweeps
	ReindexSchedule string        `yaml:"reindex_schedule"`
	ReindexRunTTL   time.Duration `yaml:"reindex_run_ttl"`
	ReindexOnStart  bool          `yaml:"reindex_on_start"`

	// HTTP
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	LogLevel string `yaml:"log_level"`
}

// Defaults returns the configuration used when neither a file nor the
// environment sets a key.
func Defaults() Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return Config{
		Port:               "8000",
		DatabasePath:       "dofdb.sqlite",
		ProjectRoot:        wd,
		DocumentRoot:       "DOF_PDF",
		RemoteFetchTimeout: 30 * time.Second,
		MaxRemoteBytes:     200 << 20, // 200MB
		RemoteStatsWindow:  1 * time.Hour,
		LatestFilesLimit:   5,
		ReindexRunTTL:      24 * time.Hour,
		CORSAllowedOrigins: []string{"*"},
		LogLevel:           "info",
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.DatabasePath = envOr("DATABASE_PATH", cfg.DatabasePath)
	cfg.ProjectRoot = envOr("PROJECT_ROOT", cfg.ProjectRoot)
	cfg.DocumentRoot = envOr("DOCUMENT_ROOT", cfg.DocumentRoot)
	cfg.RemoteFetchTimeout = envDuration("REMOTE_FETCH_TIMEOUT", cfg.RemoteFetchTimeout)
	cfg.MaxRemoteBytes = envInt64("MAX_REMOTE_BYTES", cfg.MaxRemoteBytes)
	cfg.RemoteStatsWindow = envDuration("REMOTE_STATS_WINDOW", cfg.RemoteStatsWindow)
	cfg.LatestFilesLimit = envInt("LATEST_FILES_LIMIT", cfg.LatestFilesLimit)
	cfg.ReindexSchedule = envOr("REINDEX_SCHEDULE", cfg.ReindexSchedule)
	cfg.ReindexRunTTL = envDuration("REINDEX_RUN_TTL", cfg.ReindexRunTTL)
	cfg.ReindexOnStart = envBool("REINDEX_ON_START", cfg.ReindexOnStart)
	cfg.CORSAllowedOrigins = envList("CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)

	def := Defaults()
	if cfg.RemoteFetchTimeout <= 0 {
		cfg.RemoteFetchTimeout = def.RemoteFetchTimeout
	}
	if cfg.MaxRemoteBytes <= 0 {
		cfg.MaxRemoteBytes = def.MaxRemoteBytes
	}
	if cfg.RemoteStatsWindow <= 0 {
		cfg.RemoteStatsWindow = def.RemoteStatsWindow
	}
	if cfg.LatestFilesLimit <= 0 {
		cfg.LatestFilesLimit = def.LatestFilesLimit
	}
	if cfg.ReindexRunTTL <= 0 {
		cfg.ReindexRunTTL = def.ReindexRunTTL
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = def.CORSAllowedOrigins
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.DatabasePath == "" {
		return errors.New("DATABASE_PATH is required")
	}
	if c.DocumentRoot == "" {
		return errors.New("DOCUMENT_ROOT is required")
	}
	if c.ReindexSchedule != "" {
		if _, err := cron.ParseStandard(c.ReindexSchedule); err != nil {
			return fmt.Errorf("REINDEX_SCHEDULE %q: %w", c.ReindexSchedule, err)
		}
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel (debug, info, warn, error).
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated value, dropping empty entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
