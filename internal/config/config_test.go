package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"n8nexplorer/internal/config"
)

func TestLoadDefaultConfigUsesEnvAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("N8N_API_URL", " https://n8n.example.com/ ")
	t.Setenv("N8N_API_KEY", "env-key")
	t.Setenv("N8NEXPLORER_API_TOKEN", " env-token ")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "n8nexplorer")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Store.Backend != config.StoreBackendSQLite {
		t.Fatalf("unexpected store backend: %q", cfg.Store.Backend)
	}
	if cfg.Store.Path != filepath.Join(wantState, "state.db") {
		t.Fatalf("unexpected store path: %q", cfg.Store.Path)
	}
	if cfg.N8N.BaseURL != "https://n8n.example.com" {
		t.Fatalf("expected trimmed base url from env, got %q", cfg.N8N.BaseURL)
	}
	if cfg.N8N.APIKey != "env-key" {
		t.Fatalf("expected api key from env, got %q", cfg.N8N.APIKey)
	}
	if cfg.FetchTimeout() != 15*time.Second {
		t.Fatalf("unexpected fetch timeout: %v", cfg.FetchTimeout())
	}
	if cfg.ConnectionTestTimeout() != 10*time.Second {
		t.Fatalf("unexpected connection test timeout: %v", cfg.ConnectionTestTimeout())
	}
	if cfg.Serve.Bind != "127.0.0.1:7489" {
		t.Fatalf("unexpected serve bind: %q", cfg.Serve.Bind)
	}
	if cfg.Serve.Token != "env-token" {
		t.Fatalf("expected trimmed api token from env, got %q", cfg.Serve.Token)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("N8N_API_URL", "")
	t.Setenv("N8N_API_KEY", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "n8nexplorer.toml")

	type payload struct {
		N8N struct {
			BaseURL        string `toml:"base_url"`
			APIKey         string `toml:"api_key"`
			TimeoutSeconds int    `toml:"timeout_seconds"`
		} `toml:"n8n"`
		Store struct {
			Backend string `toml:"backend"`
		} `toml:"store"`
		Paths struct {
			StateDir string `toml:"state_dir"`
		} `toml:"paths"`
	}
	custom := payload{}
	custom.N8N.BaseURL = "http://localhost:5678/"
	custom.N8N.APIKey = "file-key"
	custom.N8N.TimeoutSeconds = 3
	custom.Store.Backend = "JSON"
	custom.Paths.StateDir = filepath.Join(tempDir, "state")
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.N8N.BaseURL != "http://localhost:5678" {
		t.Fatalf("expected base url without trailing slash, got %q", cfg.N8N.BaseURL)
	}
	if cfg.FetchTimeout() != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %v", cfg.FetchTimeout())
	}
	if cfg.Store.Backend != config.StoreBackendJSON {
		t.Fatalf("expected json backend, got %q", cfg.Store.Backend)
	}
	if cfg.Store.Path != filepath.Join(tempDir, "state", "state.json") {
		t.Fatalf("unexpected store path: %q", cfg.Store.Path)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "base url without scheme",
			mutate: func(c *config.Config) { c.N8N.BaseURL = "n8n.example.com" },
			want:   "n8n.base_url",
		},
		{
			name:   "unknown backend",
			mutate: func(c *config.Config) { c.Store.Backend = "redis" },
			want:   "store.backend",
		},
		{
			name:   "zero timeout",
			mutate: func(c *config.Config) { c.N8N.TimeoutSeconds = 0 },
			want:   "n8n.timeout_seconds",
		},
		{
			name:   "malformed refresh schedule",
			mutate: func(c *config.Config) { c.Serve.RefreshSchedule = "every five minutes" },
			want:   "serve.refresh_schedule",
		},
		{
			name:   "ntfy topic without scheme",
			mutate: func(c *config.Config) { c.Notifications.NtfyTopic = "ntfy.sh/alerts" },
			want:   "notifications.ntfy_topic",
		},
		{
			name:   "unknown log level",
			mutate: func(c *config.Config) { c.Logging.Level = "verbose" },
			want:   "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Store.Path = filepath.Join(t.TempDir(), "state.db")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateBaseURL(t *testing.T) {
	for _, good := range []string{"https://n8n.example.com", "http://localhost:5678"} {
		if err := config.ValidateBaseURL(good); err != nil {
			t.Fatalf("expected %q to be valid: %v", good, err)
		}
	}
	for _, bad := range []string{"", "ftp://host", "https://", "not a url"} {
		if err := config.ValidateBaseURL(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("N8N_API_URL", "")
	t.Setenv("N8N_API_KEY", "")
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Store.Backend != config.StoreBackendSQLite {
		t.Fatalf("unexpected backend from sample: %q", cfg.Store.Backend)
	}
}

func TestLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = "/var/log/n8nexplorer"
	if got := cfg.LogFile(); got != "/var/log/n8nexplorer/n8nexplorer.log" {
		t.Fatalf("LogFile = %q", got)
	}
	cfg.Paths.LogDir = "  "
	if got := cfg.LogFile(); got != "" {
		t.Fatalf("LogFile with blank dir = %q", got)
	}
}
