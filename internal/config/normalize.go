package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeN8N()
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeServe()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeN8N() {
	if strings.TrimSpace(c.N8N.BaseURL) == "" {
		if value, ok := os.LookupEnv("N8N_API_URL"); ok {
			c.N8N.BaseURL = value
		}
	}
	if strings.TrimSpace(c.N8N.APIKey) == "" {
		if value, ok := os.LookupEnv("N8N_API_KEY"); ok {
			c.N8N.APIKey = value
		}
	}
	c.N8N.BaseURL = strings.TrimRight(strings.TrimSpace(c.N8N.BaseURL), "/")
	c.N8N.APIKey = strings.TrimSpace(c.N8N.APIKey)
	if c.N8N.TimeoutSeconds <= 0 {
		c.N8N.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.N8N.ConnectionTestTimeoutSeconds <= 0 {
		c.N8N.ConnectionTestTimeoutSeconds = defaultConnectionTestTimeoutSeconds
	}
}

func (c *Config) normalizeStore() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	path := strings.TrimSpace(c.Store.Path)
	if path == "" {
		switch c.Store.Backend {
		case StoreBackendSQLite:
			path = filepath.Join(c.Paths.StateDir, "state.db")
		case StoreBackendJSON:
			path = filepath.Join(c.Paths.StateDir, "state.json")
		}
	}
	var err error
	if c.Store.Path, err = expandPath(path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeServe() {
	c.Serve.Bind = strings.TrimSpace(c.Serve.Bind)
	if c.Serve.Bind == "" {
		c.Serve.Bind = defaultServeBind
	}
	c.Serve.RefreshSchedule = strings.TrimSpace(c.Serve.RefreshSchedule)
	if strings.TrimSpace(c.Serve.Token) == "" {
		if value, ok := os.LookupEnv("N8NEXPLORER_API_TOKEN"); ok {
			c.Serve.Token = value
		}
	}
	c.Serve.Token = strings.TrimSpace(c.Serve.Token)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyRequestTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
