package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable. Credentials are optional here
// because they may also come from the persisted credential store.
func (c *Config) Validate() error {
	if err := c.validateN8N(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateServe(); err != nil {
		return err
	}
	if c.Notifications.NtfyTopic != "" {
		if err := ValidateBaseURL(c.Notifications.NtfyTopic); err != nil {
			return fmt.Errorf("notifications.ntfy_topic: %w", err)
		}
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateN8N() error {
	if c.N8N.BaseURL != "" {
		if err := ValidateBaseURL(c.N8N.BaseURL); err != nil {
			return fmt.Errorf("n8n.base_url: %w", err)
		}
	}
	if c.N8N.TimeoutSeconds <= 0 {
		return errors.New("n8n.timeout_seconds must be positive")
	}
	if c.N8N.ConnectionTestTimeoutSeconds <= 0 {
		return errors.New("n8n.connection_test_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case StoreBackendSQLite, StoreBackendJSON:
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("store.path must be set for the %s backend", c.Store.Backend)
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("store.backend: unsupported value %q (use sqlite, json or memory)", c.Store.Backend)
	}
	return nil
}

func (c *Config) validateServe() error {
	if c.Serve.RefreshSchedule == "" {
		return nil
	}
	if _, err := cron.ParseStandard(c.Serve.RefreshSchedule); err != nil {
		return fmt.Errorf("serve.refresh_schedule: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

// ValidateBaseURL checks that value is an absolute http(s) URL with a host.
func ValidateBaseURL(value string) error {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url %q must include http:// or https://", value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("url %q is missing a host", value)
	}
	return nil
}
