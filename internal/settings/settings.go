package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"n8nexplorer/internal/config"
	"n8nexplorer/internal/kvstore"
	"n8nexplorer/internal/logging"
)

// Credential sources reported by Credentials.
const (
	SourceStore  = "store"
	SourceConfig = "config"
	SourceNone   = "none"
)

var (
	// ErrMissingCredentials is returned when the URL or API key is blank.
	ErrMissingCredentials = errors.New("please enter both API URL and API key")
	// ErrInvalidURL is returned when the base URL cannot be parsed as http(s).
	ErrInvalidURL = errors.New("please enter a valid URL (including https://)")
)

// ConnectionTester verifies credentials against an n8n instance.
type ConnectionTester interface {
	TestConnection(ctx context.Context, baseURL, apiKey string, timeout time.Duration) error
}

// Credentials identify an n8n instance and the key used to reach it.
type Credentials struct {
	BaseURL string
	APIKey  string
	Source  string
}

// Configured reports whether both fields are present.
func (c Credentials) Configured() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

// MaskedKey returns the API key with all but the last four characters hidden.
func (c Credentials) MaskedKey() string {
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", len(c.APIKey)-4) + c.APIKey[len(c.APIKey)-4:]
}

// Manager reads and writes credentials and preferences.
type Manager struct {
	store       kvstore.Store
	tester      ConnectionTester
	fallback    Credentials
	testTimeout time.Duration
	logger      *slog.Logger
}

// New builds a Manager. cfg supplies fallback credentials and the connection
// test timeout; it may be nil.
func New(store kvstore.Store, tester ConnectionTester, cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		store:       store,
		tester:      tester,
		testTimeout: time.Duration(config.Default().N8N.ConnectionTestTimeoutSeconds) * time.Second,
		logger:      logging.NewComponentLogger(logger, "settings"),
	}
	if cfg != nil {
		m.fallback = Credentials{
			BaseURL: cleanURL(cfg.N8N.BaseURL),
			APIKey:  strings.TrimSpace(cfg.N8N.APIKey),
			Source:  SourceConfig,
		}
		m.testTimeout = cfg.ConnectionTestTimeout()
	}
	return m
}

// Credentials returns the saved credentials, or the configured fallback when
// none are saved. Store failures are logged and fall through to the fallback.
func (m *Manager) Credentials(ctx context.Context) Credentials {
	baseURL := m.readString(ctx, kvstore.KeyAPIURL)
	apiKey := m.readString(ctx, kvstore.KeyAPIKey)
	if baseURL != "" && apiKey != "" {
		return Credentials{BaseURL: baseURL, APIKey: apiKey, Source: SourceStore}
	}
	if m.fallback.Configured() {
		return m.fallback
	}
	return Credentials{Source: SourceNone}
}

// SaveCredentials cleans the input, tests the connection and persists the
// credentials only when the test succeeds. The returned error from a failed
// test is the tester's error unchanged.
func (m *Manager) SaveCredentials(ctx context.Context, baseURL, apiKey string) (Credentials, error) {
	baseURL = cleanURL(baseURL)
	apiKey = strings.TrimSpace(apiKey)
	if baseURL == "" || apiKey == "" {
		return Credentials{}, ErrMissingCredentials
	}
	if err := config.ValidateBaseURL(baseURL); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if m.store == nil {
		return Credentials{}, errors.New("credential store not configured")
	}

	logger := logging.WithContext(ctx, m.logger)
	if m.tester != nil {
		if err := m.tester.TestConnection(ctx, baseURL, apiKey, m.testTimeout); err != nil {
			logger.Info("connection test failed",
				logging.String(logging.FieldEventType, "connection_test_failed"),
				logging.String("base_url", baseURL),
				logging.Error(err))
			return Credentials{}, err
		}
	}

	if err := kvstore.SetJSON(ctx, m.store, kvstore.KeyAPIURL, baseURL); err != nil {
		return Credentials{}, fmt.Errorf("save api url: %w", err)
	}
	if err := kvstore.SetJSON(ctx, m.store, kvstore.KeyAPIKey, apiKey); err != nil {
		return Credentials{}, fmt.Errorf("save api key: %w", err)
	}
	logger.Info("credentials saved",
		logging.String(logging.FieldEventType, "credentials_saved"),
		logging.String("base_url", baseURL))
	return Credentials{BaseURL: baseURL, APIKey: apiKey, Source: SourceStore}, nil
}

// ClearCredentials removes the saved URL and key.
func (m *Manager) ClearCredentials(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	for _, key := range []string{kvstore.KeyAPIURL, kvstore.KeyAPIKey} {
		if err := m.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

// DarkMode returns the display preference; unset or unreadable means false.
func (m *Manager) DarkMode(ctx context.Context) bool {
	if m.store == nil {
		return false
	}
	var enabled bool
	err := kvstore.GetJSON(ctx, m.store, kvstore.KeyDarkMode, &enabled)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		m.warnReadFailure(ctx, kvstore.KeyDarkMode, err)
		return false
	}
	return enabled
}

// SetDarkMode persists the display preference.
func (m *Manager) SetDarkMode(ctx context.Context, enabled bool) error {
	if m.store == nil {
		return errors.New("preference store not configured")
	}
	if err := kvstore.SetJSON(ctx, m.store, kvstore.KeyDarkMode, enabled); err != nil {
		return fmt.Errorf("save dark mode: %w", err)
	}
	return nil
}

// ToggleDarkMode flips the preference and returns the new value.
func (m *Manager) ToggleDarkMode(ctx context.Context) (bool, error) {
	next := !m.DarkMode(ctx)
	if err := m.SetDarkMode(ctx, next); err != nil {
		return false, err
	}
	return next, nil
}

func (m *Manager) readString(ctx context.Context, key string) string {
	if m.store == nil {
		return ""
	}
	var value string
	err := kvstore.GetJSON(ctx, m.store, key, &value)
	if errors.Is(err, kvstore.ErrNotFound) {
		return ""
	}
	if err != nil {
		m.warnReadFailure(ctx, key, err)
		return ""
	}
	return strings.TrimSpace(value)
}

func (m *Manager) warnReadFailure(ctx context.Context, key string, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, m.logger), "failed to read setting",
		"setting_read_failed",
		logging.String("key", key),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the state store path and permissions"),
		logging.String(logging.FieldImpact, "the default value is used"))
}

func cleanURL(value string) string {
	return strings.TrimSuffix(strings.TrimSpace(value), "/")
}
