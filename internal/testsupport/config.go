package testsupport

import (
	"path/filepath"
	"testing"

	"n8nexplorer/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.N8N.BaseURL = "http://127.0.0.1:5678"
	cfgVal.N8N.APIKey = "test"
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Store.Backend = config.StoreBackendMemory
	cfgVal.Store.Path = ""
	cfgVal.Serve.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithN8N points the test config at a specific instance.
func WithN8N(baseURL, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.N8N.BaseURL = baseURL
		b.cfg.N8N.APIKey = apiKey
	}
}

// WithoutCredentials clears the configured base URL and API key.
func WithoutCredentials() ConfigOption {
	return WithN8N("", "")
}

// WithStoreBackend selects a persistent backend with a file under the state dir.
func WithStoreBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Backend = backend
		switch backend {
		case config.StoreBackendSQLite:
			b.cfg.Store.Path = filepath.Join(b.cfg.Paths.StateDir, "state.db")
		case config.StoreBackendJSON:
			b.cfg.Store.Path = filepath.Join(b.cfg.Paths.StateDir, "state.json")
		default:
			b.cfg.Store.Path = ""
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
