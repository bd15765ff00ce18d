package kvstore

import (
	"fmt"
	"strings"

	"n8nexplorer/internal/config"
)

// Open returns the backend selected by cfg.Store. Paths are expected to be
// normalized by config.Load.
func Open(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("open store: config is nil")
	}
	backend := strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	switch backend {
	case config.StoreBackendSQLite, "":
		return OpenSQLite(cfg.Store.Path)
	case config.StoreBackendJSON:
		return OpenFile(cfg.Store.Path)
	case config.StoreBackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}
