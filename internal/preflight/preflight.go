package preflight

import (
	"context"
	"path/filepath"

	"n8nexplorer/internal/config"
	"n8nexplorer/internal/settings"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable check for cfg. The connection check only
// runs when credentials are available.
func RunAll(ctx context.Context, cfg *config.Config, creds settings.Credentials, tester settings.ConnectionTester) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	switch cfg.Store.Backend {
	case config.StoreBackendSQLite, config.StoreBackendJSON:
		results = append(results, CheckDirectoryAccess("Store directory", filepath.Dir(cfg.Store.Path)))
	}

	results = append(results, CheckN8N(ctx, tester, creds, cfg.ConnectionTestTimeout()))
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
