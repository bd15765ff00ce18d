package config

const (
	defaultConfigPath                   = "~/.config/n8nexplorer/config.toml"
	defaultStateDir                     = "~/.local/share/n8nexplorer"
	defaultLogDir                       = "~/.local/share/n8nexplorer/logs"
	defaultTimeoutSeconds               = 15
	defaultConnectionTestTimeoutSeconds = 10
	defaultStoreBackend                 = StoreBackendSQLite
	defaultServeBind                    = "127.0.0.1:7489"
	defaultNtfyRequestTimeoutSeconds    = 10
	defaultLogFormat                    = "console"
	defaultLogLevel                     = "info"
)

// Store backends understood by the kvstore factory.
const (
	StoreBackendSQLite = "sqlite"
	StoreBackendJSON   = "json"
	StoreBackendMemory = "memory"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		N8N: N8N{
			TimeoutSeconds:               defaultTimeoutSeconds,
			ConnectionTestTimeoutSeconds: defaultConnectionTestTimeoutSeconds,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Store: Store{
			Backend: defaultStoreBackend,
		},
		Serve: Serve{
			Bind: defaultServeBind,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyRequestTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
