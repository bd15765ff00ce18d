// Package config loads, normalizes, and validates n8nexplorer configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// N8N_API_URL and N8N_API_KEY. The Config type centralizes the connection,
// storage, serve and logging settings so the CLI and the local API server
// discover them in one pass.
package config
