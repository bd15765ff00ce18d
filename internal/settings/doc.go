// Package settings is the credential store and display-preference layer.
//
// Credentials saved through SaveCredentials are verified against the n8n
// instance before they are persisted; values from the config file or the
// N8N_API_URL / N8N_API_KEY environment act as a fallback when nothing has
// been saved.
package settings
