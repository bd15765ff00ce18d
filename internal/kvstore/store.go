package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Persisted keys shared by the settings, snapshot and color packages.
const (
	KeyAPIURL           = "n8n_api_url"
	KeyAPIKey           = "n8n_api_key"
	KeyWorkflowSnapshot = "workflow_snapshot"
	KeyFolderColors     = "folder_colors"
	KeyDarkMode         = "dark_mode"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kvstore: key not found")

// ErrInvalidValue is returned by Set when the value is not a JSON document.
var ErrInvalidValue = errors.New("kvstore: value is not valid JSON")

// Store is a durable key-value store. Values are JSON documents and every Set
// replaces the previous value as a whole.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the value stored under key into dst.
func GetJSON(ctx context.Context, store Store, key string, dst any) error {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, store Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, raw)
}

func validate(key string, value []byte) error {
	if key == "" {
		return errors.New("kvstore: key cannot be empty")
	}
	if !json.Valid(value) {
		return fmt.Errorf("%w: key %s", ErrInvalidValue, key)
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
