package colors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"n8nexplorer/internal/kvstore"
	"n8nexplorer/internal/logging"
)

// Registry maps folder paths to colors through a key-value store.
type Registry struct {
	store  kvstore.Store
	logger *slog.Logger
	mu     sync.Mutex
}

// NewRegistry creates a registry over store.
func NewRegistry(store kvstore.Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{
		store:  store,
		logger: logging.NewComponentLogger(logger, "colors"),
	}
}

// Get returns the color assigned to path, or Default. Store failures are
// logged and read as unset.
func (r *Registry) Get(ctx context.Context, path string) Color {
	assignments, err := r.read(ctx)
	if err != nil {
		r.warnReadFailure(ctx, err)
		return Default
	}
	if color, ok := assignments[path]; ok && color.Valid() {
		return color
	}
	return Default
}

// All returns a copy of every stored assignment. Store failures are logged and
// read as empty.
func (r *Registry) All(ctx context.Context) map[string]Color {
	assignments, err := r.read(ctx)
	if err != nil {
		r.warnReadFailure(ctx, err)
		return map[string]Color{}
	}
	return assignments
}

// Set assigns color to path and persists the whole map immediately.
func (r *Registry) Set(ctx context.Context, path string, color Color) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("folder path cannot be empty")
	}
	if !color.Valid() {
		return fmt.Errorf("unknown color %q", color)
	}
	return r.update(ctx, func(assignments map[string]Color) {
		assignments[path] = color
	})
}

// Reset removes the assignment for path.
func (r *Registry) Reset(ctx context.Context, path string) error {
	return r.update(ctx, func(assignments map[string]Color) {
		delete(assignments, path)
	})
}

func (r *Registry) update(ctx context.Context, mutate func(map[string]Color)) error {
	if r.store == nil {
		return errors.New("color store not configured")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	assignments, err := r.read(ctx)
	if err != nil {
		// An unreadable map is never overwritten.
		return fmt.Errorf("load folder colors: %w", err)
	}
	mutate(assignments)
	if err := kvstore.SetJSON(ctx, r.store, kvstore.KeyFolderColors, assignments); err != nil {
		return fmt.Errorf("save folder colors: %w", err)
	}
	logging.WithContext(ctx, r.logger).Debug("folder colors saved",
		logging.Int("assignment_count", len(assignments)))
	return nil
}

func (r *Registry) read(ctx context.Context) (map[string]Color, error) {
	assignments := map[string]Color{}
	if r.store == nil {
		return assignments, nil
	}
	var stored map[string]Color
	err := kvstore.GetJSON(ctx, r.store, kvstore.KeyFolderColors, &stored)
	if errors.Is(err, kvstore.ErrNotFound) {
		return assignments, nil
	}
	if err != nil {
		return nil, err
	}
	maps.Copy(assignments, stored)
	return assignments, nil
}

func (r *Registry) warnReadFailure(ctx context.Context, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, r.logger), "failed to load folder colors",
		"folder_colors_load_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the state store path and permissions"),
		logging.String(logging.FieldImpact, "folders are shown with the default color"))
}
