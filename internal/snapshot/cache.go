package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"n8nexplorer/internal/clock"
	"n8nexplorer/internal/kvstore"
	"n8nexplorer/internal/logging"
	"n8nexplorer/internal/n8n"
)

// Snapshot is the last successful sync.
type Snapshot struct {
	Workflows []n8n.Workflow `json:"workflows"`
	SyncedAt  time.Time      `json:"syncedAt"`
}

// Cache reads and writes the snapshot through a key-value store.
type Cache struct {
	store  kvstore.Store
	clock  clock.Clock
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the clock used to stamp SyncedAt.
func WithClock(c clock.Clock) Option {
	return func(cache *Cache) {
		if c != nil {
			cache.clock = c
		}
	}
}

// WithLogger sets the logger used for load failures.
func WithLogger(logger *slog.Logger) Option {
	return func(cache *Cache) {
		if logger != nil {
			cache.logger = logger
		}
	}
}

// NewCache creates a cache over store. A nil store yields a cache that never
// holds a snapshot.
func NewCache(store kvstore.Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		clock:  clock.Real{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "snapshot")
	return c
}

// Store replaces the snapshot with workflows stamped with the current time
// and returns the snapshot as written. On error the returned snapshot still
// carries the stamp but was not persisted.
func (c *Cache) Store(ctx context.Context, workflows []n8n.Workflow) (Snapshot, error) {
	snap := Snapshot{
		Workflows: slices.Clone(workflows),
		SyncedAt:  c.clock.Now().UTC(),
	}
	if snap.Workflows == nil {
		snap.Workflows = []n8n.Workflow{}
	}
	if c.store == nil {
		return snap, nil
	}
	if err := kvstore.SetJSON(ctx, c.store, kvstore.KeyWorkflowSnapshot, snap); err != nil {
		return snap, fmt.Errorf("store snapshot: %w", err)
	}
	logging.WithContext(ctx, c.logger).Debug("snapshot stored",
		logging.Int("workflow_count", len(snap.Workflows)),
		logging.Time("synced_at", snap.SyncedAt))
	return snap, nil
}

// Load returns the stored snapshot. Missing, unreadable or undecodable
// snapshots are all reported as absent; the latter two are logged.
func (c *Cache) Load(ctx context.Context) (Snapshot, bool) {
	if c.store == nil {
		return Snapshot{}, false
	}
	var snap Snapshot
	err := kvstore.GetJSON(ctx, c.store, kvstore.KeyWorkflowSnapshot, &snap)
	if errors.Is(err, kvstore.ErrNotFound) {
		return Snapshot{}, false
	}
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "failed to load workflow snapshot",
			"snapshot_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the next successful sync rewrites the snapshot"),
			logging.String(logging.FieldImpact, "no cached workflows available for offline fallback"))
		return Snapshot{}, false
	}
	if snap.Workflows == nil {
		snap.Workflows = []n8n.Workflow{}
	}
	return snap, true
}
