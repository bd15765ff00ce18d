package testsupport

import (
	"context"
	"errors"
	"sync"

	"n8nexplorer/internal/kvstore"
)

// ErrStoreUnavailable is returned by FailingStore when a failure is armed.
var ErrStoreUnavailable = errors.New("store unavailable")

// FailingStore wraps a MemoryStore and fails reads or writes on demand.
type FailingStore struct {
	*kvstore.MemoryStore

	mu        sync.Mutex
	failGet   bool
	failSet   bool
	setCalls  int
	lastSetAt string
}

// NewFailingStore returns a store that behaves like memory until armed.
func NewFailingStore() *FailingStore {
	return &FailingStore{MemoryStore: kvstore.NewMemory()}
}

// FailGets toggles read failures.
func (s *FailingStore) FailGets(fail bool) {
	s.mu.Lock()
	s.failGet = fail
	s.mu.Unlock()
}

// FailSets toggles write failures.
func (s *FailingStore) FailSets(fail bool) {
	s.mu.Lock()
	s.failSet = fail
	s.mu.Unlock()
}

// SetCalls reports how many Set calls were attempted.
func (s *FailingStore) SetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCalls
}

// LastSetKey reports the key of the most recent Set call.
func (s *FailingStore) LastSetKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSetAt
}

func (s *FailingStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	fail := s.failGet
	s.mu.Unlock()
	if fail {
		return nil, ErrStoreUnavailable
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *FailingStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.setCalls++
	s.lastSetAt = key
	fail := s.failSet
	s.mu.Unlock()
	if fail {
		return ErrStoreUnavailable
	}
	return s.MemoryStore.Set(ctx, key, value)
}
