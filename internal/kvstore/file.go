package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 25 * time.Millisecond

// FileStore keeps every key in one JSON object on disk. Reads take a shared
// lock and writes an exclusive lock on a sibling ".lock" file, so separate
// processes (the CLI and a running server) see whole values only.
type FileStore struct {
	path string
	lock *flock.Flock
	mu   sync.Mutex
}

// OpenFile prepares a file-backed store at path. The file is created lazily on
// the first Set.
func OpenFile(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("file store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Path returns the JSON file location.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.acquire(ctx, false); err != nil {
		return nil, err
	}
	defer func() { _ = f.lock.Unlock() }()

	values, err := f.read()
	if err != nil {
		return nil, err
	}
	value, ok := values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone([]byte(value)), nil
}

func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := validate(key, value); err != nil {
		return err
	}
	return f.update(ctx, func(values map[string]json.RawMessage) {
		values[key] = slices.Clone(value)
	})
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	return f.update(ctx, func(values map[string]json.RawMessage) {
		delete(values, key)
	})
}

// Close releases the lock file handle.
func (f *FileStore) Close() error {
	if f == nil || f.lock == nil {
		return nil
	}
	return f.lock.Close()
}

func (f *FileStore) update(ctx context.Context, mutate func(map[string]json.RawMessage)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.acquire(ctx, true); err != nil {
		return err
	}
	defer func() { _ = f.lock.Unlock() }()

	values, err := f.read()
	if err != nil {
		return err
	}
	mutate(values)
	return f.write(values)
}

func (f *FileStore) acquire(ctx context.Context, exclusive bool) error {
	ctx = ensureContext(ctx)
	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = f.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = f.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return fmt.Errorf("lock %s: %w", f.path, err)
	}
	if !ok {
		return fmt.Errorf("lock %s: not acquired", f.path)
	}
	return nil
}

func (f *FileStore) read() (map[string]json.RawMessage, error) {
	values := make(map[string]json.RawMessage)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return values, nil
}

func (f *FileStore) write(values map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
