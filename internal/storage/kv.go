// =============================================================================
// FRSC Operations E-Dashboard - Key-Value Store
// =============================================================================
//
// The dashboard persists two string blobs under fixed keys. Any backend that
// can get, set and delete a string by key can hold them:
//
//   MemoryKV - process memory with an optional byte quota
//   FileKV   - one JSON document on disk
//   SQLiteKV - a single-table SQLite database
//
// =============================================================================

package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/frsc-ops/edashboard/internal/config"
)

// ErrQuotaExceeded is returned when a write would exceed the store quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// KV is a string key-value store.
type KV interface {
	// Get returns the value stored under key. The boolean is false when the
	// key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns the backend selected by cfg.
func Open(cfg config.StoreConfig) (KV, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryKV(cfg.QuotaBytes), nil
	case config.DriverFile, "":
		return OpenFileKV(cfg.Path, cfg.QuotaBytes)
	case config.DriverSQLite:
		return OpenSQLiteKV(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// =============================================================================
// MEMORY BACKEND
// =============================================================================

// MemoryKV keeps entries in a map.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]string
	quota   int
	closed  bool
}

// NewMemoryKV returns an empty store. A quota of zero or less disables the
// size limit.
func NewMemoryKV(quota int) *MemoryKV {
	return &MemoryKV{entries: map[string]string{}, quota: quota}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.quota > 0 && usageWith(m.entries, key, value) > m.quota {
		return ErrQuotaExceeded
	}
	m.entries[key] = value
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.entries, key)
	return nil
}

func (m *MemoryKV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// usageWith returns the number of key and value bytes the entries would
// occupy after key is set to value.
func usageWith(entries map[string]string, key, value string) int {
	total := len(key) + len(value)
	for k, v := range entries {
		if k != key {
			total += len(k) + len(v)
		}
	}
	return total
}
