package storage

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// fileSnapshot is the on-disk document of a FileKV.
type fileSnapshot struct {
	Version   int               `json:"version"`
	Entries   map[string]string `json:"entries"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// FileKV keeps every entry in a single JSON file. The whole document is
// rewritten on each mutation.
type FileKV struct {
	mu    sync.RWMutex
	file  *os.File
	snap  *fileSnapshot
	quota int
}

// OpenFileKV opens or creates the store file at path.
func OpenFileKV(path string, quota int) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open store file: %w", err)
	}
	kv := &FileKV{file: f, quota: quota}
	if err := kv.load(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to load store file %s: %w", path, err)
	}
	return kv, nil
}

func (kv *FileKV) load() error {
	info, err := kv.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		kv.snap = &fileSnapshot{Version: 1, Entries: map[string]string{}, UpdatedAt: time.Now()}
		return kv.flushLocked(kv.snap)
	}
	var snap fileSnapshot
	if err := json.NewDecoder(kv.file).Decode(&snap); err != nil {
		return err
	}
	if snap.Entries == nil {
		snap.Entries = map[string]string{}
	}
	kv.snap = &snap
	return nil
}

func (kv *FileKV) flushLocked(snap *fileSnapshot) error {
	if _, err := kv.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	enc := json.NewEncoder(kv.file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return err
	}
	// truncate in case new content is shorter
	pos, err := kv.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := kv.file.Truncate(pos); err != nil {
		return err
	}
	return kv.file.Sync()
}

func (kv *FileKV) withWrite(ctx context.Context, fn func(entries map[string]string) error) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if kv.snap == nil {
		return ErrClosed
	}
	// Mutate a copy so a failed flush leaves the previous entries visible.
	next := &fileSnapshot{Version: kv.snap.Version, Entries: maps.Clone(kv.snap.Entries)}
	if err := fn(next.Entries); err != nil {
		return err
	}
	next.UpdatedAt = time.Now()
	if err := kv.flushLocked(next); err != nil {
		return err
	}
	kv.snap = next
	return nil
}

func (kv *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	if kv.snap == nil {
		return "", false, ErrClosed
	}
	v, ok := kv.snap.Entries[key]
	return v, ok, nil
}

func (kv *FileKV) Set(ctx context.Context, key, value string) error {
	return kv.withWrite(ctx, func(entries map[string]string) error {
		if kv.quota > 0 && usageWith(entries, key, value) > kv.quota {
			return ErrQuotaExceeded
		}
		entries[key] = value
		return nil
	})
}

func (kv *FileKV) Delete(ctx context.Context, key string) error {
	return kv.withWrite(ctx, func(entries map[string]string) error {
		delete(entries, key)
		return nil
	})
}

func (kv *FileKV) Close() error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.snap == nil {
		return nil
	}
	kv.snap = nil
	return kv.file.Close()
}
