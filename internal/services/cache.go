package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"
)

// CacheStore persists the prompt to response mapping as one snapshot.
// Load returns the whole mapping and Save replaces it.
type CacheStore interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, entries map[string]string) error
}

type fileCacheStore struct {
	path string
}

func NewFileCacheStore(path string) CacheStore {
	return &fileCacheStore{path: path}
}

// Load implements CacheStore. A missing file is an empty cache.
func (f *fileCacheStore) Load(ctx context.Context) (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrCacheIO, f.path, err)
	}

	entries := map[string]string{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", ErrCacheIO, f.path, err)
	}
	return entries, nil
}

// Save implements CacheStore. The file is replaced by rename so readers
// never observe a partial write.
func (f *fileCacheStore) Save(ctx context.Context, entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode cache: %v", ErrCacheIO, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create cache directory: %v", ErrCacheIO, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", ErrCacheIO, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to write temp file: %v", ErrCacheIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close temp file: %v", ErrCacheIO, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("%w: failed to replace %s: %v", ErrCacheIO, f.path, err)
	}
	return nil
}

type redisCacheStore struct {
	client *redis.Client
	key    string
}

func NewRedisCacheStore(client *redis.Client, key string) CacheStore {
	return &redisCacheStore{client: client, key: key}
}

// NewRedisCacheStoreFromURL parses a redis:// URL into a client.
func NewRedisCacheStoreFromURL(rawURL, key string) (CacheStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return NewRedisCacheStore(redis.NewClient(opts), key), nil
}

// Load implements CacheStore.
func (r *redisCacheStore) Load(ctx context.Context) (map[string]string, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get %s: %v", ErrCacheIO, r.key, err)
	}

	entries := map[string]string{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", ErrCacheIO, r.key, err)
	}
	return entries, nil
}

// Save implements CacheStore. SET replaces the value atomically.
func (r *redisCacheStore) Save(ctx context.Context, entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: failed to encode cache: %v", ErrCacheIO, err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: failed to set %s: %v", ErrCacheIO, r.key, err)
	}
	return nil
}

type memoryCacheStore struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryCacheStore returns an in-process store. Snapshots are copied in
// both directions so callers cannot mutate stored state.
func NewMemoryCacheStore(seed map[string]string) CacheStore {
	entries := map[string]string{}
	maps.Copy(entries, seed)
	return &memoryCacheStore{entries: entries}
}

// Load implements CacheStore.
func (m *memoryCacheStore) Load(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.entries), nil
}

// Save implements CacheStore.
func (m *memoryCacheStore) Save(ctx context.Context, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = maps.Clone(entries)
	if m.entries == nil {
		m.entries = map[string]string{}
	}
	return nil
}
