package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileCache is an on-disk Cache: one file per key, written atomically via a
// temp file plus rename so readers never observe a partial write. It backs
// the central distance-matrix cache, which must survive process restarts and
// be shared between planner invocations on the same host or a shared volume.
type FileCache struct {
	mu         sync.RWMutex
	dir        string
	defaultTTL time.Duration

	hits   int64
	misses int64

	closed bool
}

type fileEnvelope struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func (e *fileEnvelope) isExpired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// NewFileCache creates dir (and parents) if needed and returns a FileCache
// rooted there.
func NewFileCache(opts *Options) (*FileCache, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	dir := opts.FileDir
	if dir == "" {
		dir = "cache"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, defaultTTL: opts.DefaultTTL}, nil
}

func (c *FileCache) pathFor(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

func (c *FileCache) readEnvelope(key string) (*fileEnvelope, error) {
	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrCacheClosed
	}

	env, err := c.readEnvelope(key)
	if err != nil {
		if err == ErrKeyNotFound {
			c.misses++
		}
		return nil, err
	}
	if env.isExpired() {
		c.misses++
		return nil, ErrKeyNotFound
	}
	c.hits++
	return env.Value, nil
}

// Set writes value atomically: it stages a temp file in dir then renames it
// over the target path, so a concurrent reader sees either the previous
// value or the complete new one, never a partial write.
func (c *FileCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}

	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	env := fileEnvelope{Key: key, Value: value, ExpiresAt: expiresAt}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	target := c.pathFor(key)
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, target)
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	if err := os.Remove(c.pathFor(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *FileCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false, ErrCacheClosed
	}
	env, err := c.readEnvelope(key)
	if err != nil {
		if err == ErrKeyNotFound {
			return false, nil
		}
		return false, err
	}
	return !env.isExpired(), nil
}

func (c *FileCache) GetWithTTL(ctx context.Context, key string) ([]byte, time.Duration, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, 0, ErrCacheClosed
	}
	env, err := c.readEnvelope(key)
	if err != nil {
		return nil, 0, err
	}
	if env.isExpired() {
		return nil, 0, ErrKeyNotFound
	}
	if env.ExpiresAt.IsZero() {
		return env.Value, -1, nil
	}
	return env.Value, time.Until(env.ExpiresAt), nil
}

func (c *FileCache) MGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, err := c.Get(ctx, k); err == nil {
			result[k] = v
		}
	}
	return result, nil
}

func (c *FileCache) MSet(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	for k, v := range entries {
		if err := c.Set(ctx, k, v, ttl); err != nil {
			return err
		}
	}
	return nil
}

func (c *FileCache) MDelete(ctx context.Context, keys []string) (int64, error) {
	var count int64
	for _, k := range keys {
		before, _ := c.Exists(ctx, k)
		if err := c.Delete(ctx, k); err != nil {
			return count, err
		}
		if before {
			count++
		}
	}
	return count, nil
}

func (c *FileCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrCacheClosed
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		env, err := c.readEnvelopeFile(e.Name())
		if err != nil {
			continue
		}
		if !env.isExpired() && matchPattern(pattern, env.Key) {
			keys = append(keys, env.Key)
		}
	}
	return keys, nil
}

func (c *FileCache) readEnvelopeFile(name string) (*fileEnvelope, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return nil, err
	}
	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (c *FileCache) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	keys, err := c.Keys(ctx, pattern)
	if err != nil {
		return 0, err
	}
	return c.MDelete(ctx, keys)
}

func (c *FileCache) Stats(ctx context.Context) (*Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrCacheClosed
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Hits:         c.hits,
		Misses:       c.misses,
		KeysByPrefix: make(map[string]int64),
		Backend:      "file",
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		env, err := c.readEnvelopeFile(e.Name())
		if err != nil || env.isExpired() {
			continue
		}
		stats.TotalKeys++
		stats.MemoryBytes += info.Size()
		stats.KeysByPrefix[extractPrefix(env.Key)]++
	}
	total := stats.Hits + stats.Misses
	if total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats, nil
}

func (c *FileCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCacheClosed
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		os.Remove(filepath.Join(c.dir, e.Name()))
	}
	return nil
}

func (c *FileCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
