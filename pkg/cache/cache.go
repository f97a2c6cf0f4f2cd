// Package cache provides a generic caching interface and interchangeable
// backends (in-memory, Redis, atomic on-disk file). internal/matrix uses it
// as the storage layer for the central distance-matrix cache.
package cache

import (
	"context"
	"errors"
	"time"
)

// Backend names selectable via configuration.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendFile   = "file"
)

// Standard errors returned by cache operations.
var (
	// ErrKeyNotFound is returned when a requested key does not exist.
	ErrKeyNotFound = errors.New("key not found")
	// ErrCacheClosed is returned when an operation is attempted on a closed cache.
	ErrCacheClosed = errors.New("cache is closed")
)

// Cache is the common interface implemented by every backend.
type Cache interface {
	// Get retrieves the value for key. Returns ErrKeyNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value for key with the given TTL. ttl<=0 uses the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// GetWithTTL retrieves the value and its remaining TTL.
	GetWithTTL(ctx context.Context, key string) (value []byte, ttl time.Duration, err error)

	// MGet retrieves multiple keys; absent keys are omitted from the result.
	MGet(ctx context.Context, keys []string) (map[string][]byte, error)
	// MSet stores multiple key-value pairs under one TTL.
	MSet(ctx context.Context, entries map[string][]byte, ttl time.Duration) error
	// MDelete removes multiple keys, returning the count actually deleted.
	MDelete(ctx context.Context, keys []string) (int64, error)

	// Keys returns all keys matching pattern ("*", "prefix*", "*suffix", "prefix*suffix").
	Keys(ctx context.Context, pattern string) ([]string, error)
	// DeleteByPattern deletes all keys matching pattern, returning the count deleted.
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)

	// Stats reports backend statistics.
	Stats(ctx context.Context) (*Stats, error)
	// Clear removes every key.
	Clear(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}

// Stats describes a cache backend's current state.
type Stats struct {
	TotalKeys    int64
	Hits         int64
	Misses       int64
	HitRate      float64
	MemoryBytes  int64
	KeysByPrefix map[string]int64
	Backend      string
}

// Options configures Cache construction.
type Options struct {
	Backend    string
	DefaultTTL time.Duration

	// Memory backend
	MaxEntries      int
	MaxMemoryBytes  int64
	CleanupInterval time.Duration

	// Redis backend
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int

	// File backend: one file per key, written atomically (temp + rename)
	// under FileDir.
	FileDir string
}

// DefaultOptions returns sane defaults for the memory backend.
func DefaultOptions() *Options {
	return &Options{
		Backend:         BackendMemory,
		DefaultTTL:      5 * time.Minute,
		MaxEntries:      100000,
		MaxMemoryBytes:  256 * 1024 * 1024,
		CleanupInterval: 1 * time.Minute,
		RedisAddr:       "localhost:6379",
		RedisDB:         0,
		RedisPoolSize:   10,
		FileDir:         "cache",
	}
}

// New constructs a Cache for the backend named in opts.
func New(opts *Options) (Cache, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch opts.Backend {
	case BackendRedis:
		return NewRedisCache(opts)
	case BackendFile:
		return NewFileCache(opts)
	case BackendMemory, "":
		return NewMemoryCache(opts), nil
	default:
		return NewMemoryCache(opts), nil
	}
}

// MustNew constructs a Cache or panics.
func MustNew(opts *Options) Cache {
	c, err := New(opts)
	if err != nil {
		panic(err)
	}
	return c
}
