// Package cache provides generic, thread-safe cache implementations used in
// front of messagestore backends.
//
// This package offers two cache types:
//   - SimpleCache: no eviction policy (stores items indefinitely)
//   - LRUCache: Least Recently Used eviction based on size
//
// All cache implementations are thread-safe with built-in statistics (always
// enabled for observability) and optional Prometheus metrics integration via
// functional options. GetOrLoad gives per-key single-flight loading: under
// concurrent misses for the same key the loader runs at most once.
package cache

import (
	"github.com/c360/messagestore/errors"
)

// Cache represents a generic cache interface that all cache implementations
// must satisfy. The cache is parameterized by value type V for type safety.
type Cache[V any] interface {
	// Get retrieves a value by key. Returns the value and true if found,
	// zero value and false otherwise.
	Get(key string) (V, bool)

	// Set stores a value with the given key, overwriting any prior entry.
	// Returns true if a new entry was created, false if updated.
	Set(key string, value V) (bool, error)

	// GetOrLoad returns the cached value for key if present; otherwise it
	// invokes loader, stores the result, and returns it. Concurrent calls
	// for the same uncached key share one loader invocation. A loader error
	// is returned to every waiting caller and nothing is cached.
	GetOrLoad(key string, loader func() (V, error)) (V, error)

	// Delete removes an entry by key. Returns true if the key existed.
	Delete(key string) (bool, error)

	// Clear removes all entries from the cache.
	Clear() error

	// Size returns the current number of entries in the cache.
	Size() int

	// Keys returns a slice of all keys currently in the cache.
	Keys() []string

	// Stats returns cache statistics, or nil for the no-op cache.
	Stats() *Statistics

	// Close shuts down the cache and releases any resources.
	Close() error
}

// EvictCallback is called when an entry is evicted from the cache.
// It receives the key and value of the evicted entry.
type EvictCallback[V any] func(key string, value V)

// validateKey validates a cache key for basic requirements.
// Returns a classified error if the key is invalid.
func validateKey(key string) error {
	if key == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "cache", "validateKey", "key cannot be empty")
	}
	return nil
}
