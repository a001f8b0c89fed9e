// Package store implements the message store orchestrator.
//
// A Store composes three collaborators behind one public contract: a storage
// backend for durable payloads, a write-through cache in front of it, and an
// audit log notified at defined lifecycle points. The contract is
// command/query separated: Save mutates and returns nothing but an error,
// Read answers without mutating observable state. Absence is data, not
// failure - Read returns an empty optional.Value for an id that was never
// saved and reserves errors for real backend trouble.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/c360/messagestore/audit"
	"github.com/c360/messagestore/errors"
	"github.com/c360/messagestore/optional"
	"github.com/c360/messagestore/pkg/cache"
	"github.com/c360/messagestore/storage"
)

// Config holds construction-time configuration for a Store. It is validated
// once in New and trusted thereafter.
type Config struct {
	// Cache configures the payload cache sitting in front of the backend.
	Cache cache.Config `json:"cache"`

	// LockStripes is the number of mutex stripes serializing writes per id.
	// Zero selects the default.
	LockStripes int `json:"lock_stripes"`
}

const defaultLockStripes = 32

// DefaultConfig returns the default store configuration: an enabled
// unbounded cache and the default stripe count.
func DefaultConfig() Config {
	return Config{
		Cache:       cache.DefaultConfig(),
		LockStripes: defaultLockStripes,
	}
}

// Validate checks the configuration for construction.
func (c Config) Validate() error {
	if c.LockStripes < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Store", "Validate",
			"lock stripes must not be negative")
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	return nil
}

// Store orchestrates a backend, a cache, and an audit log. Safe for use by
// concurrent callers; a Save and a Read racing on the same id are
// linearizable with respect to that id.
type Store struct {
	backend storage.Backend
	cache   cache.Cache[string]
	audit   audit.Log
	logger  *slog.Logger
	metrics *storeMetrics

	// locks stripes per-id write exclusion. Save holds the stripe
	// exclusively around the backend write + cache update pair; Read holds
	// it shared around the cache load, so a loader never interleaves with a
	// half-applied save.
	locks []sync.RWMutex
}

// New constructs a Store from a validated configuration and a backend.
// Construction fails immediately on an absent backend or invalid
// configuration, so any live Store is guaranteed usable.
func New(cfg Config, backend storage.Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingBackend, "Store", "New",
			"backend must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stripes := cfg.LockStripes
	if stripes == 0 {
		stripes = defaultLockStripes
	}

	s := &Store{
		backend: backend,
		audit:   audit.Noop{},
		logger:  slog.Default(),
		locks:   make([]sync.RWMutex, stripes),
	}

	settings := applyOptions(opts...)
	if settings.audit != nil {
		s.audit = settings.audit
	}
	if settings.logger != nil {
		s.logger = settings.logger
	}

	var cacheOpts []cache.Option[string]
	if settings.registry != nil {
		metrics, err := newStoreMetrics(settings.registry)
		if err != nil {
			return nil, errors.WrapTransient(err, "Store", "New", "metrics registration")
		}
		s.metrics = metrics
		cacheOpts = append(cacheOpts, cache.WithMetrics[string](settings.registry, "store"))
	}

	payloadCache, err := cache.NewFromConfig[string](cfg.Cache, cacheOpts...)
	if err != nil {
		return nil, err
	}
	s.cache = payloadCache

	return s, nil
}

// lockFor returns the stripe guarding id. Ids are non-negative once
// validated, so the modulo is well defined.
func (s *Store) lockFor(id storage.ID) *sync.RWMutex {
	return &s.locks[uint64(id)%uint64(len(s.locks))]
}

// Save durably writes message as the payload for id and updates the cache
// entry for it (write-through, so the next Read needs no backend trip).
// After Save returns nil, a subsequent Read of id observes message, absent
// another concurrent writer.
//
// The message may be empty; the id must be valid. Precondition violations
// are rejected before any backend call.
func (s *Store) Save(ctx context.Context, id storage.ID, message string) error {
	if err := id.Validate(); err != nil {
		s.recordSave("rejected")
		return err
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	s.audit.Saving(id)

	loc := s.backend.Locate(id)
	if err := s.backend.Write(ctx, loc, []byte(message)); err != nil {
		s.recordSave("error")
		return err
	}

	// Write-through: update rather than invalidate, so the payload is
	// served from memory immediately after a save.
	if _, err := s.cache.Set(loc.Key, message); err != nil {
		s.logger.Warn("cache update failed after save",
			"id", id, "error", err)
	}

	s.audit.Saved(id)
	s.recordSave("ok")
	s.logger.Debug("message saved", "id", id, "bytes", len(message))

	return nil
}

// Read returns the payload for id, or an empty optional.Value when no
// payload exists. Not-found is an ordinary outcome, never an error; errors
// are reserved for backend failures. Repeated Reads without an intervening
// Save yield the same result.
func (s *Store) Read(ctx context.Context, id storage.ID) (optional.Value[string], error) {
	if err := id.Validate(); err != nil {
		s.recordRead("rejected")
		return optional.Empty[string](), err
	}

	s.audit.Reading(id)

	mu := s.lockFor(id)
	mu.RLock()
	loc := s.backend.Locate(id)
	payload, err := s.cache.GetOrLoad(loc.Key, func() (string, error) {
		data, loadErr := s.backend.Read(ctx, loc)
		if loadErr != nil {
			return "", loadErr
		}
		return string(data), nil
	})
	mu.RUnlock()

	if err != nil {
		if errors.IsNotFound(err) {
			s.audit.DidNotFind(id)
			s.recordRead("empty")
			return optional.Empty[string](), nil
		}
		s.recordRead("error")
		return optional.Empty[string](), err
	}

	s.audit.Returning(id)
	s.recordRead("found")

	return optional.Of(payload), nil
}

// CacheStats exposes the cache statistics for observability. Nil when the
// cache is disabled.
func (s *Store) CacheStats() *cache.Statistics {
	return s.cache.Stats()
}

// Close releases the store's owned resources. The backend is held by
// reference and is not closed; its owner closes it.
func (s *Store) Close() error {
	if s.metrics != nil {
		s.metrics.unregister()
	}
	return s.cache.Close()
}

func (s *Store) recordSave(outcome string) {
	if s.metrics != nil {
		s.metrics.recordSave(outcome)
	}
}

func (s *Store) recordRead(outcome string) {
	if s.metrics != nil {
		s.metrics.recordRead(outcome)
	}
}
