// Package memstore provides an in-memory storage backend.
//
// It is the test double for the storage interfaces: fully functional, safe
// for concurrent use, and instrumentable with failure injection so callers
// can exercise error paths without a real backend.
package memstore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/c360/messagestore/errors"
	"github.com/c360/messagestore/storage"
)

// Store is an in-memory backend keyed by location.
type Store struct {
	mu       sync.RWMutex
	payloads map[string][]byte

	reads  atomic.Int64
	writes atomic.Int64

	// Failure injection, for tests
	failReads  atomic.Bool
	failWrites atomic.Bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		payloads: make(map[string][]byte),
	}
}

// Locate maps an id to its in-memory key. Pure and injective: the key is the
// decimal form of the id.
func (s *Store) Locate(id storage.ID) storage.Location {
	return storage.Location{Key: id.String()}
}

// Read returns the payload at loc, or a not-found error when absent.
func (s *Store) Read(ctx context.Context, loc storage.Location) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapTransient(err, "memstore", "Read", "context check")
	}
	if s.failReads.Load() {
		return nil, errors.WrapTransient(errors.ErrStorageUnavailable, "memstore", "Read", "injected failure")
	}

	s.mu.RLock()
	payload, exists := s.payloads[loc.Key]
	s.mu.RUnlock()

	s.reads.Add(1)

	if !exists {
		return nil, errors.ErrKeyNotFound
	}

	// Copy so callers cannot mutate stored state
	return append([]byte(nil), payload...), nil
}

// Write fully replaces the payload at loc.
func (s *Store) Write(ctx context.Context, loc storage.Location, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapTransient(err, "memstore", "Write", "context check")
	}
	if s.failWrites.Load() {
		return errors.WrapTransient(errors.ErrStorageUnavailable, "memstore", "Write", "injected failure")
	}

	s.mu.Lock()
	s.payloads[loc.Key] = append([]byte(nil), payload...)
	s.mu.Unlock()

	s.writes.Add(1)
	return nil
}

// Reads returns the number of Read calls that reached the map, found or
// not, for test assertions. Injected failures and cancelled contexts are
// not counted.
func (s *Store) Reads() int64 {
	return s.reads.Load()
}

// Writes returns the number of successful Write calls, for test assertions.
func (s *Store) Writes() int64 {
	return s.writes.Load()
}

// FailReads toggles injected read failures.
func (s *Store) FailReads(fail bool) {
	s.failReads.Store(fail)
}

// FailWrites toggles injected write failures.
func (s *Store) FailWrites(fail bool) {
	s.failWrites.Store(fail)
}

// Len returns the number of stored payloads.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payloads)
}

var _ storage.Backend = (*Store)(nil)
