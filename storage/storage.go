// Package storage defines the pluggable backend interfaces for message
// persistence.
//
// The capability surface is deliberately segregated into three narrow roles -
// Locator, Reader, Writer - rather than one wide interface with members some
// implementations cannot honor. A backend that cannot support a role must not
// claim it; composing only the roles a technology truly supports keeps every
// implementation substitutable for the interfaces it advertises.
//
// Example implementations:
//   - filestore.Store: one file per id under a working directory
//   - boltstore.Store: bbolt embedded key-value file
//   - kvstore.Store: NATS JetStream KV bucket
//   - memstore.Store: in-memory map, for tests and embedding
//
// Thread Safety:
// All backend implementations must be safe for concurrent use from multiple
// goroutines.
package storage

import (
	"context"
	"fmt"

	"github.com/c360/messagestore/errors"
)

// ID identifies one stored message. IDs are non-negative integers; exactly
// one payload exists per ID in a backend at any time.
type ID int64

// Validate reports whether the ID is usable as a storage identifier.
// Negative IDs are a precondition violation, never a silent no-op.
func (id ID) Validate() error {
	if id < 0 {
		return errors.WrapInvalid(errors.ErrInvalidID, "storage", "Validate",
			fmt.Sprintf("id must be non-negative, got %d", id))
	}
	return nil
}

// String returns the decimal form of the ID.
func (id ID) String() string {
	return fmt.Sprintf("%d", int64(id))
}

// Location is a backend-specific descriptor for where a payload lives:
// a relative file name for file backends, a key for key-value backends.
// Locations are derived deterministically from IDs and carry no state.
type Location struct {
	Key string
}

// Locator maps message IDs to backend locations.
//
// Locate must be pure and total: no side effects, defined for every valid ID,
// and injective within one backend configuration (distinct IDs never collide
// on one location).
type Locator interface {
	Locate(id ID) Location
}

// Reader retrieves payloads from backend locations.
type Reader interface {
	// Read returns the payload stored at loc. When no payload exists it
	// returns an error satisfying errors.IsNotFound; the caller - not the
	// backend - decides whether absence is an error.
	Read(ctx context.Context, loc Location) ([]byte, error)
}

// Writer stores payloads at backend locations.
type Writer interface {
	// Write fully replaces the payload at loc or fails without leaving a
	// partial write observable to a subsequent Read.
	Write(ctx context.Context, loc Location, payload []byte) error
}

// Backend is the full capability set the store orchestrator requires.
// Implementations must support all three roles meaningfully - a backend that
// would have to panic or error on one of them should implement only the
// narrower interfaces it can honor.
type Backend interface {
	Locator
	Reader
	Writer
}
