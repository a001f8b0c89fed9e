// Package audit records message store lifecycle events.
//
// The store notifies its audit log at defined points: before and after a
// save, and when a read starts, finds nothing, or returns a payload. Events
// are pure notifications - they carry no return value and have no effect on
// store correctness. A sink that fails must do so silently; auditing is
// best-effort and never aborts a Save or Read.
package audit

import "github.com/c360/messagestore/storage"

// Log receives store lifecycle events. Implementations must be safe for
// concurrent use and must not block longer than their sink requires.
//
// For any single operation the attempt event (Saving, Reading) is always
// delivered before the outcome event (Saved, DidNotFind, Returning).
type Log interface {
	// Saving is emitted before a payload is written for id.
	Saving(id storage.ID)
	// Saved is emitted after the write and cache update completed.
	Saved(id storage.ID)
	// Reading is emitted when a read for id starts.
	Reading(id storage.ID)
	// DidNotFind is emitted when no payload exists for id.
	DidNotFind(id storage.ID)
	// Returning is emitted when a payload for id is about to be returned.
	Returning(id storage.ID)
}

// Noop is a Log that records nothing. Silence is a valid audit policy.
type Noop struct{}

func (Noop) Saving(storage.ID)     {}
func (Noop) Saved(storage.ID)      {}
func (Noop) Reading(storage.ID)    {}
func (Noop) DidNotFind(storage.ID) {}
func (Noop) Returning(storage.ID)  {}

var _ Log = Noop{}

// Multi fans every event out to each wrapped log in order.
type Multi []Log

func (m Multi) Saving(id storage.ID) {
	for _, l := range m {
		l.Saving(id)
	}
}

func (m Multi) Saved(id storage.ID) {
	for _, l := range m {
		l.Saved(id)
	}
}

func (m Multi) Reading(id storage.ID) {
	for _, l := range m {
		l.Reading(id)
	}
}

func (m Multi) DidNotFind(id storage.ID) {
	for _, l := range m {
		l.DidNotFind(id)
	}
}

func (m Multi) Returning(id storage.ID) {
	for _, l := range m {
		l.Returning(id)
	}
}

var _ Log = Multi{}
