// Package optional provides a zero-or-one value container used by the store
// to signal absence without nil.
//
// A query that may find nothing returns optional.Value[T] instead of a
// nullable result or a (value, ok, error) triple. The container itself is
// never nil: absence is the empty state of the value, and every call site is
// forced to handle both states explicitly.
package optional

import (
	"encoding/json"
	"fmt"
)

// Value holds zero or exactly one value of type T.
// The zero value of Value[T] is empty and ready to use.
type Value[T any] struct {
	value   T
	present bool
}

// Of returns a Value holding v.
func Of[T any](v T) Value[T] {
	return Value[T]{value: v, present: true}
}

// Empty returns a Value holding nothing.
func Empty[T any]() Value[T] {
	return Value[T]{}
}

// IsPresent reports whether a value is held.
func (v Value[T]) IsPresent() bool {
	return v.present
}

// Get returns the held value and true, or the zero value and false when empty.
func (v Value[T]) Get() (T, bool) {
	return v.value, v.present
}

// MustGet returns the held value and panics when empty. Callers that cannot
// tolerate a panic should use Get or OrElse instead.
func (v Value[T]) MustGet() T {
	if !v.present {
		panic("optional: MustGet on empty value")
	}
	return v.value
}

// OrElse returns the held value, or def when empty.
func (v Value[T]) OrElse(def T) T {
	if !v.present {
		return def
	}
	return v.value
}

// String implements fmt.Stringer.
func (v Value[T]) String() string {
	if !v.present {
		return "empty"
	}
	return fmt.Sprintf("present(%v)", v.value)
}

// Map applies fn to the held value, returning an empty Value[U] when v is
// empty. It is a package-level function because Go methods cannot introduce
// type parameters.
func Map[T, U any](v Value[T], fn func(T) U) Value[U] {
	if !v.present {
		return Empty[U]()
	}
	return Of(fn(v.value))
}

// MarshalJSON encodes the held value, or null when empty.
func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}

// UnmarshalJSON decodes null as empty and any other JSON value as present.
func (v *Value[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Empty[T]()
		return nil
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*v = Of(value)
	return nil
}
