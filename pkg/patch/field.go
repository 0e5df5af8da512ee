// Package patch provides Field, a value for PATCH request bodies that tells
// apart a key that was absent, a key that was null and a key that carried a
// value.
package patch

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type state uint8

const (
	unchanged state = iota
	cleared
	set
)

// Field is one optionally patchable field. The zero value is Unchanged.
//
// Decoding with encoding/json maps a null to Cleared and any other value to
// Set. A key missing from the object never reaches UnmarshalJSON, so the field
// keeps its zero value and stays Unchanged.
//
// Encoding is lossy on purpose: Unchanged and Cleared both encode as null.
// Field describes a change, it is not a storage format.
type Field[T any] struct {
	state state
	value T
}

// Unchanged returns a field that leaves the current value alone.
func Unchanged[T any]() Field[T] {
	return Field[T]{}
}

// Clear returns a field that removes the current value.
func Clear[T any]() Field[T] {
	return Field[T]{state: cleared}
}

// Set returns a field that replaces the current value with v.
func Set[T any](v T) Field[T] {
	return Field[T]{state: set, value: v}
}

// FromPtr maps nil to Cleared and a non-nil pointer to Set.
func FromPtr[T any](v *T) Field[T] {
	if v == nil {
		return Clear[T]()
	}
	return Set(*v)
}

func (f Field[T]) IsUnchanged() bool { return f.state == unchanged }
func (f Field[T]) IsCleared() bool   { return f.state == cleared }
func (f Field[T]) IsSet() bool       { return f.state == set }

// IsChanged reports whether the field is Cleared or Set.
func (f Field[T]) IsChanged() bool { return f.state != unchanged }

// Value returns the new value and true only when the field is Set.
func (f Field[T]) Value() (T, bool) {
	if f.state != set {
		var zero T
		return zero, false
	}
	return f.value, true
}

// Resolve merges the field into current. Unchanged returns current as is,
// Cleared returns nil and Set returns a pointer to a copy of the new value.
func (f Field[T]) Resolve(current *T) *T {
	switch f.state {
	case cleared:
		return nil
	case set:
		v := f.value
		return &v
	default:
		return current
	}
}

// Map converts a Set value with fn and keeps Unchanged and Cleared as they are.
func Map[T, U any](f Field[T], fn func(T) U) Field[U] {
	switch f.state {
	case set:
		return Set(fn(f.value))
	case cleared:
		return Clear[U]()
	default:
		return Unchanged[U]()
	}
}

// Ptr returns nil for Unchanged, a pointer to nil for Cleared and a pointer to
// a pointer to the value for Set. FromPtrPtr is its inverse.
func (f Field[T]) Ptr() **T {
	switch f.state {
	case set:
		v := f.value
		p := &v
		return &p
	case cleared:
		var p *T
		return &p
	default:
		return nil
	}
}

// FromPtrPtr maps nil to Unchanged, a pointer to nil to Cleared and anything
// else to Set.
func FromPtrPtr[T any](v **T) Field[T] {
	switch {
	case v == nil:
		return Unchanged[T]()
	case *v == nil:
		return Clear[T]()
	default:
		return Set(**v)
	}
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != set {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Clear[T]()
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Set(v)
	return nil
}

func (f Field[T]) String() string {
	switch f.state {
	case cleared:
		return "cleared"
	case set:
		return fmt.Sprintf("set(%v)", f.value)
	default:
		return "unchanged"
	}
}
