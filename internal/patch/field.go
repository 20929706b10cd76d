// internal/patch/field.go

// Package patch decodes partial-update fields with three states: omitted
// (keep the stored value), the "clear" sentinel (blank it) and any other
// value (replace it).
package patch

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ClearSentinel is the wire value that blanks a field.
const ClearSentinel = "clear"

type State uint8

const (
	Keep State = iota
	Clear
	Set
)

// Field is a tagged union over Keep, Clear and Set(value). The zero value is Keep.
type Field[T any] struct {
	State State
	Value T
}

func SetTo[T any](v T) Field[T] { return Field[T]{State: Set, Value: v} }

func Cleared[T any]() Field[T] { return Field[T]{State: Clear} }

// UnmarshalJSON maps null to Keep, "clear" to Clear and anything else to Set.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = Field[T]{}
		return nil
	}
	if bytes.Equal(trimmed, []byte(`"`+ClearSentinel+`"`)) {
		*f = Field[T]{State: Clear}
		return nil
	}
	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*f = Field[T]{State: Set, Value: v}
	return nil
}

// MarshalJSON writes the wire form back, so audit params read like the request.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	switch f.State {
	case Clear:
		return json.Marshal(ClearSentinel)
	case Set:
		return json.Marshal(f.Value)
	default:
		return []byte("null"), nil
	}
}

// Apply writes the field into dst: Keep leaves it, Clear zeroes it, Set replaces it.
func (f Field[T]) Apply(dst *T) {
	switch f.State {
	case Clear:
		var zero T
		*dst = zero
	case Set:
		*dst = f.Value
	}
}

// Changes reports whether applying f to current would change it.
func Changes(f Field[string], current string) bool {
	return changes(f, current, func(a, b string) bool { return a == b })
}

// ChangesFold is Changes with a case-insensitive comparison.
func ChangesFold(f Field[string], current string) bool {
	return changes(f, current, strings.EqualFold)
}

func changes(f Field[string], current string, equal func(a, b string) bool) bool {
	switch f.State {
	case Clear:
		return current != ""
	case Set:
		return !equal(f.Value, current)
	}
	return false
}
