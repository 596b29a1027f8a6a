package models

import "encoding/json"

// Optional carries JSON field presence through a partial update. Three states:
// the key was absent (Defined=false), the key was null (Defined=true,
// Value=nil), or the key held a value. Plain pointers cannot tell the first
// two apart, and clearing a nickname must not look like leaving it alone.
type Optional[T any] struct {
	Defined bool
	Value   *T
}

// Some wraps a concrete value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Defined: true, Value: &v}
}

// Null is an explicitly-cleared field.
func Null[T any]() Optional[T] {
	return Optional[T]{Defined: true}
}

// UnmarshalJSON is only invoked when the key is present in the payload, so
// Defined flips to true for both null and concrete values.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Defined = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Get returns the concrete value when one was supplied.
func (o Optional[T]) Get() (T, bool) {
	if !o.Defined || o.Value == nil {
		var zero T
		return zero, false
	}
	return *o.Value, true
}
