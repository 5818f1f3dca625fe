package todo

import (
	"encoding/json"
	"reflect"
)

// Optional distinguishes "not provided" from any provided value, including
// the zero value and nil.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a provided Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an Optional that was not provided.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// IsSet reports whether a value was provided.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it was provided.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// Or returns the provided value or def.
func (o Optional[T]) Or(def T) T {
	if o.set {
		return o.value
	}
	return def
}

// UnmarshalJSON marks the field as provided. An explicit null counts as
// provided only when T can hold nil; otherwise the field stays unset.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	var v T
	if string(data) == "null" {
		*o = Optional[T]{}
		if nullable[T]() {
			*o = Some(v)
		}
		return nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

func nullable[T any]() bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	}
	return false
}

// MarshalJSON encodes the value, or null when not provided.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
