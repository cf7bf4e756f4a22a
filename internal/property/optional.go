package property

import (
	"bytes"
	"encoding/json"
)

// Optional is a payload field that remembers whether its key was present.
// A key sent as JSON null is present with a nil Val.
type Optional[T any] struct {
	Set bool
	Val *T
}

// Some returns a present field holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Val: &v}
}

// Null returns a present field holding JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// IsZero reports whether the key was absent. The omitzero tag option uses it.
func (o Optional[T]) IsZero() bool {
	return !o.Set
}

// IsNull reports whether the key was present with a null value.
func (o Optional[T]) IsNull() bool {
	return o.Set && o.Val == nil
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Val = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Val = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Val == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Val)
}
