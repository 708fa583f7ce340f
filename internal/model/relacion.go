package model

import (
	"bytes"
	"encoding/json"
)

// Relacion is a joined relation as exported by the previous backend, which wrote
// it as a single object, an array of objects or null depending on the join.
type Relacion[T any] struct {
	items []T
}

func (r *Relacion[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		r.items = nil
		return nil
	}
	if b[0] == '[' {
		return json.Unmarshal(b, &r.items)
	}
	var one T
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	r.items = []T{one}
	return nil
}

func (r Relacion[T]) MarshalJSON() ([]byte, error) {
	if len(r.items) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(r.items[0])
}

// NuevaRelacion wraps a single value.
func NuevaRelacion[T any](v T) Relacion[T] {
	return Relacion[T]{items: []T{v}}
}

// FirstRelated collapses any relation shape to its first element, or nil.
func FirstRelated[T any](r Relacion[T]) *T {
	if len(r.items) == 0 {
		return nil
	}
	v := r.items[0]
	return &v
}
