package transaction

import "encoding/json"

// Optional tracks whether a field appeared in a JSON payload at all, and, if
// it did, whether it was an explicit null. Partial updates need all three
// states: omitted fields must not touch the stored row, while explicit nulls
// clear nullable columns.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// Ptr returns the value as a nullable pointer: nil when the field was an
// explicit null.
func (o Optional[T]) Ptr() *T {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

func NewOptional[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

func NullOptional[T any]() Optional[T] {
	return Optional[T]{Set: true, Valid: false}
}
