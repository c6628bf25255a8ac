package jsonutil

// Optional represents a patch field with three states: absent (leave the
// stored value untouched), explicit null (clear it), or a concrete value
// (replace it). Validators construct these from request bodies;
// repositories turn them into dynamic SET clauses.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional holding a concrete value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns an Optional representing an explicit JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Ptr returns the value as a pointer, or nil when the field is absent or
// null. Convenient for nullable database parameters.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}
