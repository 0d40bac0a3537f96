package ref

// Ref returns a pointer to a copy of the given value.
func Ref[T any](value T) *T {
	return &value
}
