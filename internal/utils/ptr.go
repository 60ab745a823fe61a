package utils

func Ptr[T any](v T) *T {
	return &v
}

// Coalesce returns the value behind the first non-nil pointer, or fallback.
func Coalesce[T any](fallback T, ptrs ...*T) T {
	for _, p := range ptrs {
		if p != nil {
			return *p
		}
	}
	return fallback
}
