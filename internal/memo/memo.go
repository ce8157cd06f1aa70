// Package memo provides a value that is computed on first use and cached on
// the object that owns it.
package memo

// Value caches the result of an expensive computation. The zero value is
// empty and ready to use.
//
// Value is not safe for concurrent use. Owners that are shared between
// goroutines must populate it before sharing.
type Value[T any] struct {
	done bool
	v    T
}

// Get returns the cached value, calling compute on the first call only.
func (m *Value[T]) Get(compute func() T) T {
	if !m.done {
		m.v = compute()
		m.done = true
	}
	return m.v
}

// Set replaces the cached value.
func (m *Value[T]) Set(v T) {
	m.v = v
	m.done = true
}
