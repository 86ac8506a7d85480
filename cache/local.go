package cache

import "sync"

// Local is the process-local tier: a mutex-guarded map that never expires.
// Values are stored once and returned by reference.
type Local[T any] struct {
	mu     sync.RWMutex
	values map[string]T
}

// NewLocal returns an empty local tier.
func NewLocal[T any]() *Local[T] {
	return &Local[T]{values: make(map[string]T)}
}

// Get returns the value stored under key.
func (l *Local[T]) Get(key string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.values[key]
	return v, ok
}

// Store keeps the first value stored under key and returns whichever value
// is now held, so concurrent writers converge on one reference.
func (l *Local[T]) Store(key string, v T) T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.values[key]; ok {
		return existing
	}
	l.values[key] = v
	return v
}

// Len returns the number of held values.
func (l *Local[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.values)
}
