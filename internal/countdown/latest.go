package countdown

import "sync"

// Latest holds the most recent value of an asynchronously fetched resource.
// Each request takes a generation from Begin; results delivered for an older
// generation than the current one are dropped.
type Latest[T any] struct {
	mu      sync.Mutex
	gen     uint64
	applied uint64
	value   T
	ok      bool
}

// Begin starts a new request and returns its generation
func (l *Latest[T]) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	return l.gen
}

// Invalidate discards every in-flight request, e.g. when the view goes away
func (l *Latest[T]) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
}

// Current reports whether a result for gen would still be applied
func (l *Latest[T]) Current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return gen == l.gen && gen > l.applied
}

// Set stores v if gen is still current and reports whether it was applied
func (l *Latest[T]) Set(gen uint64, v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen || gen <= l.applied {
		return false
	}
	l.applied = gen
	l.value = v
	l.ok = true
	return true
}

// Get returns the last applied value
func (l *Latest[T]) Get() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.ok
}
