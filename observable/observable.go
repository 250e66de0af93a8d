// Package observable provides a minimal observed-value type: a current
// value plus subscriber callbacks notified on change, with a get-current
// accessor for late subscribers. It is the publication mechanism between
// the single writer of a piece of state (rate aggregator, balance tracker)
// and its many readers.
package observable

import "sync"

// Value holds a current value of type T and notifies subscribers whenever
// it is set. Readers never mutate the value they receive.
type Value[T any] struct {
	mu   sync.Mutex
	has  bool
	cur  T
	subs map[int]func(T)
	next int
}

// New creates an empty observable value.
func New[T any]() *Value[T] {
	return &Value[T]{subs: make(map[int]func(T))}
}

// Get returns the current value, if one has been set.
func (v *Value[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur, v.has
}

// Set stores a new current value and notifies every subscriber.
// Deduplication of unchanged values is the writer's responsibility; Set
// always notifies.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.cur = val
	v.has = true
	subs := make([]func(T), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	v.mu.Unlock()

	for _, fn := range subs {
		fn(val)
	}
}

// Subscribe registers fn and returns a cancel function. If a value is
// already present, fn is invoked immediately with it, so late subscribers
// observe the current state without waiting for the next change.
func (v *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	v.mu.Lock()
	id := v.next
	v.next++
	v.subs[id] = fn
	cur, has := v.cur, v.has
	v.mu.Unlock()

	if has {
		fn(cur)
	}
	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}
