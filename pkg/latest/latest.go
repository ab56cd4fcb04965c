// Package latest provides a stable handle to a value that is refreshed on
// every render.
//
// Callbacks that must keep their identity across renders (so external
// subscriptions are not recreated) cannot capture per-render data directly.
// They capture a *Value instead and read it when they run:
//
//	query := latest.New(opts.Query)
//	attach := func(el Element) {
//	    target := query.Get()(el) // always the most recent query
//	}
//	// on every render:
//	query.Set(opts.Query)
//
// A Value is owned by one render scope and is not safe for concurrent use.
// All reads and writes happen on the render/event loop goroutine.
package latest

// Value is a mutable cell with a stable identity.
type Value[T any] struct {
	v T
}

// New creates a Value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

// Set overwrites the held value. The write is visible to the next Get.
func (l *Value[T]) Set(v T) {
	l.v = v
}

// Get returns the most recently written value.
func (l *Value[T]) Get() T {
	return l.v
}
