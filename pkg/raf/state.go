package raf

import "github.com/vango-dev/elementsize/internal/errors"

// Instrumentation receives frame and coalescing events.
// metrics.Metrics implements it.
type Instrumentation interface {
	// FrameFlushed is called when a pending value materializes.
	FrameFlushed()
	// CoalescedWrite is called when a Set overwrites a value that
	// had not been flushed yet.
	CoalescedWrite()
}

type noopInstrumentation struct{}

func (noopInstrumentation) FrameFlushed()   {}
func (noopInstrumentation) CoalescedWrite() {}

// StateOption configures a State.
type StateOption func(*stateConfig)

type stateConfig struct {
	inst Instrumentation
}

// WithInstrumentation reports flushes and coalesced writes to inst.
func WithInstrumentation(inst Instrumentation) StateOption {
	return func(c *stateConfig) {
		if inst != nil {
			c.inst = inst
		}
	}
}

// State holds a value whose updates become visible at frame boundaries.
type State[T any] struct {
	sched Scheduler
	inst  Instrumentation

	value T
	next  T

	// pending is true while next holds a value waiting for the frame.
	pending bool
	// requested is true while a flush callback is queued on sched.
	requested bool

	subs   []*subscriber[T]
	nextID uint64
}

type subscriber[T any] struct {
	id     uint64
	fn     func(T)
	active bool
}

// NewState creates a State with the given initial value. Get returns
// initial until the first flush.
//
// Panics with E104 if sched is nil.
func NewState[T any](sched Scheduler, initial T, opts ...StateOption) *State[T] {
	if sched == nil {
		panic(errors.New("E104"))
	}
	cfg := stateConfig{inst: noopInstrumentation{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &State[T]{
		sched: sched,
		inst:  cfg.inst,
		value: initial,
	}
}

// Get returns the value materialized by the most recent flush.
func (s *State[T]) Get() T {
	return s.value
}

// Set records v as the value to materialize at the next frame boundary.
// Multiple Sets before the flush collapse to the last one.
func (s *State[T]) Set(v T) {
	if s.pending {
		s.inst.CoalescedWrite()
	}
	s.next = v
	s.pending = true
	if !s.requested {
		s.requested = true
		s.sched.RequestFrame(s.flush)
	}
}

// Pending reports whether a value is waiting for the next frame.
func (s *State[T]) Pending() bool {
	return s.pending
}

// Cancel drops a value that has not been flushed yet.
func (s *State[T]) Cancel() {
	var zero T
	s.next = zero
	s.pending = false
}

// Subscribe registers fn to be called with each materialized value.
// The returned function removes the subscription.
func (s *State[T]) Subscribe(fn func(T)) func() {
	s.nextID++
	sub := &subscriber[T]{id: s.nextID, fn: fn, active: true}
	s.subs = append(s.subs, sub)
	return func() {
		sub.active = false
	}
}

func (s *State[T]) flush() {
	s.requested = false
	if !s.pending {
		return
	}
	s.value = s.next
	var zero T
	s.next = zero
	s.pending = false
	s.inst.FrameFlushed()

	// Drop removed subscribers before notifying.
	active := s.subs[:0]
	for _, sub := range s.subs {
		if sub.active {
			active = append(active, sub)
		}
	}
	s.subs = active

	value := s.value
	for _, sub := range append([]*subscriber[T](nil), active...) {
		if sub.active {
			sub.fn(value)
		}
	}
}
