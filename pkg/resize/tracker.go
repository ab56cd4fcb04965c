package resize

import (
	"log/slog"
	"reflect"

	"github.com/vango-dev/elementsize/internal/errors"
	"github.com/vango-dev/elementsize/pkg/latest"
)

// Publisher accepts sizes for coalesced publication. A nil size clears the
// published value. *raf.State[*Size] implements it.
type Publisher interface {
	Set(size *Size)
}

// DetachFunc releases the session created by Attach. Calling it more than
// once is a no-op.
type DetachFunc func()

// Tracker publishes the size of the element it is attached to.
//
// A Tracker is driven from a single goroutine: Attach, the returned
// DetachFunc and observer callbacks must not run concurrently.
type Tracker struct {
	state       Publisher
	newObserver ObserverFactory

	query     *latest.Value[QueryFunc]
	transform *latest.Value[TransformFunc]

	session *session
	logger  *slog.Logger
	inst    Instrumentation
}

// session is one attach cycle: the resolved target and its subscription.
type session struct {
	target   Element
	observer Observer
	released bool
}

// NewTracker creates a Tracker that publishes to state using observers made
// by factory.
//
// A missing state channel or observer factory means the host environment
// cannot support size tracking; NewTracker panics with E102 or E101.
func NewTracker(state Publisher, factory ObserverFactory, opts ...Option) *Tracker {
	if state == nil {
		panic(errors.New("E102"))
	}
	if factory == nil {
		panic(errors.New("E101"))
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Tracker{
		state:       state,
		newObserver: factory,
		query:       latest.New[QueryFunc](nil),
		transform:   latest.New[TransformFunc](nil),
		logger:      cfg.logger,
		inst:        cfg.inst,
	}
	t.SetQuery(cfg.query)
	t.SetTransform(cfg.transform)
	return t
}

// SetQuery replaces the target selector used by later Attach calls without
// touching the live subscription. A nil query means identity.
func (t *Tracker) SetQuery(q QueryFunc) {
	if q == nil {
		q = Identity
	}
	t.query.Set(q)
}

// SetTransform replaces the size post-processor. It applies to every
// notification delivered after the call. A nil transform means identity.
func (t *Tracker) SetTransform(fn TransformFunc) {
	if fn == nil {
		fn = NoTransform
	}
	t.transform.Set(fn)
}

// Observing reports whether a subscription is live.
func (t *Tracker) Observing() bool {
	return t.session != nil && !t.session.released
}

// Target returns the element currently observed, or nil.
func (t *Tracker) Target() Element {
	if !t.Observing() {
		return nil
	}
	return t.session.target
}

// Attach starts tracking el and returns the function that stops it.
//
// The previous session, if still live, is released first. The target is
// query(el); when that is nil (including Attach(nil), the host's unmount
// call) the published size is cleared and the returned DetachFunc does
// nothing. Otherwise an observer is subscribed to the target and every
// readable entry it reports is published as transform(size).
func (t *Tracker) Attach(el Element) DetachFunc {
	t.release(t.session)

	var target Element
	if !isNil(el) {
		target = t.query.Get()(el)
	}
	if isNil(target) {
		t.inst.Attached(false)
		t.logger.Debug("no target resolved, observation disabled")
		t.state.Set(nil)
		return func() {}
	}

	s := &session{target: target}
	t.session = s
	s.observer = t.newObserver(func(entries []Entry) {
		t.handle(s, entries)
	})
	t.inst.Attached(true)
	t.logger.Debug("observing target")
	s.observer.Observe(target)

	return func() {
		t.release(s)
	}
}

// Detach releases the live session, if any, and clears the published size.
func (t *Tracker) Detach() {
	t.release(t.session)
}

func (t *Tracker) handle(s *session, entries []Entry) {
	if s.released {
		return
	}
	t.inst.BatchReceived(len(entries))

	// Entries are handled independently and in delivery order. Each
	// readable one publishes; the state channel keeps only the last per
	// frame.
	for _, entry := range entries {
		box, ok := entry.Box()
		if !ok {
			continue
		}
		size := t.transform.Get()(box.Size())
		t.inst.Published()
		t.state.Set(&size)
	}
}

func (t *Tracker) release(s *session) {
	if s == nil || s.released {
		return
	}
	s.released = true
	if s.observer != nil {
		s.observer.Disconnect()
	}
	if t.session == s {
		t.session = nil
	}
	t.inst.Detached()
	t.logger.Debug("observation released")
	t.state.Set(nil)
}

// isNil reports whether el is nil or a typed nil pointer.
func isNil(el Element) bool {
	if el == nil {
		return true
	}
	v := reflect.ValueOf(el)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}
