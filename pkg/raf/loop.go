package raf

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// DefaultFrameRate is the frame rate used when none is configured.
const DefaultFrameRate = 60

// defaultQueueSize bounds the number of posted callbacks waiting to run.
const defaultQueueSize = 1024

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithFrameRate sets how many frames per second the loop flushes.
func WithFrameRate(fps int) LoopOption {
	return func(l *Loop) {
		if fps > 0 {
			l.interval = time.Second / time.Duration(fps)
		}
	}
}

// WithFrameInterval sets the time between frame flushes.
func WithFrameInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithLogger sets the loop's logger.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithQueueSize sets the capacity of the posted-callback queue.
func WithQueueSize(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.queueSize = n
		}
	}
}

// Loop is a single-goroutine event loop that doubles as a frame Scheduler.
//
// Posted callbacks run in order between frames. Frame callbacks requested
// through RequestFrame run together on the next tick. Everything runs on
// the goroutine that called Run, so state touched only from callbacks
// needs no locking.
type Loop struct {
	interval  time.Duration
	queueSize int
	logger    *slog.Logger

	events   chan func()
	stopCh   chan struct{}
	stopOnce sync.Once

	// frames is only touched on the loop goroutine.
	frames []func()
}

// NewLoop creates a loop. Call Run to start processing.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		interval:  time.Second / DefaultFrameRate,
		queueSize: defaultQueueSize,
		logger:    slog.Default().With("component", "raf"),
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.events = make(chan func(), l.queueSize)
	return l
}

// Interval returns the time between frame flushes.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Post enqueues fn to run on the loop goroutine. Safe to call from any
// goroutine. Returns false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopCh:
		return false
	default:
	}
	select {
	case l.events <- fn:
		return true
	case <-l.stopCh:
		return false
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrLoopStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopCh:
		return ErrLoopStopped
	}
}

// RequestFrame queues fn for the next frame. Must be called on the loop
// goroutine.
func (l *Loop) RequestFrame(fn func()) {
	l.frames = append(l.frames, fn)
}

// Run processes posted callbacks and frames until ctx is done or Stop is
// called. Returns ctx.Err() on cancellation and nil after Stop.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopCh:
			return nil
		case fn := <-l.events:
			l.safeCall("event", fn)
		case <-ticker.C:
			l.flushFrame()
		}
	}
}

// Stop ends Run. Stop is idempotent.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
}

// Done is closed when the loop is stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.stopCh
}

func (l *Loop) flushFrame() {
	if len(l.frames) == 0 {
		return
	}
	frames := l.frames
	l.frames = nil
	for _, fn := range frames {
		l.safeCall("frame", fn)
	}
}

func (l *Loop) safeCall(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("callback panicked",
				"kind", kind,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
