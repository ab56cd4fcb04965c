package raf

// Scheduler runs callbacks at the next frame boundary.
type Scheduler interface {
	// RequestFrame queues fn to run once at the next frame boundary.
	// Callbacks requested while a frame is being flushed run on the
	// following frame.
	RequestFrame(fn func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(fn func())

// RequestFrame calls f(fn).
func (f SchedulerFunc) RequestFrame(fn func()) {
	f(fn)
}

// ManualScheduler queues frame callbacks until Flush is called.
// The zero value is ready to use.
type ManualScheduler struct {
	queue  []func()
	frames int
}

// RequestFrame queues fn for the next Flush.
func (m *ManualScheduler) RequestFrame(fn func()) {
	m.queue = append(m.queue, fn)
}

// Flush runs the callbacks queued before the call and returns how many ran.
func (m *ManualScheduler) Flush() int {
	queue := m.queue
	m.queue = nil
	m.frames++
	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// Pending returns the number of callbacks waiting for the next Flush.
func (m *ManualScheduler) Pending() int {
	return len(m.queue)
}

// Frames returns how many times Flush has been called.
func (m *ManualScheduler) Frames() int {
	return m.frames
}
