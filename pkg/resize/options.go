package resize

import (
	"log/slog"
	"math"
)

// QueryFunc selects the element to observe from the attached element.
// Returning nil disables observation for that attach.
type QueryFunc func(el Element) Element

// TransformFunc post-processes every measured size before publication.
type TransformFunc func(Size) Size

// Identity returns el unchanged.
func Identity(el Element) Element {
	return el
}

// NoTransform returns s unchanged.
func NoTransform(s Size) Size {
	return s
}

// Round rounds width and height to the nearest whole pixel.
func Round(s Size) Size {
	return Size{Width: math.Round(s.Width), Height: math.Round(s.Height)}
}

// Option configures a Tracker.
type Option func(*config)

type config struct {
	query     QueryFunc
	transform TransformFunc
	logger    *slog.Logger
	inst      Instrumentation
}

func defaultConfig() config {
	return config{
		query:     Identity,
		transform: NoTransform,
		logger:    slog.Default().With("component", "resize"),
		inst:      noopInstrumentation{},
	}
}

// WithQuery sets the target selector. A nil query means identity.
func WithQuery(q QueryFunc) Option {
	return func(c *config) {
		c.query = q
	}
}

// WithTransform sets the size post-processor. A nil transform means identity.
func WithTransform(fn TransformFunc) Option {
	return func(c *config) {
		c.transform = fn
	}
}

// WithLogger sets the tracker's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithInstrumentation reports tracker activity to inst.
func WithInstrumentation(inst Instrumentation) Option {
	return func(c *config) {
		if inst != nil {
			c.inst = inst
		}
	}
}

// Instrumentation receives tracker lifecycle events.
// metrics.Metrics implements it.
type Instrumentation interface {
	// Attached is called for every Attach; observing is false when the
	// target resolved to nothing.
	Attached(observing bool)
	// Detached is called when a live session is released.
	Detached()
	// BatchReceived is called for each notification batch.
	BatchReceived(entries int)
	// Published is called for each size handed to the state channel.
	Published()
}

type noopInstrumentation struct{}

func (noopInstrumentation) Attached(bool)     {}
func (noopInstrumentation) Detached()         {}
func (noopInstrumentation) BatchReceived(int) {}
func (noopInstrumentation) Published()        {}
