package archive

import (
	"time"

	"github.com/vango-dev/elementsize/pkg/resize"
)

// DefaultMaxSamples bounds a timeline when no limit is configured.
const DefaultMaxSamples = 10_000

// Sample is one materialized size of a node. Present is false when the
// size was cleared.
type Sample struct {
	At      time.Time `json:"at"`
	Node    string    `json:"node"`
	Present bool      `json:"present"`
	Width   float64   `json:"width,omitempty"`
	Height  float64   `json:"height,omitempty"`
}

// Size returns the sample's size, or nil when it was cleared.
func (s Sample) Size() *resize.Size {
	if !s.Present {
		return nil
	}
	return &resize.Size{Width: s.Width, Height: s.Height}
}

// Timeline is the ordered list of size changes seen by one session.
// It is not safe for concurrent use; sessions record on their loop.
type Timeline struct {
	SessionID string     `json:"sessionId"`
	Started   time.Time  `json:"started"`
	Ended     *time.Time `json:"ended,omitempty"`
	Samples   []Sample   `json:"samples"`

	// Dropped counts samples discarded after the limit was reached.
	Dropped int `json:"dropped,omitempty"`

	max int
	now func() time.Time
}

// TimelineOption configures a Timeline.
type TimelineOption func(*Timeline)

// WithMaxSamples limits the number of kept samples. Later samples are
// counted in Dropped.
func WithMaxSamples(n int) TimelineOption {
	return func(t *Timeline) {
		if n > 0 {
			t.max = n
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) TimelineOption {
	return func(t *Timeline) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTimeline starts a timeline for a session.
func NewTimeline(sessionID string, opts ...TimelineOption) *Timeline {
	t := &Timeline{
		SessionID: sessionID,
		max:       DefaultMaxSamples,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Started = t.now().UTC()
	return t
}

// Record appends a sample. A nil size records a cleared node.
func (t *Timeline) Record(node string, size *resize.Size) {
	limit := t.max
	if limit <= 0 {
		limit = DefaultMaxSamples
	}
	if len(t.Samples) >= limit {
		t.Dropped++
		return
	}
	s := Sample{At: t.clock().UTC(), Node: node}
	if size != nil {
		s.Present = true
		s.Width = size.Width
		s.Height = size.Height
	}
	t.Samples = append(t.Samples, s)
}

// End marks the timeline finished. Ended stays nil until then.
func (t *Timeline) End() {
	ended := t.clock().UTC()
	t.Ended = &ended
}

// clock returns the time source; decoded timelines have none set.
func (t *Timeline) clock() time.Time {
	if t.now == nil {
		return time.Now()
	}
	return t.now()
}

// Key returns the storage key for the timeline.
func (t *Timeline) Key() string {
	return t.SessionID + ".json"
}

// Last returns the most recent sample for node.
func (t *Timeline) Last(node string) (Sample, bool) {
	for i := len(t.Samples) - 1; i >= 0; i-- {
		if t.Samples[i].Node == node {
			return t.Samples[i], true
		}
	}
	return Sample{}, false
}
