package resize

import "fmt"

// Size is a snapshot of an element's rendered width and height in pixels.
type Size struct {
	Width  float64
	Height float64
}

// String returns "WxH".
func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// Box is an element's bounding box as reported by the layout engine.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Size returns the box's dimensions.
func (b Box) Size() Size {
	return Size{Width: b.Width, Height: b.Height}
}

// Element is a rendered node whose bounding box can be measured.
type Element interface {
	// BoundingBox returns the element's current box. ok is false when the
	// box cannot be read, for example after the element was removed.
	BoundingBox() (box Box, ok bool)
}

// Entry is one element reported in a resize notification batch.
type Entry struct {
	Target Element
}

// Box reads the target's current bounding box.
func (e Entry) Box() (Box, bool) {
	if e.Target == nil {
		return Box{}, false
	}
	return e.Target.BoundingBox()
}

// Observer is a live resize subscription.
type Observer interface {
	// Observe starts watching target. An initial notification for target
	// is delivered once observation begins.
	Observe(target Element)

	// Disconnect stops all observation. No notification is delivered to
	// the callback after Disconnect returns.
	Disconnect()
}

// ObserverFactory creates an Observer that delivers notification batches
// to callback.
type ObserverFactory func(callback func(entries []Entry)) Observer
