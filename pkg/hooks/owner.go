package hooks

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/elementsize/internal/errors"
)

// DebugMode enables hook order validation on every render.
// Set it at startup; it is not synchronized.
var DebugMode bool

// HookType identifies the type of hook call for order validation.
type HookType uint8

const (
	HookLatest HookType = iota + 1
	HookRafState
	HookSize
)

// String returns a human-readable name for the hook type.
func (h HookType) String() string {
	switch h {
	case HookLatest:
		return "Latest"
	case HookRafState:
		return "RafState"
	case HookSize:
		return "Size"
	default:
		return "Unknown"
	}
}

var ownerID atomic.Uint64

// Owner is the render scope of one component instance. It stores hook
// state across renders and runs cleanups when disposed.
//
// Owners form a hierarchy mirroring the component tree; disposing an
// owner disposes its children first.
type Owner struct {
	id     uint64
	parent *Owner

	children   []*Owner
	childrenMu sync.Mutex

	cleanups   []func()
	cleanupsMu sync.Mutex

	disposed atomic.Bool
	dirty    atomic.Bool

	invalidate func(*Owner)

	// Hook slot storage for stable identity across renders.
	hookSlots   []any
	hookSlotIdx int

	// Dev-mode hook order tracking (only used when DebugMode is true).
	hookOrder   []HookType
	hookIndex   int
	renderCount int
}

// OwnerOption configures an Owner.
type OwnerOption func(*Owner)

// WithInvalidate sets the function called when the owner needs to
// render again, typically to schedule a render on the host.
func WithInvalidate(fn func(*Owner)) OwnerOption {
	return func(o *Owner) {
		o.invalidate = fn
	}
}

// NewOwner creates an Owner. If parent is non-nil the new owner is
// registered as its child and inherits its invalidate function unless one
// is given.
func NewOwner(parent *Owner, opts ...OwnerOption) *Owner {
	o := &Owner{
		id:     ownerID.Add(1),
		parent: parent,
	}
	if parent != nil {
		o.invalidate = parent.invalidate
	}
	for _, opt := range opts {
		opt(o)
	}
	if parent != nil {
		parent.addChild(o)
	}
	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil for a root.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed returns true if this Owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

// Dirty reports whether the owner was marked dirty since its last render.
func (o *Owner) Dirty() bool {
	return o.dirty.Load()
}

// MarkDirty flags the owner for another render and notifies the host.
// It does nothing after Dispose.
func (o *Owner) MarkDirty() {
	if o.disposed.Load() {
		return
	}
	if o.dirty.Swap(true) {
		return
	}
	if o.invalidate != nil {
		o.invalidate(o)
	}
}

func (o *Owner) addChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	o.children = append(o.children, child)
}

func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// OnCleanup registers fn to run when the owner is disposed. Cleanups run
// in reverse registration order. On a disposed owner fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		fn()
		return
	}
	o.cleanupsMu.Lock()
	defer o.cleanupsMu.Unlock()
	o.cleanups = append(o.cleanups, fn)
}

// Dispose disposes children (last created first), then runs cleanups.
// Dispose is idempotent.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}
	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.childrenMu.Lock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	o.children = nil
	o.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	o.cleanupsMu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	o.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// Render runs fn as one render of this owner: hook slots are reset before
// and hook order is validated after.
func (o *Owner) Render(fn func()) {
	o.StartRender()
	defer o.EndRender()
	fn()
}

// StartRender is called at the beginning of a render. It clears the dirty
// flag and resets the hook slot index.
func (o *Owner) StartRender() {
	o.dirty.Store(false)
	o.hookSlotIdx = 0
	if DebugMode {
		o.hookIndex = 0
	}
}

// EndRender is called at the end of a render. In debug mode it verifies
// that every hook from the first render was called again.
func (o *Owner) EndRender() {
	if !DebugMode {
		return
	}
	if o.renderCount == 0 {
		o.renderCount = 1
	} else if o.hookIndex < len(o.hookOrder) {
		panic(errors.New("E103").WithDetail(fmt.Sprintf(
			"expected %d hooks, got %d", len(o.hookOrder), o.hookIndex)))
	}
}

// TrackHook records a hook call for order validation in debug mode.
func (o *Owner) TrackHook(ht HookType) {
	if !DebugMode {
		return
	}
	if o.renderCount == 0 {
		o.hookOrder = append(o.hookOrder, ht)
		o.hookIndex++
		return
	}
	if o.hookIndex >= len(o.hookOrder) {
		panic(errors.New("E103").WithDetail(fmt.Sprintf(
			"extra %s hook at index %d", ht, o.hookIndex)))
	}
	if expected := o.hookOrder[o.hookIndex]; expected != ht {
		panic(errors.New("E103").WithDetail(fmt.Sprintf(
			"expected %s at index %d, got %s", expected, o.hookIndex, ht)))
	}
	o.hookIndex++
}

// UseHookSlot returns the value stored in the current hook slot, or nil
// on the first render (call SetHookSlot to fill it).
//
//	func UseThing(o *Owner) *Thing {
//	    if slot := o.UseHookSlot(); slot != nil {
//	        return slot.(*Thing)
//	    }
//	    thing := &Thing{}
//	    o.SetHookSlot(thing)
//	    return thing
//	}
func (o *Owner) UseHookSlot() any {
	idx := o.hookSlotIdx
	o.hookSlotIdx++
	if idx < len(o.hookSlots) {
		return o.hookSlots[idx]
	}
	return nil
}

// SetHookSlot stores a value in the slot claimed by the last UseHookSlot.
func (o *Owner) SetHookSlot(value any) {
	o.hookSlots = append(o.hookSlots, value)
}
