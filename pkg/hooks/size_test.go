package hooks

import (
	"testing"

	"github.com/vango-dev/elementsize/pkg/raf"
	"github.com/vango-dev/elementsize/pkg/resize"
)

// sizeComponent renders UseSize and re-renders whenever its owner is
// invalidated, like a host would after a frame flush.
type sizeComponent struct {
	t     *testing.T
	owner *Owner
	sched *raf.ManualScheduler
	doc   *resize.Document
	cfg   SizeConfig

	renders int
	refs    []RefFunc
	size    *resize.Size
}

func newSizeComponent(t *testing.T) *sizeComponent {
	c := &sizeComponent{
		t:     t,
		sched: &raf.ManualScheduler{},
		doc:   resize.NewDocument(),
	}
	c.owner = NewOwner(nil, WithInvalidate(func(*Owner) { c.render() }))
	c.cfg = SizeConfig{Scheduler: c.sched, Observers: c.doc.Observers()}
	c.render()
	return c
}

func (c *sizeComponent) render() {
	c.owner.Render(func() {
		c.renders++
		ref, size := UseSize(c.owner, c.cfg)
		c.refs = append(c.refs, ref)
		c.size = size
	})
}

func (c *sizeComponent) ref() RefFunc {
	return c.refs[len(c.refs)-1]
}

func (c *sizeComponent) expect(w, h float64) {
	c.t.Helper()
	if c.size == nil {
		c.t.Fatalf("size = nil, want %gx%g", w, h)
	}
	if c.size.Width != w || c.size.Height != h {
		c.t.Fatalf("size = %v, want %gx%g", *c.size, w, h)
	}
}

func TestUseSize_InitialRenderHasNoSize(t *testing.T) {
	c := newSizeComponent(t)
	if c.size != nil {
		t.Errorf("size = %v, want nil before any measurement", *c.size)
	}
}

func TestUseSize_Scenario(t *testing.T) {
	c := newSizeComponent(t)

	detach := c.ref()(c.doc.NewElement("a", 100, 100))
	if c.size != nil {
		t.Fatal("size should not be visible before the frame flush")
	}
	c.sched.Flush()
	c.expect(100, 100)

	detach()
	b := c.doc.NewElement("b", 200, 200)
	c.ref()(b)
	c.sched.Flush()
	c.expect(200, 200)

	b.Resize(150, 150)
	c.sched.Flush()
	c.expect(150, 150)
}

func TestUseSize_RefIsStableAcrossRenders(t *testing.T) {
	c := newSizeComponent(t)
	c.ref()(c.doc.NewElement("a", 1, 1))
	c.sched.Flush()
	c.render()

	if len(c.refs) < 3 {
		t.Fatalf("renders = %d, want at least 3", len(c.refs))
	}
	if c.doc.ActiveObservers() != 1 {
		t.Errorf("re-rendering should not resubscribe, observers = %d", c.doc.ActiveObservers())
	}
	// Funcs are not comparable; calling an old ref must drive the same
	// tracker as the newest one.
	c.refs[0](nil)
	if c.doc.ActiveObservers() != 0 {
		t.Error("first-render ref should control the live subscription")
	}
}

func TestUseSize_OneRenderPerFrame(t *testing.T) {
	c := newSizeComponent(t)
	el := c.doc.NewElement("a", 1, 1)
	c.ref()(el)
	el.Resize(2, 2)
	el.Resize(3, 3)

	before := c.renders
	c.sched.Flush()
	if c.renders != before+1 {
		t.Errorf("renders after flush = %d, want %d", c.renders, before+1)
	}
	c.expect(3, 3)
}

func TestUseSize_TransformRefreshedEachRender(t *testing.T) {
	c := newSizeComponent(t)
	el := c.doc.NewElement("a", 10.4, 10.6)
	c.ref()(el)
	c.sched.Flush()
	c.expect(10.4, 10.6)

	c.cfg.Transform = resize.Round
	c.render()
	el.Resize(20.4, 20.6)
	c.sched.Flush()
	c.expect(20, 21)
}

func TestUseSize_QueryNoneClears(t *testing.T) {
	c := newSizeComponent(t)
	el := c.doc.NewElement("a", 5, 5)
	c.ref()(el)
	c.sched.Flush()
	c.expect(5, 5)

	c.cfg.Query = func(resize.Element) resize.Element { return nil }
	c.render()
	c.ref()(el)
	c.sched.Flush()
	if c.size != nil {
		t.Errorf("size = %v, want nil", *c.size)
	}
}

func TestUseSize_DisposeReleasesSubscription(t *testing.T) {
	c := newSizeComponent(t)
	el := c.doc.NewElement("a", 5, 5)
	c.ref()(el)
	c.sched.Flush()

	renders := c.renders
	c.owner.Dispose()
	if c.doc.ActiveObservers() != 0 {
		t.Errorf("ActiveObservers = %d, want 0", c.doc.ActiveObservers())
	}
	el.Resize(9, 9)
	c.sched.Flush()
	if c.renders != renders {
		t.Error("disposed owner should not render again")
	}
}
