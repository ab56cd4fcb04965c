package server

import (
	"reflect"
	"testing"

	"github.com/vango-dev/elementsize/pkg/protocol"
	"github.com/vango-dev/elementsize/pkg/raf"
	"github.com/vango-dev/elementsize/pkg/resize"
)

// frameLog records frames a RemoteDocument sends to the client.
type frameLog struct {
	frames []*protocol.Frame
}

func (l *frameLog) send(f *protocol.Frame) error {
	l.frames = append(l.frames, f)
	return nil
}

func (l *frameLog) nodes(t *testing.T, i int, want protocol.FrameType) []string {
	t.Helper()
	if i >= len(l.frames) {
		t.Fatalf("frame %d not sent (have %d)", i, len(l.frames))
	}
	f := l.frames[i]
	if f.Type != want {
		t.Fatalf("frame %d type = %s, want %s", i, f.Type, want)
	}
	ids, err := protocol.DecodeNodeList(f.Payload)
	if err != nil {
		t.Fatalf("DecodeNodeList: %v", err)
	}
	return ids
}

func batch(entries ...protocol.ResizeEntry) *protocol.ResizeBatch {
	return &protocol.ResizeBatch{Entries: entries}
}

func present(node string, w, h float64) protocol.ResizeEntry {
	return protocol.ResizeEntry{Node: node, Present: true, Width: w, Height: h}
}

func TestRemoteDocument_ObserveSendsFrameOncePerNode(t *testing.T) {
	log := &frameLog{}
	doc := NewRemoteDocument(log.send, nil, nil)

	var first, second [][]resize.Entry
	o1 := doc.Observers()(func(e []resize.Entry) { first = append(first, e) })
	o2 := doc.Observers()(func(e []resize.Entry) { second = append(second, e) })

	o1.Observe(doc.Node("a"))
	if got := log.nodes(t, 0, protocol.FrameObserve); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("observe nodes = %v", got)
	}

	doc.Apply(batch(present("a", 10, 20)))
	if len(first) != 1 {
		t.Fatalf("first observer batches = %d, want 1", len(first))
	}

	// The client already watches "a": no new frame, initial box from cache.
	o2.Observe(doc.Node("a"))
	if len(log.frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(log.frames))
	}
	if len(second) != 1 {
		t.Fatalf("second observer should get an initial notification, got %d", len(second))
	}
	if box, ok := second[0][0].Box(); !ok || box.Width != 10 || box.Height != 20 {
		t.Errorf("initial box = %+v, %v", box, ok)
	}

	o1.Disconnect()
	if len(log.frames) != 1 {
		t.Fatal("unobserve must wait for the last watcher")
	}
	o2.Disconnect()
	if got := log.nodes(t, 1, protocol.FrameUnobserve); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("unobserve nodes = %v", got)
	}
	if len(doc.Watched()) != 0 || doc.ActiveObservers() != 0 {
		t.Errorf("watched = %v, observers = %d", doc.Watched(), doc.ActiveObservers())
	}
}

func TestRemoteDocument_ApplyDropsUnwatchedNodes(t *testing.T) {
	doc := NewRemoteDocument(nil, nil, nil)
	var got []resize.Entry
	o := doc.Observers()(func(e []resize.Entry) { got = append(got, e...) })
	o.Observe(doc.Node("a"))

	unknown := doc.Apply(batch(present("b", 1, 1), present("a", 5, 6), present("c", 1, 1)))
	if unknown != 2 {
		t.Errorf("unknown = %d, want 2", unknown)
	}
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}
	if n := got[0].Target.(*RemoteNode); n.ID() != "a" || !n.Measured() {
		t.Errorf("entry target = %s measured=%v", n.ID(), n.Measured())
	}
}

func TestRemoteDocument_AbsentNodeIsUnreadable(t *testing.T) {
	doc := NewRemoteDocument(nil, nil, nil)
	n := doc.Node("a")
	if _, ok := n.BoundingBox(); ok {
		t.Fatal("unmeasured node should not be readable")
	}

	o := doc.Observers()(func([]resize.Entry) {})
	o.Observe(n)
	doc.Apply(batch(present("a", 3, 4)))
	if box, ok := n.BoundingBox(); !ok || box.Width != 3 {
		t.Fatalf("box = %+v, %v", box, ok)
	}
	doc.Apply(batch(protocol.ResizeEntry{Node: "a"}))
	if _, ok := n.BoundingBox(); ok {
		t.Error("node reported absent should not be readable")
	}
}

func TestRemoteDocument_IgnoresForeignElements(t *testing.T) {
	log := &frameLog{}
	doc := NewRemoteDocument(log.send, nil, nil)
	other := NewRemoteDocument(nil, nil, nil)

	o := doc.Observers()(func([]resize.Entry) {})
	o.Observe(other.Node("a"))
	o.Observe(resize.NewDocument().NewElement("m", 1, 1))
	if len(log.frames) != 0 {
		t.Errorf("frames = %d, want 0", len(log.frames))
	}
}

func TestRemoteDocument_NoDeliveryAfterDisconnect(t *testing.T) {
	doc := NewRemoteDocument(nil, nil, nil)
	var calls int
	var o2 resize.Observer
	o1 := doc.Observers()(func([]resize.Entry) {
		calls++
		o2.Disconnect()
	})
	o2 = doc.Observers()(func([]resize.Entry) {
		t.Error("disconnected observer received a batch")
	})
	o1.Observe(doc.Node("a"))
	o2.Observe(doc.Node("a"))

	doc.Apply(batch(present("a", 1, 1)))
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRemoteDocument_TrackerRoundsReportedSize(t *testing.T) {
	sched := &raf.ManualScheduler{}
	state := raf.NewState[*resize.Size](sched, nil)
	doc := NewRemoteDocument(nil, nil, nil)
	tracker := resize.NewTracker(state, doc.Observers(), resize.WithTransform(resize.Round))

	detach := tracker.Attach(doc.Node("a"))
	doc.Apply(batch(present("a", 100.6, 200.4)))
	sched.Flush()
	if got := state.Get(); got == nil || *got != (resize.Size{Width: 101, Height: 200}) {
		t.Fatalf("size = %v, want 101x200", got)
	}

	// An unreadable entry publishes nothing.
	doc.Apply(batch(protocol.ResizeEntry{Node: "a"}))
	sched.Flush()
	if got := state.Get(); got == nil || got.Width != 101 {
		t.Fatalf("size = %v, want unchanged", got)
	}

	detach()
	sched.Flush()
	if got := state.Get(); got != nil {
		t.Errorf("size after detach = %v, want nil", *got)
	}
	if doc.ActiveObservers() != 0 {
		t.Errorf("observers = %d, want 0", doc.ActiveObservers())
	}
}
