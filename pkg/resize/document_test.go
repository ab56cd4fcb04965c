package resize

import "testing"

func TestDocument_ObserveDeliversInitialNotification(t *testing.T) {
	doc := NewDocument()
	el := doc.NewElement("el", 3, 4)

	var batches [][]Entry
	obs := doc.Observers()(func(entries []Entry) { batches = append(batches, entries) })
	obs.Observe(el)

	if len(batches) != 1 || len(batches[0]) != 1 {
		t.Fatalf("batches = %v, want one initial batch", batches)
	}
	box, ok := batches[0][0].Box()
	if !ok || box.Width != 3 || box.Height != 4 {
		t.Errorf("initial box = %+v (ok=%v)", box, ok)
	}
}

func TestDocument_DisconnectDropsQueuedDeliveries(t *testing.T) {
	var queue []func()
	doc := NewDocument(WithPost(func(fn func()) { queue = append(queue, fn) }))
	el := doc.NewElement("el", 1, 1)

	calls := 0
	obs := doc.Observers()(func([]Entry) { calls++ })
	obs.Observe(el)
	el.Resize(2, 2)
	obs.Disconnect()

	for _, fn := range queue {
		fn()
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0 after disconnect", calls)
	}
	if doc.ActiveObservers() != 0 {
		t.Errorf("ActiveObservers = %d, want 0", doc.ActiveObservers())
	}
}

func TestDocument_ObserveForeignElementIgnored(t *testing.T) {
	doc := NewDocument()
	other := NewDocument().NewElement("x", 1, 1)

	calls := 0
	obs := doc.Observers()(func([]Entry) { calls++ })
	obs.Observe(other)
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestDocument_BatchGroupsEntries(t *testing.T) {
	doc := NewDocument()
	a := doc.NewElement("a", 1, 1)
	b := doc.NewElement("b", 1, 1)

	var batches [][]Entry
	obs := doc.Observers()(func(entries []Entry) { batches = append(batches, entries) })
	obs.Observe(a)
	obs.Observe(b)
	batches = nil

	doc.Batch(func() {
		a.Resize(10, 10)
		doc.Batch(func() { b.Resize(20, 20) })
	})

	if len(batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(batches))
	}
	if len(batches[0]) != 2 || batches[0][0].Target != Element(a) || batches[0][1].Target != Element(b) {
		t.Errorf("batch entries out of order: %+v", batches[0])
	}
}

func TestMemElement_QueryAndRemove(t *testing.T) {
	doc := NewDocument()
	leaf := doc.NewElement("leaf", 5, 5)
	root := doc.NewElement("root", 50, 50).Append(doc.NewElement("mid", 10, 10).Append(leaf))

	if root.Query("leaf") != Element(leaf) {
		t.Error("Query should find nested descendants")
	}
	if root.Query("missing") != nil {
		t.Error("Query for a missing id should return untyped nil")
	}

	leaf.Remove()
	if _, ok := leaf.BoundingBox(); ok {
		t.Error("removed element should have no readable box")
	}
}

func TestRound(t *testing.T) {
	got := Round(Size{Width: 100.6, Height: 200.4})
	if got != (Size{Width: 101, Height: 200}) {
		t.Errorf("Round = %v", got)
	}
}
