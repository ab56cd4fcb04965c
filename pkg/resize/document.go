package resize

// Document is an in-memory element host with resize notifications.
//
// Elements are created with NewElement, resized with Resize and removed with
// Remove. Observers created by Observers() receive a batch whenever an element
// they watch changes size, plus the initial notification when observation
// starts. Deliveries go through the document's post function, which defaults
// to running them immediately.
//
// Document is not safe for concurrent use.
type Document struct {
	post      func(func())
	observers []*memObserver

	// batching state for Batch.
	depth   int
	pending map[*memObserver][]Entry
	order   []*memObserver
}

// DocumentOption configures a Document.
type DocumentOption func(*Document)

// WithPost routes notification delivery through post, for example a
// raf.Loop's Post to deliver asynchronously on the loop goroutine.
func WithPost(post func(func())) DocumentOption {
	return func(d *Document) {
		if post != nil {
			d.post = post
		}
	}
}

// NewDocument creates an empty document.
func NewDocument(opts ...DocumentOption) *Document {
	d := &Document{
		post: func(fn func()) { fn() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MemElement is an element of a Document.
type MemElement struct {
	doc      *Document
	id       string
	box      Box
	removed  bool
	children []*MemElement
}

// NewElement creates an element with the given size.
func (d *Document) NewElement(id string, width, height float64) *MemElement {
	return &MemElement{
		doc: d,
		id:  id,
		box: Box{Width: width, Height: height},
	}
}

// ID returns the element's identifier.
func (e *MemElement) ID() string {
	return e.id
}

// BoundingBox implements Element.
func (e *MemElement) BoundingBox() (Box, bool) {
	if e.removed {
		return Box{}, false
	}
	return e.box, true
}

// Append adds children to e and returns e.
func (e *MemElement) Append(children ...*MemElement) *MemElement {
	e.children = append(e.children, children...)
	return e
}

// Query returns the first descendant (or e itself) with the given id, or
// nil when there is none.
func (e *MemElement) Query(id string) Element {
	if found := e.find(id); found != nil {
		return found
	}
	return nil
}

func (e *MemElement) find(id string) *MemElement {
	if e.id == id {
		return e
	}
	for _, c := range e.children {
		if found := c.find(id); found != nil {
			return found
		}
	}
	return nil
}

// Resize changes the element's size and notifies its observers.
func (e *MemElement) Resize(width, height float64) {
	e.box.Width = width
	e.box.Height = height
	e.doc.notify(e)
}

// Remove makes the element's box unreadable. Observers still receive a
// notification for it, whose entry has no readable box.
func (e *MemElement) Remove() {
	e.removed = true
	e.doc.notify(e)
}

// Batch runs fn and delivers the resizes it causes as one batch per
// observer, with entries in the order the resizes happened.
func (d *Document) Batch(fn func()) {
	d.depth++
	if d.pending == nil {
		d.pending = make(map[*memObserver][]Entry)
	}
	defer func() {
		d.depth--
		if d.depth > 0 {
			return
		}
		order, pending := d.order, d.pending
		d.order, d.pending = nil, nil
		for _, o := range order {
			d.deliver(o, pending[o])
		}
	}()
	fn()
}

// Observers returns an ObserverFactory bound to this document.
func (d *Document) Observers() ObserverFactory {
	return func(callback func([]Entry)) Observer {
		o := &memObserver{
			doc:      d,
			callback: callback,
			targets:  make(map[*MemElement]bool),
		}
		d.observers = append(d.observers, o)
		return o
	}
}

// ActiveObservers returns the number of observers that have not been
// disconnected.
func (d *Document) ActiveObservers() int {
	return len(d.observers)
}

func (d *Document) notify(el *MemElement) {
	observers := append([]*memObserver(nil), d.observers...)
	for _, o := range observers {
		if o.disconnected || !o.targets[el] {
			continue
		}
		entries := []Entry{{Target: el}}
		if d.depth > 0 {
			if _, seen := d.pending[o]; !seen {
				d.order = append(d.order, o)
			}
			d.pending[o] = append(d.pending[o], entries...)
			continue
		}
		d.deliver(o, entries)
	}
}

func (d *Document) deliver(o *memObserver, entries []Entry) {
	d.post(func() {
		if o.disconnected {
			return
		}
		o.callback(entries)
	})
}

func (d *Document) remove(o *memObserver) {
	for i, c := range d.observers {
		if c == o {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			return
		}
	}
}

type memObserver struct {
	doc          *Document
	callback     func([]Entry)
	targets      map[*MemElement]bool
	disconnected bool
}

func (o *memObserver) Observe(target Element) {
	if o.disconnected {
		return
	}
	el, ok := target.(*MemElement)
	if !ok || el.doc != o.doc {
		return
	}
	o.targets[el] = true
	o.doc.deliver(o, []Entry{{Target: el}})
}

func (o *memObserver) Disconnect() {
	if o.disconnected {
		return
	}
	o.disconnected = true
	o.targets = map[*MemElement]bool{}
	o.doc.remove(o)
}
