package server

import (
	"log/slog"
	"sort"

	"github.com/vango-dev/elementsize/pkg/protocol"
	"github.com/vango-dev/elementsize/pkg/resize"
)

// RemoteNode is a client-side node identified by ID. Its box is the last
// one the client reported.
type RemoteNode struct {
	id       string
	doc      *RemoteDocument
	box      resize.Box
	measured bool
	present  bool
}

// ID returns the node ID.
func (n *RemoteNode) ID() string {
	return n.id
}

// BoundingBox implements resize.Element. ok is false until the client has
// measured the node and after it reported the node as gone.
func (n *RemoteNode) BoundingBox() (resize.Box, bool) {
	return n.box, n.present
}

// Measured reports whether the client has reported the node at least once.
func (n *RemoteNode) Measured() bool {
	return n.measured
}

// RemoteDocument mirrors the nodes a client measures for the server.
//
// All methods must be called on the session loop. Outgoing frames go
// through send; initial notifications for nodes that are already being
// watched go through post.
type RemoteDocument struct {
	send   func(*protocol.Frame) error
	post   func(func())
	logger *slog.Logger

	nodes     map[string]*RemoteNode
	watchers  map[string]int
	observers []*remoteObserver
}

// NewRemoteDocument creates a document that sends Observe and Unobserve
// frames through send. A nil post delivers synchronously.
func NewRemoteDocument(send func(*protocol.Frame) error, post func(func()), logger *slog.Logger) *RemoteDocument {
	if post == nil {
		post = func(fn func()) { fn() }
	}
	if logger == nil {
		logger = slog.Default().With("component", "remote-document")
	}
	return &RemoteDocument{
		send:     send,
		post:     post,
		logger:   logger,
		nodes:    make(map[string]*RemoteNode),
		watchers: make(map[string]int),
	}
}

// Node returns the node with the given ID, creating an unmeasured one on
// first use.
func (d *RemoteDocument) Node(id string) *RemoteNode {
	if n, ok := d.nodes[id]; ok {
		return n
	}
	n := &RemoteNode{id: id, doc: d}
	d.nodes[id] = n
	return n
}

// Watched returns the IDs the client is currently asked to observe, sorted.
func (d *RemoteDocument) Watched() []string {
	ids := make([]string, 0, len(d.watchers))
	for id := range d.watchers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ActiveObservers returns the number of observers not yet disconnected.
func (d *RemoteDocument) ActiveObservers() int {
	return len(d.observers)
}

// Observers returns a factory for observers backed by the client.
func (d *RemoteDocument) Observers() resize.ObserverFactory {
	return func(callback func([]resize.Entry)) resize.Observer {
		o := &remoteObserver{
			doc:      d,
			callback: callback,
			targets:  make(map[string]*RemoteNode),
		}
		d.observers = append(d.observers, o)
		return o
	}
}

// Apply records a batch reported by the client and delivers it to the
// observers watching the reported nodes, entries in batch order. Entries
// for nodes nobody watches are dropped; their count is returned.
func (d *RemoteDocument) Apply(batch *protocol.ResizeBatch) (unknown int) {
	touched := make([]*RemoteNode, 0, len(batch.Entries))
	for _, e := range batch.Entries {
		n, ok := d.nodes[e.Node]
		if !ok || d.watchers[e.Node] == 0 {
			unknown++
			continue
		}
		n.measured = true
		n.present = e.Present
		if e.Present {
			n.box = resize.Box{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
		}
		touched = append(touched, n)
	}
	if len(touched) == 0 {
		return unknown
	}

	observers := append([]*remoteObserver(nil), d.observers...)
	for _, o := range observers {
		var entries []resize.Entry
		for _, n := range touched {
			if _, ok := o.targets[n.id]; ok {
				entries = append(entries, resize.Entry{Target: n})
			}
		}
		if len(entries) > 0 {
			d.deliver(o, entries)
		}
	}
	return unknown
}

func (d *RemoteDocument) deliver(o *remoteObserver, entries []resize.Entry) {
	if o.disconnected {
		return
	}
	o.callback(entries)
}

func (d *RemoteDocument) watch(o *remoteObserver, n *RemoteNode) {
	d.watchers[n.id]++
	if d.watchers[n.id] == 1 {
		// The client reports the initial box once it starts observing.
		d.sendNodes(protocol.FrameObserve, []string{n.id})
		return
	}
	if n.measured {
		d.post(func() {
			d.deliver(o, []resize.Entry{{Target: n}})
		})
	}
}

func (d *RemoteDocument) unwatch(ids []string) {
	var released []string
	for _, id := range ids {
		d.watchers[id]--
		if d.watchers[id] <= 0 {
			delete(d.watchers, id)
			released = append(released, id)
		}
	}
	if len(released) > 0 {
		sort.Strings(released)
		d.sendNodes(protocol.FrameUnobserve, released)
	}
}

func (d *RemoteDocument) sendNodes(ft protocol.FrameType, ids []string) {
	if d.send == nil {
		return
	}
	if err := d.send(protocol.NewFrame(ft, protocol.EncodeNodeList(ids))); err != nil {
		d.logger.Debug("send failed", "frame", ft, "nodes", ids, "error", err)
	}
}

func (d *RemoteDocument) remove(o *remoteObserver) {
	for i, other := range d.observers {
		if other == o {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			return
		}
	}
}

type remoteObserver struct {
	doc          *RemoteDocument
	callback     func([]resize.Entry)
	targets      map[string]*RemoteNode
	disconnected bool
}

func (o *remoteObserver) Observe(target resize.Element) {
	if o.disconnected {
		return
	}
	n, ok := target.(*RemoteNode)
	if !ok || n.doc != o.doc {
		o.doc.logger.Debug("ignoring foreign element", "element", target)
		return
	}
	if _, dup := o.targets[n.id]; dup {
		return
	}
	o.targets[n.id] = n
	o.doc.watch(o, n)
}

func (o *remoteObserver) Disconnect() {
	if o.disconnected {
		return
	}
	o.disconnected = true
	ids := make([]string, 0, len(o.targets))
	for id := range o.targets {
		ids = append(ids, id)
	}
	o.targets = nil
	o.doc.remove(o)
	o.doc.unwatch(ids)
}
