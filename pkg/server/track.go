package server

import (
	"github.com/vango-dev/elementsize/pkg/hooks"
	"github.com/vango-dev/elementsize/pkg/resize"
)

// MountFunc sets up a session. It runs on the session loop once the
// connection is established.
type MountFunc func(s *Session)

// SizeFunc receives a tracked node's size each time a frame flush changes
// it. size is nil when the node's size is cleared. A batch entry the
// client could not measure leaves the last size in place and is not
// reported. Changes are also recorded in the session timeline. Called on
// the session loop.
type SizeFunc func(s *Session, node string, size *resize.Size)

// TrackNodes mounts one size-tracking component per node. Sizes are
// rounded to whole pixels.
func TrackNodes(onSize SizeFunc, nodes ...string) MountFunc {
	return func(s *Session) {
		for _, id := range nodes {
			mountNodeView(s, id, onSize)
		}
	}
}

// TrackQueryNodes tracks the nodes named by the "node" query parameters of
// the upgrade request, as in /ws?node=header&node=sidebar.
func TrackQueryNodes(onSize SizeFunc) MountFunc {
	return func(s *Session) {
		TrackNodes(onSize, s.query["node"]...)(s)
	}
}

// nodeView is a component rendering UseSize for one remote node. Its owner
// re-renders synchronously when a frame flush marks it dirty.
type nodeView struct {
	session *Session
	node    string
	owner   *hooks.Owner
	onSize  SizeFunc

	ref      hooks.RefFunc
	size     *resize.Size
	rendered bool
}

func mountNodeView(s *Session, id string, onSize SizeFunc) *nodeView {
	v := &nodeView{session: s, node: id, onSize: onSize}
	v.owner = hooks.NewOwner(s.owner, hooks.WithInvalidate(func(*hooks.Owner) {
		v.render()
	}))
	v.render()
	v.ref(s.doc.Node(id))
	return v
}

func (v *nodeView) render() {
	s := v.session
	v.owner.Render(func() {
		ref, size := hooks.UseSize(v.owner, hooks.SizeConfig{
			Scheduler: s.loop,
			Observers: s.doc.Observers(),
			Transform: resize.Round,
			Logger:    s.logger,
			Tracker:   s.recorder,
			Frames:    s.recorder,
		})
		v.ref = ref

		changed := v.rendered && !sameSize(v.size, size)
		v.size = size
		v.rendered = true
		if !changed {
			return
		}
		s.timeline.Record(v.node, size)
		if v.onSize != nil {
			v.onSize(s, v.node, size)
		}
	})
}

func sameSize(a, b *resize.Size) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
