// Package resize tracks the rendered size of an element.
//
// A Tracker follows the attach/detach lifecycle the host uses for element
// refs. Each Attach resolves the element to observe (directly, or through a
// query), subscribes to resize notifications for it, and publishes the
// element's bounding box as a Size through a frame-coalesced state channel:
//
//	sched := &raf.ManualScheduler{}
//	size := raf.NewState[*resize.Size](sched, nil)
//	doc := resize.NewDocument()
//	tracker := resize.NewTracker(size, doc.Observers(),
//	    resize.WithTransform(resize.Round))
//
//	el := doc.NewElement("panel", 100.6, 200.4)
//	detach := tracker.Attach(el)
//	sched.Flush()
//	size.Get() // &Size{Width: 101, Height: 200}
//	detach()
//
// At most one observation session is live per Tracker. A new Attach tears
// down the previous session before subscribing again, and a query that
// resolves to no element clears the published size.
//
// Resize notifications come from an ObserverFactory. Document is an
// in-memory implementation; pkg/server provides one backed by a websocket
// client.
package resize
