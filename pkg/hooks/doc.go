// Package hooks provides render-scoped hooks for size tracking.
//
// Components render through an Owner. Hooks called during a render claim the
// owner's next hook slot, so the same call site gets the same state on every
// render as long as hooks are called unconditionally and in the same order:
//
//	owner := hooks.NewOwner(nil, hooks.WithInvalidate(scheduleRender))
//	owner.Render(func() {
//	    onResize := hooks.UseLatest(owner, props.OnResize)
//	    ref, size := hooks.UseSize(owner, hooks.SizeConfig{
//	        Scheduler: loop,
//	        Observers: doc.Observers(),
//	        Transform: resize.Round,
//	    })
//	    ...
//	})
//
// UseLatest returns a stable handle refreshed on every render. UseRafState
// returns frame-coalesced state whose flushes mark the owner dirty. UseSize
// combines both with a resize.Tracker and returns a stable ref callback plus
// the size materialized by the last frame.
//
// Owners and hooks are driven from one goroutine (see raf.Loop).
package hooks
