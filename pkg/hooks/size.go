package hooks

import (
	"log/slog"

	"github.com/vango-dev/elementsize/pkg/raf"
	"github.com/vango-dev/elementsize/pkg/resize"
)

// RefFunc is the ref callback handed to the host for an element. The host
// calls it with the element on mount, with a new element when it changes,
// and with nil on unmount; it calls the returned DetachFunc before the next
// call.
type RefFunc func(el resize.Element) resize.DetachFunc

// SizeConfig configures UseSize.
type SizeConfig struct {
	// Scheduler flushes published sizes at frame boundaries. Required.
	Scheduler raf.Scheduler

	// Observers creates resize subscriptions. Required.
	Observers resize.ObserverFactory

	// Query selects the element to observe. Nil observes the attached
	// element itself. Refreshed on every render.
	Query resize.QueryFunc

	// Transform post-processes measured sizes. Nil publishes them as
	// measured. Refreshed on every render.
	Transform resize.TransformFunc

	// Logger is used by the tracker. Defaults to slog.Default().
	Logger *slog.Logger

	// Tracker and Frames receive instrumentation events. Optional;
	// metrics.Metrics satisfies both.
	Tracker resize.Instrumentation
	Frames  raf.Instrumentation
}

type sizeHook struct {
	tracker *resize.Tracker
	ref     RefFunc
}

// UseSize tracks the size of the element the returned ref is attached to.
//
// The ref callback is created once and keeps its identity across renders;
// Query and Transform from the latest render are used without
// resubscribing. The returned size is the one materialized by the last
// frame flush, or nil if nothing has been measured or the query resolved
// to no element. Disposing o releases the subscription.
func UseSize(o *Owner, cfg SizeConfig) (RefFunc, *resize.Size) {
	var stateOpts []raf.StateOption
	if cfg.Frames != nil {
		stateOpts = append(stateOpts, raf.WithInstrumentation(cfg.Frames))
	}
	state := UseRafState[*resize.Size](o, cfg.Scheduler, nil, stateOpts...)

	o.TrackHook(HookSize)
	if slot := o.UseHookSlot(); slot != nil {
		h := slot.(*sizeHook)
		h.tracker.SetQuery(cfg.Query)
		h.tracker.SetTransform(cfg.Transform)
		return h.ref, state.Get()
	}

	tracker := resize.NewTracker(state, cfg.Observers,
		resize.WithQuery(cfg.Query),
		resize.WithTransform(cfg.Transform),
		resize.WithLogger(cfg.Logger),
		resize.WithInstrumentation(cfg.Tracker),
	)
	h := &sizeHook{tracker: tracker, ref: tracker.Attach}
	o.OnCleanup(tracker.Detach)
	o.SetHookSlot(h)
	return h.ref, state.Get()
}
