package hooks

import "github.com/vango-dev/elementsize/pkg/raf"

// UseRafState returns frame-coalesced state owned by o. Each flush marks o
// dirty so the host renders it again; a pending value is dropped when o is
// disposed.
func UseRafState[T any](o *Owner, sched raf.Scheduler, initial T, opts ...raf.StateOption) *raf.State[T] {
	o.TrackHook(HookRafState)
	if slot := o.UseHookSlot(); slot != nil {
		return slot.(*raf.State[T])
	}
	s := raf.NewState(sched, initial, opts...)
	unsub := s.Subscribe(func(T) {
		o.MarkDirty()
	})
	o.OnCleanup(func() {
		unsub()
		s.Cancel()
	})
	o.SetHookSlot(s)
	return s
}
