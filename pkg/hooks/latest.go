package hooks

import "github.com/vango-dev/elementsize/pkg/latest"

// UseLatest returns a handle whose Get always yields the v passed on the
// most recent render. The handle is allocated on the first render and
// returned unchanged afterwards, so callbacks can capture it once.
func UseLatest[T any](o *Owner, v T) *latest.Value[T] {
	o.TrackHook(HookLatest)
	if slot := o.UseHookSlot(); slot != nil {
		h := slot.(*latest.Value[T])
		h.Set(v)
		return h
	}
	h := latest.New(v)
	o.SetHookSlot(h)
	return h
}
