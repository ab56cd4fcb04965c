package hooks

import "testing"

func TestUseLatest_StableHandleFreshValue(t *testing.T) {
	o := NewOwner(nil)

	var captured func() int
	render := func(v int) {
		o.Render(func() {
			h := UseLatest(o, v)
			if captured == nil {
				// Callback created once, on the first render.
				captured = func() int { return h.Get() }
			}
		})
	}

	for _, v := range []int{1, 2, 3, 42} {
		render(v)
		if got := captured(); got != v {
			t.Errorf("after render(%d) captured() = %d", v, got)
		}
	}
}

func TestUseLatest_SameHandle(t *testing.T) {
	o := NewOwner(nil)
	var handles []any
	for i := 0; i < 3; i++ {
		o.Render(func() {
			handles = append(handles, UseLatest(o, "x"))
		})
	}
	if handles[0] != handles[1] || handles[1] != handles[2] {
		t.Error("UseLatest should return the same handle on every render")
	}
}
