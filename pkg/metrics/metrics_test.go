package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/vango-dev/elementsize/pkg/raf"
	"github.com/vango-dev/elementsize/pkg/resize"
)

var (
	_ resize.Instrumentation = (*Metrics)(nil)
	_ raf.Instrumentation    = (*Metrics)(nil)
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return New(WithRegistry(reg), WithNamespace("test")), reg
}

func TestMetrics_TrackerLifecycle(t *testing.T) {
	m, _ := newTestMetrics(t)
	sched := &raf.ManualScheduler{}
	state := raf.NewState[*resize.Size](sched, nil, raf.WithInstrumentation(m))
	doc := resize.NewDocument()
	tracker := resize.NewTracker(state, doc.Observers(), resize.WithInstrumentation(m))

	el := doc.NewElement("el", 10, 10)
	detach := tracker.Attach(el)
	el.Resize(20, 20)
	sched.Flush()

	if got := testutil.ToFloat64(m.attachesTotal.WithLabelValues("observing")); got != 1 {
		t.Errorf("attaches{observing} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.activeObservations); got != 1 {
		t.Errorf("active_observations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.publishesTotal); got != 2 {
		t.Errorf("publishes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.coalescedWrites); got != 1 {
		t.Errorf("coalesced = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.framesFlushed); got != 1 {
		t.Errorf("frames = %v, want 1", got)
	}

	detach()
	tracker.Attach(nil)

	if got := testutil.ToFloat64(m.activeObservations); got != 0 {
		t.Errorf("active_observations after detach = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.detachesTotal); got != 1 {
		t.Errorf("detaches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.attachesTotal.WithLabelValues("disabled")); got != 1 {
		t.Errorf("attaches{disabled} = %v, want 1", got)
	}
}

func TestMetrics_Sessions(t *testing.T) {
	m, reg := newTestMetrics(t)

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.ProtocolError("frame")

	if got := testutil.ToFloat64(m.activeSessions); got != 1 {
		t.Errorf("active_sessions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.protocolErrors.WithLabelValues("frame")); got != 1 {
		t.Errorf("protocol_errors{frame} = %v, want 1", got)
	}

	n, err := testutil.GatherAndCount(reg, "test_active_sessions")
	if err != nil || n != 1 {
		t.Errorf("GatherAndCount = %d, %v", n, err)
	}
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(WithRegistry(reg))
	defer func() {
		if recover() == nil {
			t.Error("registering twice on one registry should panic")
		}
	}()
	New(WithRegistry(reg))
}
