// Package metrics exposes Prometheus metrics for size tracking.
//
// A *Metrics satisfies resize.Instrumentation and raf.Instrumentation, so it
// can be passed to trackers and frame-coalesced state directly:
//
//	m := metrics.New(metrics.WithNamespace("myapp"))
//	tracker := resize.NewTracker(state, observers, resize.WithInstrumentation(m))
//	http.Handle("/metrics", promhttp.Handler())
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "elementsize").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "elementsize",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors.
type Metrics struct {
	attachesTotal      *prometheus.CounterVec
	detachesTotal      prometheus.Counter
	activeObservations prometheus.Gauge
	batchesTotal       prometheus.Counter
	batchEntries       prometheus.Histogram
	publishesTotal     prometheus.Counter
	framesFlushed      prometheus.Counter
	coalescedWrites    prometheus.Counter
	activeSessions     prometheus.Gauge
	protocolErrors     *prometheus.CounterVec
}

// New creates and registers the collectors. Registering twice on the same
// registry panics, as with promauto.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		attachesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "attaches_total",
			Help:        "Tracker attaches by outcome (observing or disabled)",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),
		detachesTotal:      counter("detaches_total", "Released observation sessions"),
		activeObservations: gauge("active_observations", "Live resize subscriptions"),
		batchesTotal:       counter("resize_batches_total", "Resize notification batches received"),
		batchEntries: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resize_batch_entries",
			Help:        "Entries per resize notification batch",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 4, 8, 16, 32},
		}),
		publishesTotal:  counter("publishes_total", "Sizes handed to the frame-coalesced state"),
		framesFlushed:   counter("frames_flushed_total", "Frames that materialized a new value"),
		coalescedWrites: counter("coalesced_writes_total", "Writes overwritten before their frame"),
		activeSessions:  gauge("active_sessions", "Connected websocket clients"),
		protocolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "protocol_errors_total",
			Help:        "Protocol errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Attached implements resize.Instrumentation.
func (m *Metrics) Attached(observing bool) {
	if !observing {
		m.attachesTotal.WithLabelValues("disabled").Inc()
		return
	}
	m.attachesTotal.WithLabelValues("observing").Inc()
	m.activeObservations.Inc()
}

// Detached implements resize.Instrumentation.
func (m *Metrics) Detached() {
	m.detachesTotal.Inc()
	m.activeObservations.Dec()
}

// BatchReceived implements resize.Instrumentation.
func (m *Metrics) BatchReceived(entries int) {
	m.batchesTotal.Inc()
	m.batchEntries.Observe(float64(entries))
}

// Published implements resize.Instrumentation.
func (m *Metrics) Published() {
	m.publishesTotal.Inc()
}

// FrameFlushed implements raf.Instrumentation.
func (m *Metrics) FrameFlushed() {
	m.framesFlushed.Inc()
}

// CoalescedWrite implements raf.Instrumentation.
func (m *Metrics) CoalescedWrite() {
	m.coalescedWrites.Inc()
}

// SessionOpened records a new websocket client.
func (m *Metrics) SessionOpened() {
	m.activeSessions.Inc()
}

// SessionClosed records a websocket client going away.
func (m *Metrics) SessionClosed() {
	m.activeSessions.Dec()
}

// ProtocolError records a protocol error. kind should be low-cardinality,
// e.g. "frame", "batch", "control".
func (m *Metrics) ProtocolError(kind string) {
	m.protocolErrors.WithLabelValues(kind).Inc()
}
