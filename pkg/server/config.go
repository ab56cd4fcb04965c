package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/elementsize/pkg/archive"
)

// Config holds server configuration.
type Config struct {
	// Addr is the HTTP listen address.
	// Default: ":8080".
	Addr string

	// ReadTimeout closes a session that sends nothing for this long.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single frame write.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration

	// MaxMessageSize is the largest accepted WebSocket message.
	// Default: one full protocol frame.
	MaxMessageSize int64

	// FrameInterval is the time between frame flushes on session loops.
	// Default: 1/60 second.
	FrameInterval time.Duration

	// CheckOrigin validates the Origin header of upgrade requests.
	// Nil allows same-origin requests only.
	CheckOrigin func(r *http.Request) bool

	// Mount runs on the session loop after each connection is set up.
	// Default: TrackQueryNodes with no size callback.
	Mount MountFunc

	// Recorder receives session, tracker and frame events.
	// metrics.Metrics satisfies it. Optional.
	Recorder Recorder

	// Archive stores each session's size timeline when it ends. Optional.
	Archive archive.Store

	// ArchiveTimeout bounds saving a timeline.
	// Default: 10 seconds.
	ArchiveTimeout time.Duration

	// Gatherer serves /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	// MetricsPath is the metrics route.
	// Default: "/metrics".
	MetricsPath string

	// TracerProvider creates the tracer for resize batch spans.
	// Default: the global OpenTelemetry provider.
	TracerProvider trace.TracerProvider

	// TracerName names the tracer.
	// Default: "elementsize".
	TracerName string

	// Logger is the server logger.
	// Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		ArchiveTimeout:  10 * time.Second,
		MaxMessageSize:  defaultMaxMessageSize,
		FrameInterval:   time.Second / 60,
		MetricsPath:     "/metrics",
		TracerName:      "elementsize",
	}
}

// defaultMaxMessageSize fits exactly one maximal frame.
const defaultMaxMessageSize = 4 + 65535

func (c *Config) withDefaults() *Config {
	out := *c
	d := DefaultConfig()
	if out.Addr == "" {
		out.Addr = d.Addr
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = d.ReadTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	if out.ArchiveTimeout <= 0 {
		out.ArchiveTimeout = d.ArchiveTimeout
	}
	if out.MaxMessageSize <= 0 {
		out.MaxMessageSize = d.MaxMessageSize
	}
	if out.FrameInterval <= 0 {
		out.FrameInterval = d.FrameInterval
	}
	if out.MetricsPath == "" {
		out.MetricsPath = d.MetricsPath
	}
	if out.TracerName == "" {
		out.TracerName = d.TracerName
	}
	if out.Mount == nil {
		out.Mount = TrackQueryNodes(nil)
	}
	if out.Recorder == nil {
		out.Recorder = noopRecorder{}
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// AllowOrigins returns a CheckOrigin function accepting requests whose
// Origin matches one of origins (scheme and host, case-insensitive).
// Requests without an Origin header are accepted. An empty list returns
// nil, which keeps same-origin checking.
func AllowOrigins(origins []string) func(*http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.ToLower(strings.TrimRight(o, "/"))] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return allowed[strings.ToLower(u.Scheme+"://"+u.Host)]
	}
}
