package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/elementsize/pkg/archive"
	"github.com/vango-dev/elementsize/pkg/hooks"
	"github.com/vango-dev/elementsize/pkg/protocol"
	"github.com/vango-dev/elementsize/pkg/raf"
)

// ErrSessionClosed is returned when sending on a closed session.
var ErrSessionClosed = errors.New("server: session closed")

// Session is one connected client.
//
// The read loop runs on the goroutine that called Serve. Everything else
// (mounting, resize delivery, frame flushes, owner disposal) runs on the
// session's raf.Loop.
type Session struct {
	id     string
	conn   *websocket.Conn
	config *Config
	query  url.Values

	loop     *raf.Loop
	doc      *RemoteDocument
	owner    *hooks.Owner
	timeline *archive.Timeline

	recorder Recorder
	tracer   trace.Tracer
	logger   *slog.Logger

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

func newSession(conn *websocket.Conn, query url.Values, config *Config, tracer trace.Tracer) *Session {
	id := generateSessionID()
	logger := config.Logger.With("component", "session", "session_id", id)
	s := &Session{
		id:       id,
		conn:     conn,
		config:   config,
		query:    query,
		recorder: config.Recorder,
		tracer:   tracer,
		logger:   logger,
		done:     make(chan struct{}),
	}
	s.loop = raf.NewLoop(
		raf.WithFrameInterval(config.FrameInterval),
		raf.WithLogger(logger),
	)
	// Cached initial notifications are delivered at the next frame.
	s.doc = NewRemoteDocument(s.send, s.loop.RequestFrame, logger)
	s.owner = hooks.NewOwner(nil)
	s.timeline = archive.NewTimeline(id)
	return s
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Query returns the query parameters of the upgrade request.
func (s *Session) Query() url.Values {
	return s.query
}

// Loop returns the session loop.
func (s *Session) Loop() *raf.Loop {
	return s.loop
}

// Document returns the client's node tree. Use it only on the session loop.
func (s *Session) Document() *RemoteDocument {
	return s.doc
}

// Owner returns the root owner for components mounted on this session.
// It is disposed when the session ends.
func (s *Session) Owner() *hooks.Owner {
	return s.owner
}

// Timeline returns the size changes recorded so far. Use it only on the
// session loop.
func (s *Session) Timeline() *archive.Timeline {
	return s.timeline
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Serve runs the session until the client disconnects or ctx is done.
func (s *Session) Serve(ctx context.Context, mount MountFunc) {
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = s.loop.Run(context.Background())
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	if mount != nil {
		s.loop.Post(func() { mount(s) })
	}

	s.ReadLoop(ctx)
	s.Close()

	if err := s.loop.Do(context.Background(), s.owner.Dispose); err != nil {
		s.logger.Warn("dispose failed", "error", err)
	}
	s.loop.Stop()
	<-loopDone

	s.saveTimeline()
}

func (s *Session) saveTimeline() {
	if s.config.Archive == nil {
		return
	}
	s.timeline.End()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ArchiveTimeout)
	defer cancel()
	key, err := s.config.Archive.Save(ctx, s.timeline)
	if err != nil {
		s.logger.Error("timeline not archived", "error", err)
		return
	}
	s.logger.Info("timeline archived", "key", key, "samples", len(s.timeline.Samples))
}

// send writes a frame to the client. Safe for concurrent use.
func (s *Session) send(f *protocol.Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Close closes the connection. Close is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		s.closed.Store(true)
		deadline := time.Now().Add(time.Second)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		s.writeMu.Unlock()

		close(s.done)
		s.conn.Close()
	})
}
