package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/elementsize/internal/errors"
	"github.com/vango-dev/elementsize/pkg/protocol"
)

// ReadLoop reads frames from the client until the connection closes. Resize
// batches are decoded here and applied on the session loop.
func (s *Session) ReadLoop(ctx context.Context) {
	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() && websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.protocolError("frame", protocol.ErrCodeInvalidFrame, err)
			continue
		}

		switch frame.Type {
		case protocol.FrameResize:
			s.handleResizeFrame(ctx, frame.Payload)

		case protocol.FrameControl:
			if !s.handleControlFrame(frame.Payload) {
				return
			}

		case protocol.FrameError:
			if m, err := protocol.DecodeErrorMessage(frame.Payload); err == nil {
				s.logger.Warn("client error", "code", m.Code, "message", m.Message)
			}

		default:
			s.protocolError("direction", protocol.ErrCodeInvalidFrame,
				fmt.Errorf("unexpected %s frame from client", frame.Type))
		}
	}
}

// handleResizeFrame decodes a batch and applies it on the session loop
// inside a span.
func (s *Session) handleResizeFrame(ctx context.Context, payload []byte) {
	batch, err := protocol.DecodeResizeBatch(payload)
	if err != nil {
		s.protocolError("batch", protocol.ErrCodeInvalidBatch, err)
		return
	}

	_, span := s.tracer.Start(ctx, "elementsize.resize_batch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("elementsize.session_id", s.id),
			attribute.Int("elementsize.entries", len(batch.Entries)),
		),
	)

	posted := s.loop.Post(func() {
		defer span.End()
		unknown := s.doc.Apply(batch)
		if unknown > 0 {
			span.SetAttributes(attribute.Int("elementsize.unknown_nodes", unknown))
			s.logger.Debug("resize for unwatched nodes", "count", unknown)
		}
	})
	if !posted {
		span.SetStatus(codes.Error, "session loop stopped")
		span.End()
	}
}

// handleControlFrame handles ping, pong and close. It returns false when
// the client asked to close.
func (s *Session) handleControlFrame(payload []byte) bool {
	c, err := protocol.DecodeControl(payload)
	if err != nil {
		s.protocolError("control", protocol.ErrCodeInvalidFrame, err)
		return true
	}

	switch c.Type {
	case protocol.ControlPing:
		pong := protocol.EncodeControl(&protocol.Control{Type: protocol.ControlPong, Timestamp: c.Timestamp})
		if err := s.send(protocol.NewFrame(protocol.FrameControl, pong)); err != nil {
			s.logger.Error("pong error", "error", err)
		}

	case protocol.ControlPong:
		s.logger.Debug("received pong")

	case protocol.ControlClose:
		s.logger.Info("client closing", "reason", c.Reason)
		return false
	}
	return true
}

func (s *Session) protocolError(kind string, code protocol.ErrorCode, cause error) {
	coded := errors.New("E201")
	if kind == "direction" {
		coded = errors.New("E202")
	}
	err := coded.Wrap(cause)
	s.logger.Warn("protocol error", "kind", kind, "error", err)
	s.recorder.ProtocolError(kind)

	payload := protocol.EncodeErrorMessage(&protocol.ErrorMessage{Code: code, Message: err.Error()})
	if err := s.send(protocol.NewFrame(protocol.FrameError, payload)); err != nil {
		s.logger.Debug("error frame not sent", "error", err)
	}
}
