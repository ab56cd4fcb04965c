package server

import (
	"github.com/vango-dev/elementsize/pkg/raf"
	"github.com/vango-dev/elementsize/pkg/resize"
)

// Recorder receives server events. *metrics.Metrics implements it.
type Recorder interface {
	resize.Instrumentation
	raf.Instrumentation

	SessionOpened()
	SessionClosed()

	// ProtocolError records a rejected client message. kind is one of
	// "frame", "batch", "control" or "direction".
	ProtocolError(kind string)
}

type noopRecorder struct{}

func (noopRecorder) Attached(bool)        {}
func (noopRecorder) Detached()            {}
func (noopRecorder) BatchReceived(int)    {}
func (noopRecorder) Published()           {}
func (noopRecorder) FrameFlushed()        {}
func (noopRecorder) CoalescedWrite()      {}
func (noopRecorder) SessionOpened()       {}
func (noopRecorder) SessionClosed()       {}
func (noopRecorder) ProtocolError(string) {}
