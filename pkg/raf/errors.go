package raf

import "errors"

// ErrLoopStopped is returned when work is handed to a stopped Loop.
var ErrLoopStopped = errors.New("raf: loop stopped")
