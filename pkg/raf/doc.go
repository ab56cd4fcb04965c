// Package raf provides frame-coalesced state.
//
// A State records every Set but materializes at most one value per frame:
// the first Set in a frame window requests a frame from the Scheduler, later
// Sets in the same window overwrite the pending value, and the frame
// callback publishes the most recent one to Get and to subscribers.
//
//	sched := &raf.ManualScheduler{}
//	size := raf.NewState[*resize.Size](sched, nil)
//	size.Set(&resize.Size{Width: 100, Height: 100})
//	size.Set(&resize.Size{Width: 120, Height: 100})
//	size.Get()    // nil, nothing flushed yet
//	sched.Flush()
//	size.Get()    // {120 100}
//
// Schedulers:
//   - ManualScheduler runs queued frame callbacks when Flush is called.
//   - Loop is a single-goroutine event loop that flushes frame callbacks on
//     a ticker and runs posted work between frames.
//
// Thread Safety:
//
// State is not synchronized. Set, Get, Subscribe and frame callbacks must
// all run on the same goroutine (the Loop goroutine, or the test goroutine
// when using ManualScheduler). Other goroutines hand work over with
// Loop.Post or Loop.Do.
package raf
