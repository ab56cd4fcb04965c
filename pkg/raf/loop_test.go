package raf

import (
	"context"
	"errors"
	"testing"
	"time"
)

func startLoop(t *testing.T, opts ...LoopOption) *Loop {
	t.Helper()
	l := NewLoop(opts...)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(context.Background())
	}()
	t.Cleanup(func() {
		l.Stop()
		<-done
	})
	return l
}

func TestLoop_PostRunsInOrder(t *testing.T) {
	l := startLoop(t)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		if !l.Post(func() { got = append(got, i) }) {
			t.Fatal("Post failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var snapshot []int
	if err := l.Do(ctx, func() { snapshot = append(snapshot, got...) }); err != nil {
		t.Fatalf("Do: %v", err)
	}

	if len(snapshot) != 5 {
		t.Fatalf("ran %d callbacks, want 5", len(snapshot))
	}
	for i, v := range snapshot {
		if v != i {
			t.Errorf("callback %d ran as %d", i, v)
		}
	}
}

func TestLoop_FlushesFrames(t *testing.T) {
	l := startLoop(t, WithFrameInterval(5*time.Millisecond))

	flushed := make(chan int, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := l.Do(ctx, func() {
		s := NewState(l, 0)
		s.Subscribe(func(v int) { flushed <- v })
		s.Set(1)
		s.Set(2)
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	select {
	case v := <-flushed:
		if v != 2 {
			t.Errorf("flushed %d, want 2", v)
		}
	case <-ctx.Done():
		t.Fatal("frame never flushed")
	}
}

func TestLoop_RecoversFromPanics(t *testing.T) {
	l := startLoop(t)

	l.Post(func() { panic("boom") })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Do(ctx, func() {}); err != nil {
		t.Fatalf("loop should survive a panicking callback: %v", err)
	}
}

func TestLoop_StopRejectsWork(t *testing.T) {
	l := NewLoop()
	l.Stop()
	l.Stop() // idempotent

	if l.Post(func() {}) {
		t.Error("Post after Stop should return false")
	}
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrLoopStopped) {
		t.Errorf("Do after Stop = %v, want ErrLoopStopped", err)
	}
}

func TestLoop_RunReturnsContextError(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestWithFrameRate(t *testing.T) {
	l := NewLoop(WithFrameRate(50))
	if l.Interval() != 20*time.Millisecond {
		t.Errorf("Interval() = %v, want 20ms", l.Interval())
	}
	l = NewLoop(WithFrameRate(0))
	if l.Interval() != time.Second/DefaultFrameRate {
		t.Errorf("Interval() = %v, want default", l.Interval())
	}
}
