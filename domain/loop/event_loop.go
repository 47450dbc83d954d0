package loop

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// EventLoop is the production Loop. Callbacks run on the goroutine executing
// Run, one at a time, in the order they were posted.
type EventLoop struct {
	logger *slog.Logger
	wake   chan struct{}

	mu      sync.Mutex
	pending []func()
	closed  bool
}

// New returns an EventLoop; call Run to start dispatching.
func New(logger *slog.Logger) *EventLoop {
	return &EventLoop{logger: logger, wake: make(chan struct{}, 1)}
}

func (l *EventLoop) Now() time.Time { return time.Now() }

// Run dispatches callbacks until ctx is done. Callbacks still queued at that
// point are dropped.
func (l *EventLoop) Run(ctx context.Context) {
	defer func() {
		l.mu.Lock()
		l.closed = true
		l.pending = nil
		l.mu.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
		for {
			l.mu.Lock()
			if len(l.pending) == 0 {
				l.mu.Unlock()
				break
			}
			fn := l.pending[0]
			l.pending[0] = nil
			l.pending = l.pending[1:]
			l.mu.Unlock()
			l.dispatch(fn)
			if ctx.Err() != nil {
				return
			}
		}
	}
}

func (l *EventLoop) dispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil && l.logger != nil {
			l.logger.Error("loop panic", "error", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Post enqueues fn. Posts after Run returned are dropped.
func (l *EventLoop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *EventLoop) Go(work func()) {
	if work == nil {
		return
	}
	go work()
}

// loopTimer wraps a runtime timer. stopped is only touched on the loop, so a
// fire that was already queued when Stop ran is ignored.
type loopTimer struct {
	t       *time.Timer
	stopped bool
}

func (t *loopTimer) Stop() {
	t.stopped = true
	if t.t != nil {
		t.t.Stop()
	}
}

func (l *EventLoop) After(d time.Duration, fn func()) Timer {
	if fn == nil {
		return noopTimer{}
	}
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if lt.stopped {
				return
			}
			lt.stopped = true
			fn()
		})
	})
	return lt
}

// Every re-arms the runtime timer from the loop before invoking fn, so a slow
// callback delays later ticks instead of queueing them.
func (l *EventLoop) Every(d time.Duration, fn func()) Timer {
	if fn == nil || d <= 0 {
		return noopTimer{}
	}
	lt := &loopTimer{}
	tick := func() {
		l.Post(func() {
			if lt.stopped {
				return
			}
			lt.t.Reset(d)
			fn()
		})
	}
	lt.t = time.AfterFunc(d, tick)
	return lt
}
