// Package snapshot renders a pull-based pseudo-video stream: it polls a
// remote still-image endpoint on a fixed cadence, decodes each response into
// a raster and gives up after a bounded run of consecutive failures.
package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soocke/sentinel-go/domain/frame"
	"github.com/soocke/sentinel-go/domain/loop"
)

const (
	DefaultInterval   = 100 * time.Millisecond
	DefaultMaxRetries = 5
	DefaultTimeout    = 5 * time.Second

	statsLogInterval = 5 * time.Second
)

// State is the poll state machine position.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateStreaming
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateStreaming:
		return "streaming"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the poll state. Frame is borrowed: it stays valid
// until the next status change and must not be released by the reader.
type Status struct {
	State      State
	RetryCount int
	Generation uint64
	CameraID   string
	Message    string
	ErrorKind  ErrorKind
	Frame      *frame.Buffer
}

// Options tunes the engine; zero values select the defaults.
type Options struct {
	Interval   time.Duration
	MaxRetries int
	Timeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Engine is the frame acquisition state machine. Every method must be called
// on the engine's loop.
type Engine struct {
	loop     loop.Loop
	source   Source
	registry *frame.Registry
	logger   *slog.Logger
	opts     Options

	status    Status
	current   *frame.Buffer
	timer     loop.Timer
	ctx       context.Context
	cancel    context.CancelFunc
	listeners map[int]func(Status)
	nextID    int
	lastLog   time.Time

	requests  atomic.Uint64
	frames    atomic.Uint64
	failures  atomic.Uint64
	discarded atomic.Uint64
	bytes     atomic.Uint64
}

func NewEngine(l loop.Loop, source Source, registry *frame.Registry, logger *slog.Logger, opts Options) *Engine {
	if registry == nil {
		registry = frame.NewRegistry(logger)
	}
	return &Engine{
		loop:      l,
		source:    source,
		registry:  registry,
		logger:    logger,
		opts:      opts.withDefaults(),
		listeners: map[int]func(Status){},
	}
}

// Start begins polling cameraID: one request immediately, then one per
// interval. A running poll is cancelled first, so repeated calls never stack
// timers.
func (e *Engine) Start(cameraID string) {
	e.halt()
	if e.current != nil && e.status.CameraID != cameraID {
		e.releaseCurrent()
	}
	e.status.Generation++
	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.status.CameraID = cameraID
	e.status.State = StateLoading
	e.status.RetryCount = 0
	e.status.Message = ""
	if e.logger != nil {
		e.logger.Info("snapshot.start", "camera", cameraID, "generation", e.status.Generation, "interval", e.opts.Interval)
	}
	e.notify()
	e.tick()
	e.timer = e.loop.Every(e.opts.Interval, e.tick)
}

// Stop cancels the poll timer and in-flight requests, releases the displayed
// frame and returns to Idle.
func (e *Engine) Stop() {
	e.halt()
	e.releaseCurrent()
	e.status.Generation++
	e.status.State = StateIdle
	e.status.RetryCount = 0
	e.status.Message = ""
	if e.logger != nil {
		e.logger.Info("snapshot.stop", "camera", e.status.CameraID, "generation", e.status.Generation)
	}
	e.notify()
}

// Retry restarts polling for the last camera. It is a no-op before the first Start.
func (e *Engine) Retry() {
	if e.status.CameraID == "" {
		return
	}
	e.Start(e.status.CameraID)
}

func (e *Engine) Status() Status {
	st := e.status
	st.Frame = e.current
	return st
}

// Subscribe registers fn for every applied transition and returns a function
// removing it.
func (e *Engine) Subscribe(fn func(Status)) func() {
	if fn == nil {
		return func() {}
	}
	e.nextID++
	id := e.nextID
	e.listeners[id] = fn
	return func() { delete(e.listeners, id) }
}

func (e *Engine) halt() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) releaseCurrent() {
	if e.current == nil {
		return
	}
	if err := e.current.Release(); err != nil && e.logger != nil {
		e.logger.Error("snapshot.release", "error", err)
	}
	e.current = nil
}

func (e *Engine) tick() {
	gen := e.status.Generation
	cameraID := e.status.CameraID
	parent := e.ctx
	e.requests.Add(1)
	e.maybeLogStats()
	e.loop.Go(func() {
		ctx, cancel := context.WithTimeout(parent, e.opts.Timeout)
		defer cancel()
		payload, err := e.source.Fetch(ctx, cameraID)
		var buf *frame.Buffer
		if err == nil {
			e.bytes.Add(uint64(len(payload)))
			buf, err = e.registry.Decode(payload, e.loop.Now())
			if err != nil {
				err = &FetchError{Kind: KindDecode, Msg: err.Error(), Err: err}
			}
		}
		e.loop.Post(func() { e.apply(gen, buf, err) })
	})
}

// apply folds one completed request into the state machine. Responses from
// an older generation, or arriving after the engine gave up, are dropped.
func (e *Engine) apply(gen uint64, buf *frame.Buffer, err error) {
	if gen != e.status.Generation || e.status.State == StateIdle || e.status.State == StateError {
		e.discarded.Add(1)
		if buf != nil {
			_ = buf.Release()
		}
		return
	}
	if err != nil {
		e.failures.Add(1)
		e.status.RetryCount++
		e.status.ErrorKind = Classify(err)
		if e.status.RetryCount >= e.opts.MaxRetries {
			e.halt()
			e.status.State = StateError
			e.status.Message = err.Error()
			if e.logger != nil {
				e.logger.Warn("snapshot.error", "camera", e.status.CameraID, "retries", e.status.RetryCount, "kind", e.status.ErrorKind.String(), "error", err)
			}
		} else if e.logger != nil && !errors.Is(err, context.Canceled) {
			e.logger.Debug("snapshot.retry", "camera", e.status.CameraID, "attempt", e.status.RetryCount, "error", err)
		}
		e.notify()
		return
	}
	e.frames.Add(1)
	prev := e.current
	e.current = buf
	if prev != nil {
		if rerr := prev.Release(); rerr != nil && e.logger != nil {
			e.logger.Error("snapshot.release", "error", rerr)
		}
	}
	e.status.State = StateStreaming
	e.status.RetryCount = 0
	e.status.Message = ""
	e.notify()
}

func (e *Engine) notify() {
	if len(e.listeners) == 0 {
		return
	}
	st := e.Status()
	for _, fn := range e.listeners {
		fn(st)
	}
}

func (e *Engine) maybeLogStats() {
	if e.logger == nil {
		return
	}
	now := e.loop.Now()
	if now.Sub(e.lastLog) < statsLogInterval {
		return
	}
	e.lastLog = now
	st := e.Stats()
	e.logger.Debug("snapshot.stats",
		"requests", st.Requests,
		"frames", st.Frames,
		"failures", st.Failures,
		"discarded", st.Discarded,
		"received", humanize.Bytes(st.Bytes),
		"outstanding", st.Outstanding,
	)
}
