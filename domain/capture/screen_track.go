package capture

import (
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const captureStatsLogInterval = 5 * time.Second

// Grabber returns one raw frame from the video device.
type Grabber func() (*image.RGBA, error)

// CaptureStats summarises the work of a video track.
type CaptureStats struct {
	Captures       uint64
	Skipped        uint64
	AvgCapture     time.Duration
	LastCapture    time.Time
	LatestFrameAge time.Duration
	Sequence       uint64
}

// ScreenTrack is a video track fed by a Grabber on its own goroutine. Frames
// are scaled to the requested size and published atomically.
type ScreenTrack struct {
	id       string
	grab     Grabber
	width    int
	height   int
	interval time.Duration
	logger   *slog.Logger

	running      atomic.Bool
	latest       atomic.Pointer[FrameSnapshot]
	captures     atomic.Uint64
	skipped      atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64

	stopOnce sync.Once
	done     chan struct{}
	quit     chan struct{}
}

// NewScreenTrack starts capturing immediately. A zero frame rate selects 15 fps.
func NewScreenTrack(grab Grabber, c Constraints, logger *slog.Logger) *ScreenTrack {
	fps := c.FrameRate
	if fps <= 0 {
		fps = 15
	}
	t := &ScreenTrack{
		id:       uuid.NewString(),
		grab:     grab,
		width:    c.Width,
		height:   c.Height,
		interval: time.Second / time.Duration(fps),
		logger:   logger,
		done:     make(chan struct{}),
		quit:     make(chan struct{}),
	}
	t.running.Store(true)
	go t.loop()
	return t
}

func (t *ScreenTrack) ID() string      { return t.id }
func (t *ScreenTrack) Kind() TrackKind { return KindVideo }
func (t *ScreenTrack) Running() bool   { return t.running.Load() }

func (t *ScreenTrack) LatestFrame() FrameSnapshot {
	snap := t.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

// Stop ends capture and waits for the capture goroutine to exit.
func (t *ScreenTrack) Stop() {
	t.stopOnce.Do(func() {
		t.running.Store(false)
		close(t.quit)
		<-t.done
		if t.logger != nil {
			t.logger.Debug("capture.track.stop", "track", t.id, "kind", KindVideo.String(), "captures", t.captures.Load())
		}
	})
}

func (t *ScreenTrack) Stats() CaptureStats {
	captures := t.captures.Load()
	total := t.captureNanos.Load()
	var avg time.Duration
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
	}
	snapshot := t.LatestFrame()
	age := time.Duration(0)
	if !snapshot.CapturedAt.IsZero() {
		age = time.Since(snapshot.CapturedAt)
	}
	return CaptureStats{
		Captures:       captures,
		Skipped:        t.skipped.Load(),
		AvgCapture:     avg,
		LastCapture:    snapshot.CapturedAt,
		LatestFrameAge: age,
		Sequence:       snapshot.Sequence,
	}
}

func (t *ScreenTrack) loop() {
	defer close(t.done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	logTicker := time.NewTicker(captureStatsLogInterval)
	defer logTicker.Stop()
	for {
		t.captureOnce()
		select {
		case <-t.quit:
			return
		case <-logTicker.C:
			t.logStats()
		case <-ticker.C:
		}
	}
}

func (t *ScreenTrack) captureOnce() {
	start := time.Now()
	img, err := t.grab()
	if err != nil || img == nil {
		t.skipped.Add(1)
		if err != nil && t.logger != nil {
			t.logger.Error("capture grab", "error", err)
		}
		return
	}
	img = fit(img, t.width, t.height)
	t.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
	t.captures.Add(1)
	seq := t.sequence.Add(1)
	t.latest.Store(&FrameSnapshot{Image: img, CapturedAt: time.Now(), Sequence: seq})
}

// fit scales src down to fit within w x h, preserving aspect ratio.
func fit(src *image.RGBA, w, h int) *image.RGBA {
	b := src.Bounds()
	if w <= 0 || h <= 0 || (b.Dx() <= w && b.Dy() <= h) {
		return src
	}
	sw, sh := b.Dx(), b.Dy()
	dw, dh := w, sh*w/sw
	if dh > h {
		dh = h
		dw = sw * h / sh
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func (t *ScreenTrack) logStats() {
	if t.logger == nil {
		return
	}
	stats := t.Stats()
	t.logger.Debug("capture.stats",
		"track", t.id,
		"captures", stats.Captures,
		"skipped", stats.Skipped,
		"avg_capture", stats.AvgCapture,
		"age", stats.LatestFrameAge,
	)
}
