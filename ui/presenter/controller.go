package presenter

import (
	"sync/atomic"

	"github.com/soocke/sentinel-go/domain/capture"
	"github.com/soocke/sentinel-go/ui/model"
)

// Controller forwards user intents to the monitoring core. Calls return
// immediately; effects show up in later stream snapshots.
type Controller interface {
	StartCapture()
	StopCapture()
	ToggleMute()
	Attach(s capture.Surface)
	Detach(s capture.Surface)

	StartFeed(cameraID string)
	StopFeed()
	RetryFeed()

	StartAlarm()
	StopAlarm()
}

// StreamSource provides the latest published core state.
type StreamSource interface {
	Snapshot() model.StreamSnapshot
}

// Router reads and changes the navigation context.
type Router interface {
	Current() string
	Navigate(path string)
}

// SurfaceBinding is a capture.Surface whose bound session the UI thread can
// read without touching the core loop.
type SurfaceBinding struct {
	Name    string
	session atomic.Pointer[capture.Session]
	muted   atomic.Bool
	binds   atomic.Int32
}

func NewSurfaceBinding(name string) *SurfaceBinding { return &SurfaceBinding{Name: name} }

func (b *SurfaceBinding) Bind(s *capture.Session, muted bool) {
	b.session.Store(s)
	b.muted.Store(muted)
	b.binds.Add(1)
}

func (b *SurfaceBinding) SetMuted(muted bool) { b.muted.Store(muted) }

func (b *SurfaceBinding) Unbind() { b.session.Store(nil) }

// Session returns the bound session or nil.
func (b *SurfaceBinding) Session() *capture.Session {
	if b == nil {
		return nil
	}
	return b.session.Load()
}

func (b *SurfaceBinding) Muted() bool { return b != nil && b.muted.Load() }

// Binds counts Bind calls.
func (b *SurfaceBinding) Binds() int {
	if b == nil {
		return 0
	}
	return int(b.binds.Load())
}

// latestVideo returns the newest frame of the bound session, if any.
func (b *SurfaceBinding) latestVideo() capture.FrameSnapshot {
	s := b.Session()
	if s == nil || s.Video == nil {
		return capture.FrameSnapshot{}
	}
	return s.Video.LatestFrame()
}
