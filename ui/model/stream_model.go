package model

import (
	"image"
	"sync/atomic"
	"time"

	"github.com/soocke/sentinel-go/domain/capture"
	"github.com/soocke/sentinel-go/domain/snapshot"
)

// FeedView is the remote snapshot feed as seen by the UI.
type FeedView struct {
	State    snapshot.State
	CameraID string
	Retry    int
	Message  string
	// Frame is a private copy of the displayed frame; FrameSeq changes with it.
	Frame    *image.RGBA
	FrameSeq uint64
}

// StreamSnapshot is an immutable view of the monitoring core. Readers must
// not modify it.
type StreamSnapshot struct {
	Capture     capture.State
	Session     *capture.Session
	Feed        FeedView
	AlarmActive bool
	PublishedAt time.Time
	Version     uint64
}

// StreamModel publishes snapshots from the core loop to the UI thread. The
// zero value holds an empty snapshot and is usable.
type StreamModel struct {
	current atomic.Pointer[StreamSnapshot]
	version atomic.Uint64
}

func NewStreamModel() *StreamModel { return &StreamModel{} }

// Snapshot returns the latest published snapshot.
func (m *StreamModel) Snapshot() StreamSnapshot {
	if m == nil {
		return StreamSnapshot{}
	}
	if s := m.current.Load(); s != nil {
		return *s
	}
	return StreamSnapshot{}
}

// Update applies fn to a copy of the current snapshot and publishes it.
// Only one goroutine may publish.
func (m *StreamModel) Update(now time.Time, fn func(*StreamSnapshot)) {
	if m == nil || fn == nil {
		return
	}
	next := m.Snapshot()
	fn(&next)
	next.PublishedAt = now
	next.Version = m.version.Add(1)
	m.current.Store(&next)
}

// Streaming reports whether a local capture session is live.
func (m *StreamModel) Streaming() bool { return m.Snapshot().Capture.Streaming }
