package capture

import (
	"context"
	"errors"
	"image"
	"time"
)

// ErrDeviceAccessDenied is wrapped by device errors that end a capture
// attempt. There is no automatic retry; the user re-invokes start.
var ErrDeviceAccessDenied = errors.New("capture: device access denied")

// DeniedMessage is the user-facing error for a failed capture attempt.
const DeniedMessage = "Camera access denied or unavailable"

// FrameSnapshot carries the latest captured frame and metadata.
type FrameSnapshot struct {
	Image      *image.RGBA
	CapturedAt time.Time
	Sequence   uint64
}

// TrackKind distinguishes device tracks.
type TrackKind int

const (
	KindVideo TrackKind = iota
	KindAudio
)

func (k TrackKind) String() string {
	if k == KindAudio {
		return "audio"
	}
	return "video"
}

// Track is one independently stoppable device handle.
type Track interface {
	ID() string
	Kind() TrackKind
	Stop()
}

// FrameSource provides read-only access to captured frames.
// LatestFrame returns the freshest snapshot while Running reports activity.
// Frames are shared between readers and must not be modified.
type FrameSource interface {
	LatestFrame() FrameSnapshot
	Running() bool
}

// VideoTrack is a video device handle that exposes its frames.
type VideoTrack interface {
	Track
	FrameSource
}

// AudioTrack is an audio device handle that exposes its input level (0..1).
type AudioTrack interface {
	Track
	Level() float64
}

// Constraints describe the requested capture.
type Constraints struct {
	Width      int
	Height     int
	FrameRate  int
	FacingMode string
	Audio      bool
}

// DefaultConstraints requests 1280x720 video with audio.
func DefaultConstraints() Constraints {
	return Constraints{Width: 1280, Height: 720, FrameRate: 15, FacingMode: "user", Audio: true}
}

// MediaDevices grants combined audio+video access.
type MediaDevices interface {
	GetUserMedia(ctx context.Context, c Constraints) ([]Track, error)
}

// Surface renders a shared session. Surfaces only read the session; the
// Manager calls these methods on its loop.
type Surface interface {
	Bind(s *Session, muted bool)
	SetMuted(muted bool)
	Unbind()
}
