package presenter

import (
	"image"
	"time"
)

// Loop aggregates feature presenters and drives periodic updates on the UI
// thread. The zero value is usable (methods are nil-safe).
type Loop struct {
	Session  *SessionPresenter
	Capture  *CapturePresenter
	Overlay  *OverlayPresenter
	LiveFeed *LiveFeedPresenter
	// Viewport reports the main window area for the overlay anchor.
	Viewport func() (x, y, w, h int, ok bool)
	Schedule func()
	Now      func() time.Time
}

func NewLoop(sess *SessionPresenter, capture *CapturePresenter, overlay *OverlayPresenter, live *LiveFeedPresenter, schedule func()) *Loop {
	return &Loop{Session: sess, Capture: capture, Overlay: overlay, LiveFeed: live, Schedule: schedule, Now: time.Now}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}
	// session first so the live feed page shows this tick's durations
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Capture != nil {
		l.Capture.Tick(now)
	}
	if l.Overlay != nil {
		if l.Viewport != nil {
			if x, y, w, h, ok := l.Viewport(); ok {
				l.Overlay.SetViewport(image.Rect(x, y, x+w, y+h))
			}
		}
		l.Overlay.Tick(now)
	}
	if l.LiveFeed != nil {
		l.LiveFeed.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
