package model

import (
	"image"
	"testing"
	"time"
)

func TestStreamModel_PublishesCopies(t *testing.T) {
	var m StreamModel
	if m.Snapshot().Version != 0 || m.Streaming() {
		t.Fatalf("zero model should be empty")
	}
	now := time.Unix(10, 0)
	m.Update(now, func(s *StreamSnapshot) { s.Capture.Streaming = true })
	m.Update(now, func(s *StreamSnapshot) { s.AlarmActive = true })
	s := m.Snapshot()
	if !s.Capture.Streaming || !s.AlarmActive || s.Version != 2 {
		t.Fatalf("updates not folded: %+v", s)
	}
	s.AlarmActive = false
	if !m.Snapshot().AlarmActive {
		t.Fatalf("reader mutation leaked into model")
	}
}

func TestRouteModel_Navigate(t *testing.T) {
	m := NewRouteModel()
	var seen []string
	m.OnChange(func(prev, next string) { seen = append(seen, prev+">"+next) })
	m.Navigate(RouteLiveFeed)
	m.Navigate(RouteLiveFeed)
	m.Navigate("")
	if m.Current() != RouteHome {
		t.Fatalf("current = %q", m.Current())
	}
	if len(seen) != 2 || seen[0] != "/>/live-feed" || seen[1] != "/live-feed>/" {
		t.Fatalf("unexpected transitions %v", seen)
	}
}

func TestOverlayModel_ClampAndRect(t *testing.T) {
	m := NewOverlayModel()
	if m.Position() != image.Pt(20, 20) {
		t.Fatalf("default position %v", m.Position())
	}
	m.SetViewport(image.Rect(0, 0, 800, 600))
	r := m.Rect()
	if r.Max != image.Pt(780, 580) || r.Dx() != OverlayWidth {
		t.Fatalf("unexpected rect %v", r)
	}
	m.SetPosition(image.Pt(-50, 10_000))
	if p := m.Position(); p.X != 0 || p.Y != 600-OverlayHeight {
		t.Fatalf("position not clamped: %v", p)
	}
}
