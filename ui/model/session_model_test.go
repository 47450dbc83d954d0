package model

import (
	"testing"
	"time"
)

func TestSessionModel_BasicLifecycle(t *testing.T) {
	m := NewSessionModel()
	base := time.Unix(0, 0)

	m.OnTick(true, time.Time{}, base)
	m.OnTick(true, time.Time{}, base.Add(5*time.Second))
	session, total := m.Values()
	if session != 5*time.Second || total != 5*time.Second {
		t.Fatalf("expected 5s session & total; got session=%v total=%v", session, total)
	}

	m.OnTick(false, time.Time{}, base.Add(5*time.Second))
	session, total = m.Values()
	if session != 5*time.Second || total != 5*time.Second {
		t.Fatalf("after stop expected persisted 5s; got session=%v total=%v", session, total)
	}

	// idle ticks change nothing
	m.OnTick(false, time.Time{}, base.Add(7*time.Second))
	if s, tt := m.Values(); s != session || tt != total {
		t.Fatalf("idle tick changed durations: session=%v total=%v", s, tt)
	}

	m.OnTick(true, time.Time{}, base.Add(10*time.Second))
	m.OnTick(true, time.Time{}, base.Add(13*time.Second))
	s3, t3 := m.Values()
	if s3 != 3*time.Second || t3 != 8*time.Second {
		t.Fatalf("second session: session=%v total=%v", s3, t3)
	}
	if m.Sessions() != 2 {
		t.Fatalf("expected 2 sessions, got %d", m.Sessions())
	}
}

func TestSessionModel_UsesReportedStart(t *testing.T) {
	m := NewSessionModel()
	base := time.Unix(100, 0)
	m.OnTick(true, base.Add(-2*time.Second), base)
	if s, _ := m.Values(); s != 2*time.Second {
		t.Fatalf("expected duration from reported start, got %v", s)
	}
}

func TestSessionModel_NilSafe(t *testing.T) {
	var m *SessionModel
	m.OnTick(true, time.Time{}, time.Now())
	if s, tt := m.Values(); s != 0 || tt != 0 {
		t.Fatalf("nil model returned values")
	}
}
