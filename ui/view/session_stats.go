package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows the session and total capture durations.
type SessionStats interface {
	SetSession(d time.Duration)
	SetTotal(d time.Duration)
}

type sessionStats struct {
	sessionLbl *LabelWidget
	totalLbl   *LabelWidget
	lastS      int
	lastT      int
}

// NewSessionStats creates the duration labels at (row, startCol) and
// (row, startCol+1) inside parent.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{lastS: -1, lastT: -1}
	s.sessionLbl = parent.Label(Width(16), Anchor("w"))
	s.totalLbl = parent.Label(Width(16), Anchor("w"))
	Grid(s.sessionLbl, In(parent), Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
	Grid(s.totalLbl, In(parent), Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	s.SetSession(0)
	s.SetTotal(0)
	return s
}

// clock formats d as MM:SS, or H:MM:SS past the hour.
func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	h, m, sec := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}

func (s *sessionStats) SetSession(d time.Duration) {
	if s == nil || s.sessionLbl == nil || int(d.Seconds()) == s.lastS {
		return
	}
	s.lastS = int(d.Seconds())
	s.sessionLbl.Configure(Txt("Session: " + clock(d)))
}

func (s *sessionStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil || int(d.Seconds()) == s.lastT {
		return
	}
	s.lastT = int(d.Seconds())
	s.totalLbl.Configure(Txt("Total: " + clock(d)))
}
