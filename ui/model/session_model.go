package model

import (
	"time"
)

// SessionModel tracks the live capture session duration and the time spent
// streaming across sessions. The zero value is ready to use.
type SessionModel struct {
	active    bool
	startedAt time.Time
	current   time.Duration
	total     time.Duration
	sessions  int
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick folds the streaming flag observed at now into the model. startedAt
// is the session start reported by the capture manager; a zero value falls
// back to the first tick that saw the session.
func (m *SessionModel) OnTick(streaming bool, startedAt, now time.Time) {
	if m == nil {
		return
	}
	if streaming {
		if !m.active {
			m.active = true
			m.sessions++
			m.startedAt = now
			if !startedAt.IsZero() && !startedAt.After(now) {
				m.startedAt = startedAt
			}
		}
		m.current = now.Sub(m.startedAt)
		return
	}
	if m.active {
		m.current = now.Sub(m.startedAt)
		m.total += m.current
		m.active = false
	}
}

// Values returns the current (or last) session duration and the total
// streaming time including any ongoing session.
func (m *SessionModel) Values() (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	session = m.current
	total = m.total
	if m.active {
		total += session
	}
	return
}

// Sessions counts capture sessions seen.
func (m *SessionModel) Sessions() int {
	if m == nil {
		return 0
	}
	return m.sessions
}
