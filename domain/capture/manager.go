// Package capture owns the single local audio/video capture session and
// shares it read-only with any number of rendering surfaces.
package capture

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/sentinel-go/domain/loop"
)

// Session is the live capture resource. Surfaces receive it read-only.
type Session struct {
	ID        string
	StartedAt time.Time
	Video     VideoTrack
	Audio     AudioTrack

	tracks   []Track
	stopOnce sync.Once
}

func newSession(tracks []Track, now time.Time) *Session {
	s := &Session{ID: uuid.NewString(), StartedAt: now, tracks: tracks}
	for _, t := range tracks {
		switch t.Kind() {
		case KindVideo:
			if vt, ok := t.(VideoTrack); ok && s.Video == nil {
				s.Video = vt
			}
		case KindAudio:
			if at, ok := t.(AudioTrack); ok && s.Audio == nil {
				s.Audio = at
			}
		}
	}
	return s
}

// Tracks returns the device handles of the session.
func (s *Session) Tracks() []Track {
	out := make([]Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

func (s *Session) stop() {
	s.stopOnce.Do(func() { stopTracks(s.tracks) })
}

func stopTracks(tracks []Track) {
	for _, t := range tracks {
		if t != nil {
			t.Stop()
		}
	}
}

// State is an immutable view of the manager.
type State struct {
	SessionID string
	Streaming bool
	Pending   bool
	Muted     bool
	Error     string
	StartedAt time.Time
	Surfaces  int
}

// Manager is the only mutator of the capture session. Every method must be
// called on the manager's loop.
type Manager struct {
	loop        loop.Loop
	devices     MediaDevices
	constraints Constraints
	logger      *slog.Logger

	session   *Session
	pending   bool
	gen       uint64
	muted     bool
	errMsg    string
	bound     map[Surface]struct{}
	listeners map[int]func(State)
	nextID    int
}

func NewManager(l loop.Loop, devices MediaDevices, constraints Constraints, logger *slog.Logger) *Manager {
	return &Manager{
		loop:        l,
		devices:     devices,
		constraints: constraints,
		logger:      logger,
		bound:       map[Surface]struct{}{},
		listeners:   map[int]func(State){},
	}
}

// StartCapture requests the capture device. While a session is active or a
// request is outstanding the call is a no-op.
func (m *Manager) StartCapture(ctx context.Context) {
	if m.session != nil || m.pending {
		if m.logger != nil {
			m.logger.Debug("capture.start.ignored", "active", m.session != nil, "pending", m.pending)
		}
		return
	}
	m.pending = true
	m.errMsg = ""
	gen := m.gen
	constraints := m.constraints
	m.notify()
	m.loop.Go(func() {
		tracks, err := m.devices.GetUserMedia(ctx, constraints)
		m.loop.Post(func() { m.granted(gen, tracks, err) })
	})
}

func (m *Manager) granted(gen uint64, tracks []Track, err error) {
	if gen != m.gen {
		// StopCapture ran while the request was outstanding.
		stopTracks(tracks)
		if m.logger != nil {
			m.logger.Debug("capture.grant.discarded", "tracks", len(tracks))
		}
		return
	}
	m.pending = false
	if err != nil {
		stopTracks(tracks)
		m.errMsg = DeniedMessage
		if m.logger != nil {
			m.logger.Warn("capture.denied", "error", err)
		}
		m.notify()
		return
	}
	m.session = newSession(tracks, m.loop.Now())
	if m.logger != nil {
		m.logger.Info("capture.start", "session", m.session.ID, "tracks", len(tracks),
			"width", m.constraints.Width, "height", m.constraints.Height)
	}
	m.notify()
}

// StopCapture stops every track, unbinds every surface and clears the
// session. Tracks are stopped once per session regardless of how many
// surfaces were bound.
func (m *Manager) StopCapture() {
	m.gen++
	wasPending := m.pending
	m.pending = false
	if m.session == nil {
		if wasPending {
			m.notify()
		}
		return
	}
	for s := range m.bound {
		s.Unbind()
	}
	clear(m.bound)
	sess := m.session
	m.session = nil
	sess.stop()
	if m.logger != nil {
		m.logger.Info("capture.stop", "session", sess.ID, "duration", m.loop.Now().Sub(sess.StartedAt))
	}
	m.notify()
}

// ToggleMute flips the mute flag and pushes it to every bound surface.
func (m *Manager) ToggleMute() {
	m.muted = !m.muted
	for s := range m.bound {
		s.SetMuted(m.muted)
	}
	m.notify()
}

// Attach binds the active session to s. It returns false, and does nothing,
// when no session is active.
func (m *Manager) Attach(s Surface) bool {
	if s == nil || m.session == nil {
		return false
	}
	m.bound[s] = struct{}{}
	s.Bind(m.session, m.muted)
	return true
}

// Detach unbinds s if it is bound.
func (m *Manager) Detach(s Surface) {
	if _, ok := m.bound[s]; !ok {
		return
	}
	delete(m.bound, s)
	s.Unbind()
}

// Session returns the active session or nil.
func (m *Manager) Session() *Session { return m.session }

func (m *Manager) State() State {
	st := State{Pending: m.pending, Muted: m.muted, Error: m.errMsg, Surfaces: len(m.bound)}
	if m.session != nil {
		st.SessionID = m.session.ID
		st.Streaming = true
		st.StartedAt = m.session.StartedAt
	}
	return st
}

// Subscribe registers fn for every state change and returns a function
// removing it.
func (m *Manager) Subscribe(fn func(State)) func() {
	if fn == nil {
		return func() {}
	}
	m.nextID++
	id := m.nextID
	m.listeners[id] = fn
	return func() { delete(m.listeners, id) }
}

func (m *Manager) notify() {
	st := m.State()
	for _, fn := range m.listeners {
		fn(st)
	}
}
