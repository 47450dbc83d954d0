package presenter

import (
	"time"

	"github.com/soocke/sentinel-go/ui/model"
)

// SessionView displays formatted session and total durations.
type SessionView interface {
	SetSession(session, total time.Duration)
}

// SessionPresenter advances the session model from the published capture
// state and pushes the durations to the view.
type SessionPresenter struct {
	sess   *model.SessionModel
	stream StreamSource
	view   SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, stream StreamSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, stream: stream, view: view}
}

// Tick updates the presenter: advance the session model and push values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.stream == nil {
		return
	}
	st := p.stream.Snapshot().Capture
	p.sess.OnTick(st.Streaming, st.StartedAt, now)
	if p.view == nil {
		return
	}
	s, t := p.sess.Values()
	p.view.SetSession(s, t)
}
