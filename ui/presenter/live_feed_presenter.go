package presenter

import (
	"log/slog"
	"time"

	"github.com/soocke/sentinel-go/domain/snapshot"
	"github.com/soocke/sentinel-go/ui/model"
)

// Live feed panel size.
const (
	FeedWidth  = 640
	FeedHeight = 360
)

// LiveFeedView is the dedicated full-size surface.
type LiveFeedView interface {
	SetCameraState(streaming, muted bool, errMsg string)
	SetFeedStatus(text string, retry bool)
	// SetFeedFrame and SetLocalFrame clear the image when png is nil.
	SetFeedFrame(png []byte)
	SetLocalFrame(png []byte)
	SetAlarm(active bool)
	SetNightMode(on bool)
	SetFullscreen(on bool)
	SetSession(session, total time.Duration)
	SetAudioLevel(level float64, audible bool)
}

// FeedStatusText describes the remote feed for display. retry reports
// whether a manual retry should be offered.
func FeedStatusText(f model.FeedView) (text string, retry bool) {
	switch f.State {
	case snapshot.StateLoading:
		if f.Frame == nil {
			return "Connecting to camera...", false
		}
		return "Live", false
	case snapshot.StateStreaming:
		return "Live", false
	case snapshot.StateError:
		msg := f.Message
		if msg == "" {
			msg = "Connection failed"
		}
		return "Failed to connect to camera stream: " + msg, true
	default:
		return "Camera is offline", false
	}
}

// LiveFeedPresenter drives the live feed page: the remote snapshot feed
// while the page is shown, a second surface on the local capture, the alarm
// and night mode.
type LiveFeedPresenter struct {
	ctrl    Controller
	stream  StreamSource
	router  Router
	view    LiveFeedView
	session *model.SessionModel
	feedR   FrameRenderer
	localR  FrameRenderer
	binding *SurfaceBinding
	logger  *slog.Logger

	cameraID    string
	mounted     bool
	night       bool
	fullscreen  bool
	alarmWanted bool
	feedSeq     uint64
	localSeq    uint64
	feedShown   bool
	localShown  bool
	lastStatus  string
}

func NewLiveFeedPresenter(ctrl Controller, stream StreamSource, router Router, view LiveFeedView, session *model.SessionModel, cameraID string, feedR, localR FrameRenderer, logger *slog.Logger) *LiveFeedPresenter {
	if feedR == nil {
		feedR = &SyncRenderer{}
	}
	if localR == nil {
		localR = &SyncRenderer{}
	}
	return &LiveFeedPresenter{
		ctrl:     ctrl,
		stream:   stream,
		router:   router,
		view:     view,
		session:  session,
		feedR:    feedR,
		localR:   localR,
		binding:  NewSurfaceBinding("live-feed"),
		logger:   logger,
		cameraID: cameraID,
	}
}

func (p *LiveFeedPresenter) Binding() *SurfaceBinding { return p.binding }

func (p *LiveFeedPresenter) CameraID() string { return p.cameraID }

func (p *LiveFeedPresenter) Shown() bool { return p != nil && p.mounted }

// SetView replaces the view; the page window is rebuilt on each visit.
func (p *LiveFeedPresenter) SetView(v LiveFeedView) {
	if p != nil {
		p.view = v
	}
}

// Show starts the remote feed and attaches to any live capture session.
func (p *LiveFeedPresenter) Show() {
	if p == nil || p.mounted {
		return
	}
	p.mounted = true
	p.night = false
	p.fullscreen = false
	p.feedSeq, p.localSeq = 0, 0
	p.feedShown, p.localShown = false, false
	p.lastStatus = ""
	if p.cameraID != "" {
		p.ctrl.StartFeed(p.cameraID)
	}
	p.ctrl.Attach(p.binding)
	if p.view != nil {
		p.view.SetNightMode(false)
		p.view.SetAlarm(p.alarmWanted)
	}
	if p.logger != nil {
		p.logger.Info("livefeed.show", "camera", p.cameraID)
	}
}

// Hide stops the remote feed and the alarm and releases the surface.
func (p *LiveFeedPresenter) Hide() {
	if p == nil || !p.mounted {
		return
	}
	p.mounted = false
	p.ctrl.StopFeed()
	if p.alarmWanted {
		p.alarmWanted = false
		p.ctrl.StopAlarm()
	}
	p.ctrl.Detach(p.binding)
	if p.logger != nil {
		p.logger.Info("livefeed.hide", "camera", p.cameraID)
	}
}

// Tick pushes the latest core state to the view.
func (p *LiveFeedPresenter) Tick(now time.Time) {
	if p == nil || !p.mounted || p.view == nil || p.stream == nil {
		return
	}
	snap := p.stream.Snapshot()
	cs := snap.Capture
	p.view.SetCameraState(cs.Streaming, p.binding.Muted() || cs.Muted, cs.Error)
	if cs.Streaming && p.binding.Session() == nil {
		p.ctrl.Attach(p.binding)
	}

	if text, retry := FeedStatusText(snap.Feed); text != p.lastStatus {
		p.lastStatus = text
		p.view.SetFeedStatus(text, retry)
	}
	p.tickFeed(snap.Feed)
	p.tickLocal()

	if snap.AlarmActive != p.alarmWanted && p.logger != nil {
		p.logger.Debug("livefeed.alarm.pending", "wanted", p.alarmWanted, "active", snap.AlarmActive)
	}
	if p.session != nil {
		s, t := p.session.Values()
		p.view.SetSession(s, t)
	}
}

func (p *LiveFeedPresenter) tickFeed(f model.FeedView) {
	if f.Frame == nil || f.State == snapshot.StateError || f.State == snapshot.StateIdle {
		if p.feedShown {
			p.feedShown = false
			p.feedSeq = 0
			p.view.SetFeedFrame(nil)
		}
		return
	}
	if f.FrameSeq != p.feedSeq {
		p.feedSeq = f.FrameSeq
		p.feedR.Submit(RenderJob{Seq: f.FrameSeq, Src: f.Frame, Width: FeedWidth, Height: FeedHeight, Night: p.night})
	}
	if res, ok := p.feedR.Poll(); ok && len(res.PNG) > 0 && res.Seq == p.feedSeq {
		p.feedShown = true
		p.view.SetFeedFrame(res.PNG)
	}
}

func (p *LiveFeedPresenter) tickLocal() {
	sess := p.binding.Session()
	if sess == nil {
		if p.localShown {
			p.localShown = false
			p.localSeq = 0
			p.view.SetLocalFrame(nil)
			p.view.SetAudioLevel(0, false)
		}
		return
	}
	if f := p.binding.latestVideo(); f.Image != nil && f.Sequence != p.localSeq {
		p.localSeq = f.Sequence
		p.localR.Submit(RenderJob{Seq: f.Sequence, Src: f.Image, Width: FeedWidth, Height: FeedHeight, Cover: true, Night: p.night, Tint: true})
	}
	if res, ok := p.localR.Poll(); ok && len(res.PNG) > 0 {
		p.localShown = true
		p.view.SetLocalFrame(res.PNG)
	}
	if sess.Audio != nil {
		p.view.SetAudioLevel(sess.Audio.Level(), !p.binding.Muted())
	}
}

// ToggleCapture starts or stops the shared local capture.
func (p *LiveFeedPresenter) ToggleCapture() {
	if p == nil {
		return
	}
	if p.stream != nil && p.stream.Snapshot().Capture.Streaming {
		p.ctrl.StopCapture()
		return
	}
	p.ctrl.StartCapture()
}

func (p *LiveFeedPresenter) ToggleMute() {
	if p != nil {
		p.ctrl.ToggleMute()
	}
}

// ToggleAlarm starts or stops the siren.
func (p *LiveFeedPresenter) ToggleAlarm() {
	if p == nil {
		return
	}
	p.alarmWanted = !p.alarmWanted
	if p.alarmWanted {
		p.ctrl.StartAlarm()
	} else {
		p.ctrl.StopAlarm()
	}
	if p.view != nil {
		p.view.SetAlarm(p.alarmWanted)
	}
}

func (p *LiveFeedPresenter) AlarmOn() bool { return p != nil && p.alarmWanted }

// ToggleNight flips night mode and re-renders the current frames.
func (p *LiveFeedPresenter) ToggleNight() {
	if p == nil {
		return
	}
	p.night = !p.night
	p.feedSeq, p.localSeq = 0, 0
	if p.view != nil {
		p.view.SetNightMode(p.night)
	}
}

func (p *LiveFeedPresenter) Night() bool { return p != nil && p.night }

// ToggleFullscreen flips the page between windowed and fullscreen.
func (p *LiveFeedPresenter) ToggleFullscreen() {
	if p == nil || !p.mounted {
		return
	}
	p.fullscreen = !p.fullscreen
	if p.view != nil {
		p.view.SetFullscreen(p.fullscreen)
	}
}

func (p *LiveFeedPresenter) Fullscreen() bool { return p != nil && p.fullscreen }

// Retry restarts the remote feed after it gave up.
func (p *LiveFeedPresenter) Retry() {
	if p == nil || !p.mounted {
		return
	}
	p.ctrl.RetryFeed()
}

// SelectCamera switches the remote feed to id.
func (p *LiveFeedPresenter) SelectCamera(id string) {
	if p == nil || id == "" || id == p.cameraID {
		return
	}
	p.cameraID = id
	if p.mounted {
		p.ctrl.StartFeed(id)
	}
}

// Minimize returns to the dashboard; the floating player takes over.
func (p *LiveFeedPresenter) Minimize() {
	if p != nil {
		p.router.Navigate(model.RouteHome)
	}
}
