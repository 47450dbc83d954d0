package presenter

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/sentinel-go/ui/model"
)

// Target identifies what a pointer-down landed on inside the overlay.
type Target int

const (
	TargetHeader Target = iota
	TargetVideo
	// TargetControl is any overlay button; it never starts a drag.
	TargetControl
)

// OverlayView is the floating player window.
type OverlayView interface {
	Show(rect image.Rectangle)
	Hide()
	SetMuted(muted bool)
	SetFrame(png []byte)
}

// OverlayPresenter coordinates the floating player: visibility by route and
// streaming state, drag sessions, late attach to the capture session, and
// the overlay controls.
type OverlayPresenter struct {
	ctrl     Controller
	stream   StreamSource
	router   Router
	model    *model.OverlayModel
	hub      *PointerHub
	view     OverlayView
	renderer FrameRenderer
	binding  *SurfaceBinding
	logger   *slog.Logger

	mounted       bool
	lastStreaming bool
	lastMuted     bool
	lastSeq       uint64
	drag          *DragSession
}

func NewOverlayPresenter(ctrl Controller, stream StreamSource, router Router, m *model.OverlayModel, hub *PointerHub, view OverlayView, renderer FrameRenderer, logger *slog.Logger) *OverlayPresenter {
	if m == nil {
		m = model.NewOverlayModel()
	}
	if hub == nil {
		hub = NewPointerHub()
	}
	if renderer == nil {
		renderer = &SyncRenderer{}
	}
	return &OverlayPresenter{
		ctrl:     ctrl,
		stream:   stream,
		router:   router,
		model:    m,
		hub:      hub,
		view:     view,
		renderer: renderer,
		binding:  NewSurfaceBinding("overlay"),
		logger:   logger,
	}
}

// Binding is the capture surface the overlay renders.
func (p *OverlayPresenter) Binding() *SurfaceBinding { return p.binding }

// Mount asks for the current session. Capture may have started before the
// overlay existed.
func (p *OverlayPresenter) Mount() {
	if p == nil || p.mounted {
		return
	}
	p.mounted = true
	p.ctrl.Attach(p.binding)
}

// Unmount ends any drag, hides the overlay and releases its binding.
func (p *OverlayPresenter) Unmount() {
	if p == nil || !p.mounted {
		return
	}
	p.mounted = false
	p.endDrag()
	p.setVisible(false)
	p.ctrl.Detach(p.binding)
}

// Visible reports whether the overlay is currently shown.
func (p *OverlayPresenter) Visible() bool { return p != nil && p.model.Visible() }

// Dragging reports whether a drag session is active.
func (p *OverlayPresenter) Dragging() bool { return p != nil && p.drag != nil }

// Tick reconciles the overlay with the latest core state.
func (p *OverlayPresenter) Tick(now time.Time) {
	if p == nil || !p.mounted || p.stream == nil || p.view == nil {
		return
	}
	snap := p.stream.Snapshot()
	streaming := snap.Capture.Streaming
	// A stop and restart between ticks unbinds the overlay without a
	// streaming edge, so a session mismatch also re-attaches.
	stale := snap.Session != nil && p.binding.Session() != snap.Session
	if streaming && (!p.lastStreaming || stale) {
		p.ctrl.Attach(p.binding)
	}
	p.lastStreaming = streaming

	p.setVisible(streaming && p.router.Current() != model.RouteLiveFeed)
	if !p.model.Visible() {
		return
	}
	if muted := p.binding.Muted(); muted != p.lastMuted {
		p.lastMuted = muted
		p.view.SetMuted(muted)
	}
	if f := p.binding.latestVideo(); f.Image != nil && f.Sequence != p.lastSeq {
		p.lastSeq = f.Sequence
		p.renderer.Submit(RenderJob{
			Seq:    f.Sequence,
			Src:    f.Image,
			Width:  model.OverlayWidth,
			Height: model.OverlayWidth * 9 / 16,
			Cover:  true,
		})
	}
	if res, ok := p.renderer.Poll(); ok && len(res.PNG) > 0 {
		p.view.SetFrame(res.PNG)
	}
}

func (p *OverlayPresenter) setVisible(v bool) {
	if p.model.Visible() == v {
		return
	}
	p.model.SetVisible(v)
	if !v {
		p.endDrag()
		p.view.Hide()
		p.lastSeq = 0
		return
	}
	p.lastMuted = p.binding.Muted()
	p.view.SetMuted(p.lastMuted)
	p.view.Show(p.model.Rect())
}

// SetViewport updates the area the overlay is anchored to.
func (p *OverlayPresenter) SetViewport(r image.Rectangle) {
	if p == nil || r == p.model.Viewport() {
		return
	}
	p.model.SetViewport(r)
	if p.model.Visible() {
		p.view.Show(p.model.Rect())
	}
}

// PointerDown starts a drag session for body targets. Presses on controls
// are consumed here so they never move the overlay.
func (p *OverlayPresenter) PointerDown(target Target, at image.Point) {
	if p == nil || target == TargetControl || !p.model.Visible() {
		return
	}
	p.endDrag()
	p.drag = beginDrag(p.hub, target, at, p.model.Position(), p.dragTo, p.dragEnded)
	if p.logger != nil {
		p.logger.Debug("overlay.drag.start", "drag", p.drag.ID, "target", int(target))
	}
}

func (p *OverlayPresenter) dragTo(pos image.Point) {
	p.model.SetPosition(pos)
	p.view.Show(p.model.Rect())
}

func (p *OverlayPresenter) dragEnded(d *DragSession, released bool) {
	if p.drag == d {
		p.drag = nil
	}
	if p.logger != nil {
		p.logger.Debug("overlay.drag.end", "drag", d.ID, "moved", d.Moved(), "released", released)
	}
	// a click on the video opens the full surface
	if released && !d.Moved() && d.Target == TargetVideo {
		p.OpenFullSurface()
	}
}

func (p *OverlayPresenter) endDrag() {
	if p.drag != nil {
		p.drag.End(false)
	}
}

// ToggleMute flips the shared mute flag.
func (p *OverlayPresenter) ToggleMute() {
	if p != nil {
		p.ctrl.ToggleMute()
	}
}

// OpenFullSurface navigates to the live feed page.
func (p *OverlayPresenter) OpenFullSurface() {
	if p == nil {
		return
	}
	p.endDrag()
	p.router.Navigate(model.RouteLiveFeed)
}

// StopCapture ends the shared capture session.
func (p *OverlayPresenter) StopCapture() {
	if p == nil {
		return
	}
	p.endDrag()
	p.ctrl.StopCapture()
}
