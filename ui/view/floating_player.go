package view

import (
	"image"
	"log/slog"

	"github.com/soocke/sentinel-go/ui/model"
	"github.com/soocke/sentinel-go/ui/presenter"
	"github.com/soocke/sentinel-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// FloatingPlayerHandlers receive the overlay's user input.
type FloatingPlayerHandlers struct {
	PointerDown func(target presenter.Target, at image.Point)
	ToggleMute  func()
	Stop        func()
	Expand      func()
}

// FloatingPlayer is the always-on-top window showing the local capture while
// the dashboard is in front. The window exists only while shown.
type FloatingPlayer struct {
	hub      *presenter.PointerHub
	handlers FloatingPlayerHandlers
	logger   *slog.Logger

	win     *ToplevelWidget
	video   *photoLabel
	muteBtn *ButtonWidget
	muted   bool
	geom    string
}

func NewFloatingPlayer(hub *presenter.PointerHub, logger *slog.Logger) *FloatingPlayer {
	return &FloatingPlayer{hub: hub, logger: logger}
}

// SetHandlers wires the overlay controls. Call before the first Show.
func (v *FloatingPlayer) SetHandlers(h FloatingPlayerHandlers) { v.handlers = h }

func (v *FloatingPlayer) build() {
	pal := theme.CurrentPalette()
	win := App.Toplevel(Borderwidth(1), Background(pal.Surface))
	win.WmTitle("Live")
	WmAttributes(win.Window, "-topmost", 1)
	if toolWindow() {
		WmAttributes(win.Window, "-toolwindow", true)
	}
	WmProtocol(win.Window, "WM_DELETE_WINDOW", func() { call(v.handlers.Stop) })
	GridColumnConfigure(win.Window, 0, Weight(1))
	GridRowConfigure(win.Window, 1, Weight(1))

	header := win.Frame(Background(pal.Primary))
	Grid(header, Row(0), Column(0), Sticky("we"))
	GridColumnConfigure(header.Window, 0, Weight(1))
	badge := header.Label(Txt("● LIVE"), Background(pal.Live), Foreground("white"), Anchor("w"))
	Grid(badge, In(header), Row(0), Column(0), Sticky("w"), Padx("1m"), Pady("0.3m"))
	v.muteBtn = header.Button(Txt("Mute"), Command(func() { call(v.handlers.ToggleMute) }))
	Grid(v.muteBtn, In(header), Row(0), Column(1), Padx("0.2m"), Pady("0.2m"))
	expand := header.Button(Txt("Expand"), Command(func() { call(v.handlers.Expand) }))
	Grid(expand, In(header), Row(0), Column(2), Padx("0.2m"), Pady("0.2m"))
	stop := header.Button(Txt("Stop"), Command(func() { call(v.handlers.Stop) }))
	Grid(stop, In(header), Row(0), Column(3), Padx("0.2m"), Pady("0.2m"))

	v.video = newPhotoLabel(win.Window, model.OverlayWidth, model.OverlayWidth*9/16)
	v.video.label.Configure(Background(pal.VideoBg), Borderwidth(0))
	Grid(v.video.label, Row(1), Column(0), Sticky("nsew"))

	// Only the header strip and the video start drags; the buttons keep
	// their own click handling.
	v.bindDrag(header.Window, presenter.TargetHeader)
	v.bindDrag(badge.Window, presenter.TargetHeader)
	v.bindDrag(v.video.label.Window, presenter.TargetVideo)

	v.win = win
	v.geom = ""
	v.applyMuted()
}

func (v *FloatingPlayer) bindDrag(w *Window, target presenter.Target) {
	Bind(w, "<ButtonPress-1>", Command(func() {
		if p, ok := cursorPos(); ok && v.handlers.PointerDown != nil {
			v.handlers.PointerDown(target, p)
		}
	}))
	Bind(w, "<B1-Motion>", Command(func() {
		if p, ok := cursorPos(); ok && v.hub != nil {
			v.hub.Move(p)
		}
	}))
	Bind(w, "<ButtonRelease-1>", Command(func() {
		if p, ok := cursorPos(); ok && v.hub != nil {
			v.hub.Up(p)
		}
	}))
}

// Show creates the window if needed and places it at rect.
func (v *FloatingPlayer) Show(rect image.Rectangle) {
	if v.win == nil {
		v.build()
	}
	if g := formatGeometry(rect); g != v.geom {
		v.geom = g
		WmGeometry(v.win.Window, g)
	}
}

// Hide destroys the window.
func (v *FloatingPlayer) Hide() {
	if v.win == nil {
		return
	}
	v.video.release()
	Destroy(v.win)
	v.win, v.video, v.muteBtn = nil, nil, nil
}

func (v *FloatingPlayer) SetMuted(muted bool) {
	v.muted = muted
	v.applyMuted()
}

func (v *FloatingPlayer) applyMuted() {
	if v.muteBtn == nil {
		return
	}
	if v.muted {
		v.muteBtn.Configure(Txt("Unmute"))
	} else {
		v.muteBtn.Configure(Txt("Mute"))
	}
}

func (v *FloatingPlayer) SetFrame(png []byte) {
	if v.win != nil {
		v.video.Set(png)
	}
}

var _ presenter.OverlayView = (*FloatingPlayer)(nil)
