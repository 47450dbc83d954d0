package view

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/soocke/sentinel-go/ui/presenter"
	"github.com/soocke/sentinel-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// LiveFeedHandlers receive the live feed page's user input.
type LiveFeedHandlers struct {
	ToggleCapture func()
	ToggleMute    func()
	ToggleAlarm   func()
	ToggleNight   func()
	Fullscreen    func()
	Retry         func()
	SelectCamera  func(id string)
	Minimize      func()
}

// LiveFeedWindow is the full-size monitoring page: the remote camera feed,
// the local capture and the alarm controls.
type LiveFeedWindow struct {
	handlers LiveFeedHandlers
	logger   *slog.Logger
	cameras  []string

	win       *ToplevelWidget
	feed      *photoLabel
	local     *photoLabel
	status    *TLabelWidget
	retryBtn  *ButtonWidget
	camState  *TLabelWidget
	captureBt *ButtonWidget
	muteBtn   *ButtonWidget
	alarmBtn  *TButtonWidget
	fullBtn   *ButtonWidget
	nightBtn  *ButtonWidget
	micLbl    *LabelWidget
	cameraSel *TComboboxWidget
	session   SessionStats
	lastMic   string
}

func NewLiveFeedWindow(cameras []string, handlers LiveFeedHandlers, logger *slog.Logger) *LiveFeedWindow {
	return &LiveFeedWindow{cameras: cameras, handlers: handlers, logger: logger}
}

// Open builds the window showing camera as the selected feed.
func (v *LiveFeedWindow) Open(camera string) {
	if v.win != nil {
		return
	}
	pal := theme.CurrentPalette()
	win := App.Toplevel(Borderwidth(1), Background(pal.AppBg))
	win.WmTitle("Live Feed")
	WmProtocol(win.Window, "WM_DELETE_WINDOW", func() { call(v.handlers.Minimize) })
	GridColumnConfigure(win.Window, 0, Weight(1))
	GridColumnConfigure(win.Window, 1, Weight(1))

	// Row 0: camera selection, fullscreen and minimize
	top := win.Frame()
	Grid(top, Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	GridColumnConfigure(top.Window, 1, Weight(1))
	Grid(top.Label(Txt("Camera"), Anchor("w")), In(top), Row(0), Column(0), Sticky("w"), Padx("0.2m"))
	cameras := v.cameras
	if len(cameras) == 0 {
		cameras = []string{camera}
	}
	v.cameraSel = top.TCombobox(Values(cameras), Width(20))
	Grid(v.cameraSel, In(top), Row(0), Column(1), Sticky("w"), Padx("0.2m"))
	v.cameraSel.Current(indexOf(cameras, camera))
	Bind(v.cameraSel, "<<ComboboxSelected>>", Command(func() {
		idx, err := strconv.Atoi(v.cameraSel.Current(nil))
		if err != nil || idx < 0 || idx >= len(cameras) {
			if v.logger != nil {
				v.logger.Error("camera selection parse error", "error", err)
			}
			return
		}
		if v.handlers.SelectCamera != nil {
			v.handlers.SelectCamera(cameras[idx])
		}
	}))
	v.fullBtn = top.Button(Txt("Fullscreen"), Command(func() { call(v.handlers.Fullscreen) }))
	Grid(v.fullBtn, In(top), Row(0), Column(2), Sticky("e"), Padx("0.2m"))
	minimize := top.Button(Txt("Minimize"), Command(func() { call(v.handlers.Minimize) }))
	Grid(minimize, In(top), Row(0), Column(3), Sticky("e"), Padx("0.2m"))

	// Row 1: remote feed and local capture side by side
	v.feed = newPhotoLabel(win.Window, presenter.FeedWidth, presenter.FeedHeight)
	Grid(v.feed.label, Row(1), Column(0), Sticky("nsew"), Padx("0.4m"), Pady("0.4m"))
	v.local = newPhotoLabel(win.Window, presenter.FeedWidth, presenter.FeedHeight)
	Grid(v.local.label, Row(1), Column(1), Sticky("nsew"), Padx("0.4m"), Pady("0.4m"))

	// Row 2: feed status with retry, local capture status
	statusRow := win.Frame()
	Grid(statusRow, Row(2), Column(0), Sticky("we"), Padx("0.4m"))
	GridColumnConfigure(statusRow.Window, 0, Weight(1))
	v.status = statusRow.TLabel(Style(theme.StyleStatusLabel), Txt("Camera is offline"), Anchor("w"))
	Grid(v.status, In(statusRow), Row(0), Column(0), Sticky("we"))
	v.retryBtn = statusRow.Button(Txt("Retry"), State("disabled"), Command(func() { call(v.handlers.Retry) }))
	Grid(v.retryBtn, In(statusRow), Row(0), Column(1), Sticky("e"), Padx("0.2m"))
	v.camState = win.TLabel(Style(theme.StyleStatusLabel), Txt("Camera Off"), Anchor("w"))
	Grid(v.camState, Row(2), Column(1), Sticky("we"), Padx("0.4m"))

	// Row 3: controls
	controls := win.Frame()
	Grid(controls, Row(3), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	v.captureBt = controls.Button(Txt("Start Camera"), Command(func() { call(v.handlers.ToggleCapture) }))
	Grid(v.captureBt, In(controls), Row(0), Column(0), Sticky("we"), Padx("0.2m"))
	v.muteBtn = controls.Button(Txt("Mute"), Command(func() { call(v.handlers.ToggleMute) }))
	Grid(v.muteBtn, In(controls), Row(0), Column(1), Sticky("we"), Padx("0.2m"))
	v.alarmBtn = controls.TButton(Style(theme.StyleAlarmButton), Txt("Sound Alarm"), Command(func() { call(v.handlers.ToggleAlarm) }))
	Grid(v.alarmBtn, In(controls), Row(0), Column(2), Sticky("we"), Padx("0.2m"))
	v.nightBtn = controls.Button(Txt("Night Vision"), Command(func() { call(v.handlers.ToggleNight) }))
	Grid(v.nightBtn, In(controls), Row(0), Column(3), Sticky("we"), Padx("0.2m"))
	v.micLbl = controls.Label(Txt("Mic: -"), Width(18), Anchor("w"))
	Grid(v.micLbl, In(controls), Row(0), Column(4), Sticky("w"), Padx("0.4m"))
	v.session = NewSessionStats(controls, 0, 5)

	v.win = win
	v.lastMic = ""
}

// Close destroys the window and its photos.
func (v *LiveFeedWindow) Close() {
	if v.win == nil {
		return
	}
	v.feed.release()
	v.local.release()
	Destroy(v.win)
	v.win = nil
}

// IsOpen reports whether the window exists.
func (v *LiveFeedWindow) IsOpen() bool { return v.win != nil }

func (v *LiveFeedWindow) SetCameraState(streaming, muted bool, errMsg string) {
	if v.win == nil {
		return
	}
	if streaming {
		v.captureBt.Configure(Txt("Stop Camera"))
	} else {
		v.captureBt.Configure(Txt("Start Camera"))
	}
	if muted {
		v.muteBtn.Configure(Txt("Unmute"))
	} else {
		v.muteBtn.Configure(Txt("Mute"))
	}
	text := presenter.CaptureStatusText(streaming, false, muted, errMsg)
	v.camState.Configure(Txt(text), Foreground(theme.StatusColor(streaming, errMsg != "")))
}

func (v *LiveFeedWindow) SetFeedStatus(text string, retry bool) {
	if v.win == nil {
		return
	}
	v.status.Configure(Txt(text), Foreground(theme.StatusColor(text == "Live", retry)))
	if retry {
		v.retryBtn.Configure(State("normal"))
	} else {
		v.retryBtn.Configure(State("disabled"))
	}
}

func (v *LiveFeedWindow) SetFeedFrame(png []byte) {
	if v.win != nil {
		v.feed.Set(png)
	}
}

func (v *LiveFeedWindow) SetLocalFrame(png []byte) {
	if v.win != nil {
		v.local.Set(png)
	}
}

func (v *LiveFeedWindow) SetAlarm(active bool) {
	if v.win == nil {
		return
	}
	if active {
		v.alarmBtn.Configure(Txt("Stop Alarm"))
	} else {
		v.alarmBtn.Configure(Txt("Sound Alarm"))
	}
}

func (v *LiveFeedWindow) SetNightMode(on bool) {
	if v.win == nil {
		return
	}
	if on {
		v.nightBtn.Configure(Txt("Day Vision"))
	} else {
		v.nightBtn.Configure(Txt("Night Vision"))
	}
}

// SetFullscreen asks the window manager to cover the screen with the page.
func (v *LiveFeedWindow) SetFullscreen(on bool) {
	if v.win == nil {
		return
	}
	flag, label := "0", "Fullscreen"
	if on {
		flag, label = "1", "Exit Fullscreen"
	}
	WmAttributes(v.win.Window, "-fullscreen", flag)
	v.fullBtn.Configure(Txt(label))
}

func (v *LiveFeedWindow) SetSession(session, total time.Duration) {
	if v.win != nil {
		v.session.SetSession(session)
		v.session.SetTotal(total)
	}
}

// SetAudioLevel draws a ten-step meter of the microphone level.
func (v *LiveFeedWindow) SetAudioLevel(level float64, audible bool) {
	if v.win == nil {
		return
	}
	text := "Mic: muted"
	if audible {
		n := int(min(max(level, 0), 1)*10 + 0.5)
		text = "Mic: " + strings.Repeat("|", n) + strings.Repeat(".", 10-n)
	}
	if text != v.lastMic {
		v.lastMic = text
		v.micLbl.Configure(Txt(text))
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}

var _ presenter.LiveFeedView = (*LiveFeedWindow)(nil)
