package view

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/soocke/sentinel-go/config"
	"github.com/soocke/sentinel-go/domain/capture"
	"github.com/soocke/sentinel-go/ui/presenter"
	"github.com/soocke/sentinel-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootHandlers receive the dashboard's user input.
type RootHandlers struct {
	ToggleCapture func()
	OpenLiveFeed  func()
	SelectCamera  func(id string)
	Exit          func()
}

// RootView composes the dashboard layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Session     SessionStats
	ConfigPanel ConfigPanel

	// Widgets
	StatusLabel  *TLabelWidget
	CaptureBtn   *ButtonWidget
	CameraSelect *TComboboxWidget
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout. cameras lists the selectable remote cameras.
func (rv *RootView) Build(cameras []string, h RootHandlers) {
	if rv == nil {
		return
	}
	// Row 0: capture status, session stats, buttons frame
	rv.StatusLabel = TLabel(Style(theme.StyleStatusLabel), Txt("Camera Off"), Width(28), Anchor("w"))
	Grid(rv.StatusLabel, Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	stats := Frame()
	Grid(stats, Row(1), Column(0), Columnspan(2), Sticky("w"), Padx("0.4m"))
	rv.Session = NewSessionStats(stats, 0, 0)

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(2), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	rv.CaptureBtn = Button(Txt("Start Camera"), Command(func() { call(h.ToggleCapture) }))
	Grid(rv.CaptureBtn, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	liveBtn := Button(Txt("Open Live Feed"), Command(func() { call(h.OpenLiveFeed) }))
	Grid(liveBtn, In(btnFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	if len(cameras) == 0 {
		cameras = []string{"<none>"}
	}
	rv.CameraSelect = TCombobox(Values(cameras), Width(20))
	Grid(rv.CameraSelect, In(btnFrame), Row(2), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	current := ""
	if rv.cfg != nil {
		current = rv.cfg.CameraID
	}
	rv.CameraSelect.Current(indexOf(cameras, current))
	Bind(rv.CameraSelect, "<<ComboboxSelected>>", Command(func() {
		if rv.CameraSelect == nil {
			return
		}
		idx, err := strconv.Atoi(rv.CameraSelect.Current(nil))
		if err != nil || idx < 0 || idx >= len(cameras) {
			if rv.logger != nil {
				rv.logger.Error("camera selection parse error", "error", err)
			}
			return
		}
		if h.SelectCamera != nil {
			h.SelectCamera(cameras[idx])
		}
	}))
	exitBtn := Button(Txt("Exit"), Command(func() { call(h.Exit) }))
	Grid(exitBtn, In(btnFrame), Row(3), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Config panel rows
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger)
	rv.ConfigPanel.Build(2)
}

// SelectCamera reflects an external camera change in the dropdown.
func (rv *RootView) SelectCamera(cameras []string, id string) {
	if rv != nil && rv.CameraSelect != nil {
		rv.CameraSelect.Current(indexOf(cameras, id))
	}
}

// SetCaptureButton flips the capture button label; settings are locked while
// a capture session is live.
func (rv *RootView) SetCaptureButton(streaming bool) {
	if rv == nil || rv.CaptureBtn == nil {
		return
	}
	if streaming {
		rv.CaptureBtn.Configure(Txt("Stop Camera"))
	} else {
		rv.CaptureBtn.Configure(Txt("Start Camera"))
	}
	if rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(!streaming)
	}
}

// SetCaptureStatus updates the status label text.
func (rv *RootView) SetCaptureStatus(text string) {
	if rv != nil && rv.StatusLabel != nil {
		on := text == "Camera On" || text == "Camera On (muted)"
		failed := text == capture.DeniedMessage
		rv.StatusLabel.Configure(Txt(text), Foreground(theme.StatusColor(on, failed)))
	}
}

// SetSession updates both session and total capture durations.
func (rv *RootView) SetSession(session, total time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSession(session)
	rv.Session.SetTotal(total)
}

var (
	_ presenter.CaptureView = (*RootView)(nil)
	_ presenter.SessionView = (*RootView)(nil)
)
