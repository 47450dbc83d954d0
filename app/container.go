package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/soocke/sentinel-go/app/core"
	"github.com/soocke/sentinel-go/config"
	"github.com/soocke/sentinel-go/domain/capture"
	"github.com/soocke/sentinel-go/domain/loop"
	"github.com/soocke/sentinel-go/domain/snapshot"
	"github.com/soocke/sentinel-go/domain/synth"
	"github.com/soocke/sentinel-go/ui/model"
	"github.com/soocke/sentinel-go/ui/presenter"
	"github.com/soocke/sentinel-go/ui/view"
)

// AppContainer assembles the core, models, presenters and views.
type AppContainer struct {
	Config *config.Config
	Logger *slog.Logger

	EventLoop *loop.EventLoop
	Core      *core.Core

	Session *model.SessionModel
	Route   *model.RouteModel
	Overlay *model.OverlayModel
	Pointer *presenter.PointerHub

	RootView       *view.RootView
	FloatingPlayer *view.FloatingPlayer
	LiveFeedWindow *view.LiveFeedWindow
	renderers      []*presenter.AsyncRenderer

	// Presenters
	SessionPresenter  *presenter.SessionPresenter
	CapturePresenter  *presenter.CapturePresenter
	OverlayPresenter  *presenter.OverlayPresenter
	LiveFeedPresenter *presenter.LiveFeedPresenter
	Loop              *presenter.Loop
}

var _ presenter.Controller = (*core.Core)(nil)

// openSpeaker opens the default playback device for one alarm run.
func openSpeaker(logger *slog.Logger) func() (synth.Context, error) {
	return func() (synth.Context, error) {
		ctx, err := synth.NewDeviceContext(logger)
		if err != nil {
			return nil, err
		}
		return ctx, nil
	}
}

// BuildContainer constructs all components. Views are created but not built;
// no Tk widget exists until the app starts.
func BuildContainer(cfg *config.Config, logger *slog.Logger, cfgPath string) *AppContainer {
	c := &AppContainer{Config: cfg, Logger: logger}
	c.EventLoop = loop.New(logger)
	c.Core = core.New(c.EventLoop, core.Deps{
		Devices: capture.SystemDevices{Logger: logger},
		Constraints: capture.Constraints{
			Width:      cfg.CaptureWidth,
			Height:     cfg.CaptureHeight,
			FrameRate:  cfg.CaptureFPS,
			FacingMode: "user",
			Audio:      cfg.Audio,
		},
		Source: snapshot.NewHTTPSource(cfg.APIURL, &http.Client{}),
		Poll: snapshot.Options{
			Interval:   time.Duration(cfg.PollIntervalMs) * time.Millisecond,
			MaxRetries: cfg.MaxRetries,
			Timeout:    time.Duration(cfg.RequestTimeoutMs) * time.Millisecond,
		},
		Audio: openSpeaker(logger),
	}, logger)
	stream := c.Core.Stream()

	c.Session = model.NewSessionModel()
	c.Route = model.NewRouteModel()
	c.Overlay = model.NewOverlayModel()
	c.Pointer = presenter.NewPointerHub()

	// Views
	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	c.FloatingPlayer = view.NewFloatingPlayer(c.Pointer, logger)

	overlayR := presenter.NewAsyncRenderer(logger)
	feedR := presenter.NewAsyncRenderer(logger)
	localR := presenter.NewAsyncRenderer(logger)
	c.renderers = []*presenter.AsyncRenderer{overlayR, feedR, localR}

	// Presenters
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, stream, c.RootView)
	c.CapturePresenter = presenter.NewCapturePresenter(c.Core, stream, c.RootView)
	c.OverlayPresenter = presenter.NewOverlayPresenter(c.Core, stream, c.Route, c.Overlay, c.Pointer, c.FloatingPlayer, overlayR, logger)
	c.FloatingPlayer.SetHandlers(view.FloatingPlayerHandlers{
		PointerDown: c.OverlayPresenter.PointerDown,
		ToggleMute:  c.OverlayPresenter.ToggleMute,
		Stop:        c.OverlayPresenter.StopCapture,
		Expand:      c.OverlayPresenter.OpenFullSurface,
	})
	c.LiveFeedPresenter = presenter.NewLiveFeedPresenter(c.Core, stream, c.Route, nil, c.Session, cfg.CameraID, feedR, localR, logger)
	live := c.LiveFeedPresenter
	c.LiveFeedWindow = view.NewLiveFeedWindow(cfg.Cameras, view.LiveFeedHandlers{
		ToggleCapture: live.ToggleCapture,
		ToggleMute:    live.ToggleMute,
		ToggleAlarm:   live.ToggleAlarm,
		ToggleNight:   live.ToggleNight,
		Fullscreen:    live.ToggleFullscreen,
		Retry:         live.Retry,
		SelectCamera:  c.SelectCamera,
		Minimize:      live.Minimize,
	}, logger)
	c.LiveFeedPresenter.SetView(c.LiveFeedWindow)

	c.Loop = presenter.NewLoop(c.SessionPresenter, c.CapturePresenter, c.OverlayPresenter, c.LiveFeedPresenter, nil)
	c.Loop.Viewport = view.MainViewport
	return c
}

// SelectCamera switches the remote feed and remembers the choice.
func (c *AppContainer) SelectCamera(id string) {
	if id == "" {
		return
	}
	c.Config.CameraID = id
	c.LiveFeedPresenter.SelectCamera(id)
	c.RootView.SelectCamera(c.Config.Cameras, id)
}

// CloseRenderers stops the render workers.
func (c *AppContainer) CloseRenderers() {
	for _, r := range c.renderers {
		r.Close()
	}
	c.renderers = nil
}
