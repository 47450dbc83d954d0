package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/sentinel-go/config"
	"github.com/soocke/sentinel-go/debug"
	"github.com/soocke/sentinel-go/ui/model"
	"github.com/soocke/sentinel-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const (
	tick            = 50 * time.Millisecond
	shutdownTimeout = 2 * time.Second
)

type app struct {
	c       *AppContainer
	title   string
	width   int
	height  int
	afterID string
	cancel  context.CancelFunc
	closed  bool
}

func NewApp(title string, width, height int, cfg *config.Config, cfgPath string, logger *slog.Logger) *app {
	return &app{c: BuildContainer(cfg, logger, cfgPath), title: title, width: width, height: height}
}

func (a *app) Start() {
	c := a.c
	theme.InitStyles()
	App.WmTitle(a.title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", a.width, a.height))

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go c.EventLoop.Run(ctx)
	if c.Config.Debug {
		debug.StartResourceLogger(ctx, 5*time.Second, c.Logger, func() []slog.Attr {
			fs := c.Core.FeedStats()
			return []slog.Attr{
				slog.Int64("frames_outstanding", fs.Outstanding),
				slog.Uint64("feed_requests", fs.Requests),
				slog.Uint64("feed_failures", fs.Failures),
			}
		})
	}

	c.RootView.Build(c.Config.Cameras, viewHandlers(a))
	c.Route.OnChange(a.routeChanged)
	c.OverlayPresenter.Mount()

	c.Loop.Schedule = a.scheduleUpdate
	a.scheduleUpdate()
	App.Wait()
}

// routeChanged opens the live feed window while its route is current.
func (a *app) routeChanged(prev, next string) {
	c := a.c
	if prev == model.RouteLiveFeed {
		c.LiveFeedPresenter.Hide()
		c.LiveFeedWindow.Close()
	}
	if next == model.RouteLiveFeed {
		c.LiveFeedWindow.Open(c.LiveFeedPresenter.CameraID())
		c.LiveFeedPresenter.Show()
	}
	c.Logger.Debug("route", "from", prev, "to", next)
}

func (a *app) scheduleUpdate() {
	if a.closed {
		return
	}
	// TclAfter keeps the update on Tk's event loop thread.
	a.afterID = TclAfter(tick, a.c.Loop.Tick)
}

func (a *app) exitHandler() {
	if a.closed {
		return
	}
	a.closed = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	c := a.c
	c.OverlayPresenter.Unmount()
	if c.Route.Current() == model.RouteLiveFeed {
		c.LiveFeedPresenter.Hide()
		c.LiveFeedWindow.Close()
	}
	c.CloseRenderers()

	done := make(chan struct{})
	c.EventLoop.Post(func() {
		c.Core.Shutdown()
		close(done)
	})
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		c.Logger.Warn("shutdown timed out")
	}
	if a.cancel != nil {
		a.cancel()
	}
	Destroy(App)
}
