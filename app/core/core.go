// Package core runs the monitoring components on a single event loop and
// publishes their combined state for the UI thread.
package core

import (
	"context"
	"image"
	"log/slog"

	"golang.org/x/image/draw"

	"github.com/soocke/sentinel-go/domain/alarm"
	"github.com/soocke/sentinel-go/domain/capture"
	"github.com/soocke/sentinel-go/domain/frame"
	"github.com/soocke/sentinel-go/domain/loop"
	"github.com/soocke/sentinel-go/domain/snapshot"
	"github.com/soocke/sentinel-go/ui/model"
)

// Deps are the device and network seams of the core.
type Deps struct {
	Devices     capture.MediaDevices
	Constraints capture.Constraints
	Source      snapshot.Source
	Poll        snapshot.Options
	Audio       alarm.ContextFactory
	Registry    *frame.Registry
}

// Core owns the capture manager, the snapshot engine and the siren. Intent
// methods may be called from any goroutine; they post to the loop.
type Core struct {
	loop     loop.Loop
	manager  *capture.Manager
	engine   *snapshot.Engine
	siren    *alarm.Siren
	registry *frame.Registry
	stream   *model.StreamModel
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	feedID  uint64
	feedImg *image.RGBA
}

func New(l loop.Loop, deps Deps, logger *slog.Logger) *Core {
	if deps.Registry == nil {
		deps.Registry = frame.NewRegistry(logger)
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Core{
		loop:     l,
		manager:  capture.NewManager(l, deps.Devices, deps.Constraints, logger),
		engine:   snapshot.NewEngine(l, deps.Source, deps.Registry, logger, deps.Poll),
		siren:    alarm.NewSiren(l, deps.Audio, logger),
		registry: deps.Registry,
		stream:   model.NewStreamModel(),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	c.manager.Subscribe(func(capture.State) { c.publish() })
	c.engine.Subscribe(func(snapshot.Status) { c.publish() })
	c.publish()
	return c
}

// Stream is the published state.
func (c *Core) Stream() *model.StreamModel { return c.stream }

func (c *Core) Registry() *frame.Registry { return c.registry }

// FeedStats is safe to call from any goroutine.
func (c *Core) FeedStats() snapshot.Stats { return c.engine.Stats() }

func (c *Core) StartCapture() { c.loop.Post(func() { c.manager.StartCapture(c.ctx) }) }

func (c *Core) StopCapture() { c.loop.Post(c.manager.StopCapture) }

func (c *Core) ToggleMute() { c.loop.Post(c.manager.ToggleMute) }

func (c *Core) Attach(s capture.Surface) {
	c.loop.Post(func() {
		if c.manager.Attach(s) {
			c.publish()
		}
	})
}

func (c *Core) Detach(s capture.Surface) {
	c.loop.Post(func() {
		c.manager.Detach(s)
		c.publish()
	})
}

func (c *Core) StartFeed(cameraID string) { c.loop.Post(func() { c.engine.Start(cameraID) }) }

func (c *Core) StopFeed() { c.loop.Post(c.engine.Stop) }

func (c *Core) RetryFeed() { c.loop.Post(c.engine.Retry) }

func (c *Core) StartAlarm() {
	c.loop.Post(func() {
		if err := c.siren.Start(); err != nil && c.logger != nil {
			c.logger.Warn("core.alarm", "error", err)
		}
		c.publish()
	})
}

func (c *Core) StopAlarm() {
	c.loop.Post(func() {
		c.siren.Stop()
		c.publish()
	})
}

// Shutdown stops the feed, the siren and the capture session and cancels
// outstanding device requests. It must run on the loop.
func (c *Core) Shutdown() {
	c.engine.Stop()
	c.siren.Stop()
	c.manager.StopCapture()
	c.cancel()
	if c.logger != nil {
		st := c.registry.Stats()
		c.logger.Info("core.shutdown", "frames_allocated", st.Allocated, "frames_outstanding", st.Outstanding)
	}
}

func (c *Core) publish() {
	c.stream.Update(c.loop.Now(), func(s *model.StreamSnapshot) {
		s.Capture = c.manager.State()
		s.Session = c.manager.Session()
		s.Feed = c.feedView()
		s.AlarmActive = c.siren.Active()
	})
}

// feedView copies the displayed raster when it changes; the engine recycles
// rasters once superseded.
func (c *Core) feedView() model.FeedView {
	st := c.engine.Status()
	v := model.FeedView{State: st.State, CameraID: st.CameraID, Retry: st.RetryCount, Message: st.Message}
	if st.Frame == nil || st.Frame.Raster == nil {
		c.feedID, c.feedImg = 0, nil
		return v
	}
	if st.Frame.ID != c.feedID {
		src := st.Frame.Raster
		img := image.NewRGBA(image.Rect(0, 0, src.Rect.Dx(), src.Rect.Dy()))
		draw.Copy(img, image.Point{}, src, src.Rect, draw.Src, nil)
		c.feedID, c.feedImg = st.Frame.ID, img
	}
	v.Frame, v.FrameSeq = c.feedImg, c.feedID
	return v
}
