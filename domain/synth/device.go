package synth

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

const deviceSampleRate = 48000

// DeviceContext plays the mix on the default output device.
type DeviceContext struct {
	mix    *mixer
	logger *slog.Logger
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	frames atomic.Int64
	buf    []float32

	closeOnce sync.Once
	closed    atomic.Bool
}

// NewDeviceContext opens and starts a mono float32 playback device.
func NewDeviceContext(logger *slog.Logger) (*DeviceContext, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		if logger != nil {
			logger.Debug("malgo", "message", msg)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	c := &DeviceContext{mix: newMixer(deviceSampleRate), logger: logger, ctx: ctx}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = 1
	cfg.SampleRate = deviceSampleRate

	device, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{Data: c.onData})
	if err != nil {
		c.freeContext()
		return nil, fmt.Errorf("init playback device: %w", err)
	}
	c.device = device
	if err := device.Start(); err != nil {
		device.Uninit()
		c.freeContext()
		return nil, fmt.Errorf("start playback device: %w", err)
	}
	return c, nil
}

func (c *DeviceContext) onData(out, _ []byte, frames uint32) {
	n := int(frames)
	if cap(c.buf) < n {
		c.buf = make([]float32, n)
	}
	buf := c.buf[:n]
	c.mix.render(buf, c.frames.Load())
	c.frames.Add(int64(n))
	for i, s := range buf {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(s))
	}
}

func (c *DeviceContext) CurrentTime() float64 {
	return float64(c.frames.Load()) / deviceSampleRate
}

func (c *DeviceContext) NewOscillator() Oscillator { return c.mix.newOscillator() }

// Closed reports whether Close has run.
func (c *DeviceContext) Closed() bool { return c.closed.Load() }

func (c *DeviceContext) Close() error {
	err := ErrClosed
	c.closeOnce.Do(func() {
		err = nil
		c.closed.Store(true)
		if stopErr := c.device.Stop(); stopErr != nil {
			err = fmt.Errorf("stop playback device: %w", stopErr)
		}
		c.device.Uninit()
		c.freeContext()
	})
	return err
}

func (c *DeviceContext) freeContext() {
	if c.ctx == nil {
		return
	}
	if err := c.ctx.Uninit(); err != nil && c.logger != nil {
		c.logger.Warn("synth.context.uninit", "error", err)
	}
	c.ctx.Free()
	c.ctx = nil
}
