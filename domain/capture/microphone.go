package capture

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/google/uuid"
)

const micSampleRate = 44100

// Microphone is an audio track backed by a miniaudio capture device. It
// tracks the RMS level of the most recent buffer.
type Microphone struct {
	id     string
	logger *slog.Logger
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	level  atomic.Uint64

	stopOnce sync.Once
}

// OpenMicrophone initialises and starts the default capture device.
func OpenMicrophone(logger *slog.Logger) (*Microphone, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		if logger != nil {
			logger.Debug("malgo", "message", msg)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	m := &Microphone{id: uuid.NewString(), logger: logger, ctx: ctx}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.SampleRate = micSampleRate

	device, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{Data: m.onData})
	if err != nil {
		m.freeContext()
		return nil, fmt.Errorf("init capture device: %w", err)
	}
	m.device = device
	if err := device.Start(); err != nil {
		device.Uninit()
		m.freeContext()
		return nil, fmt.Errorf("start capture device: %w", err)
	}
	return m, nil
}

func (m *Microphone) onData(_, in []byte, frames uint32) {
	m.level.Store(math.Float64bits(rmsS16(in)))
}

// rmsS16 returns the normalised RMS of little-endian signed 16-bit samples.
func rmsS16(in []byte) float64 {
	n := len(in) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(in[2*i:]))) / 32768
		sum += s * s
	}
	return math.Sqrt(sum / float64(n))
}

func (m *Microphone) ID() string      { return m.id }
func (m *Microphone) Kind() TrackKind { return KindAudio }
func (m *Microphone) Level() float64  { return math.Float64frombits(m.level.Load()) }

func (m *Microphone) Stop() {
	m.stopOnce.Do(func() {
		if m.device != nil {
			if err := m.device.Stop(); err != nil && m.logger != nil {
				m.logger.Warn("capture.mic.stop", "error", err)
			}
			m.device.Uninit()
		}
		m.freeContext()
		m.level.Store(0)
		if m.logger != nil {
			m.logger.Debug("capture.track.stop", "track", m.id, "kind", KindAudio.String())
		}
	})
}

func (m *Microphone) freeContext() {
	if m.ctx == nil {
		return
	}
	_ = m.ctx.Uninit()
	m.ctx.Free()
	m.ctx = nil
}
