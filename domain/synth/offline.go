package synth

import (
	"sync"
	"time"
)

// OfflineContext renders on demand. Its clock only advances through Render.
type OfflineContext struct {
	mix *mixer

	mu     sync.Mutex
	frames int64
	closed bool
}

func NewOfflineContext(sampleRate int) *OfflineContext {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	return &OfflineContext{mix: newMixer(sampleRate)}
}

func (c *OfflineContext) SampleRate() int { return int(c.mix.sampleRate) }

func (c *OfflineContext) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.frames) / c.mix.sampleRate
}

func (c *OfflineContext) NewOscillator() Oscillator { return c.mix.newOscillator() }

// Render produces the next d of audio. A closed context renders silence.
func (c *OfflineContext) Render(d time.Duration) []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := int(d.Seconds() * c.mix.sampleRate)
	out := make([]float32, n)
	if !c.closed {
		c.mix.render(out, c.frames)
	}
	c.frames += int64(n)
	return out
}

// Voices reports oscillators that have not finished playing.
func (c *OfflineContext) Voices() int { return c.mix.active() }

func (c *OfflineContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	return nil
}

func (c *OfflineContext) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
