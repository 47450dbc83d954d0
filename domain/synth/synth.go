// Package synth is a small audio-generation graph: sine oscillators with
// scheduled frequency steps and gain envelopes, mixed into mono float32
// samples. Times are seconds on the owning context's clock.
package synth

import (
	"errors"
	"math"
	"sync"
)

// ErrClosed is returned when closing an already closed context.
var ErrClosed = errors.New("synth: context closed")

// Context owns a clock and every oscillator created from it.
type Context interface {
	CurrentTime() float64
	NewOscillator() Oscillator
	Close() error
}

// Oscillator is a scheduled sine source routed through its own gain stage.
type Oscillator interface {
	SetFrequencyAt(hz, at float64)
	Gain() Gain
	Start(at float64)
	Stop(at float64)
}

// Gain is the envelope applied to one oscillator.
type Gain interface {
	SetValueAt(v, at float64)
	ExponentialRampTo(v, at float64)
}

const (
	defaultFrequency = 440
	defaultGain      = 1
	// exponential ramps cannot cross or touch zero
	minRampValue = 1e-6
)

type eventKind int

const (
	eventSet eventKind = iota
	eventExpRamp
)

type paramEvent struct {
	kind  eventKind
	value float64
	at    float64
}

// param is an automatable value. Events are kept in time order; an event
// inserted at the same time as an existing one goes after it.
type param struct {
	initial float64
	events  []paramEvent
}

func (p *param) add(e paramEvent) {
	i := len(p.events)
	for i > 0 && p.events[i-1].at > e.at {
		i--
	}
	p.events = append(p.events, paramEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

func (p *param) valueAt(t float64) float64 {
	v, vt := p.initial, 0.0
	for _, e := range p.events {
		if e.kind == eventSet {
			if e.at > t {
				return v
			}
			v, vt = e.value, e.at
			continue
		}
		// exponential ramp from the previous event value to e.value
		if e.at <= t {
			v, vt = e.value, e.at
			continue
		}
		from, to := clampRamp(v), clampRamp(e.value)
		if e.at <= vt {
			return to
		}
		frac := (t - vt) / (e.at - vt)
		return from * math.Pow(to/from, frac)
	}
	return v
}

func clampRamp(v float64) float64 {
	if math.Abs(v) < minRampValue {
		if v < 0 {
			return -minRampValue
		}
		return minRampValue
	}
	return v
}

type voice struct {
	freq    param
	gain    param
	start   float64
	stop    float64
	started bool
	stopped bool
	phase   float64
}

func (v *voice) finishedAt(t float64) bool {
	return v.stopped && t >= v.stop
}

// mixer renders every voice of a context. It is shared between the control
// side and the render side, so all access is under mu.
type mixer struct {
	mu         sync.Mutex
	sampleRate float64
	voices     []*voice
}

func newMixer(sampleRate int) *mixer {
	return &mixer{sampleRate: float64(sampleRate)}
}

// render fills out with the mix for frames starting at frame index first.
func (m *mixer) render(out []float32, first int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range out {
		t := float64(first+int64(i)) / m.sampleRate
		var sum float64
		for _, v := range m.voices {
			if !v.started || t < v.start || v.finishedAt(t) {
				continue
			}
			sum += math.Sin(v.phase) * v.gain.valueAt(t)
			v.phase += 2 * math.Pi * v.freq.valueAt(t) / m.sampleRate
			if v.phase > 2*math.Pi {
				v.phase -= 2 * math.Pi
			}
		}
		out[i] = float32(clamp(sum, -1, 1))
	}
	end := float64(first+int64(len(out))) / m.sampleRate
	live := m.voices[:0]
	for _, v := range m.voices {
		if !v.finishedAt(end) {
			live = append(live, v)
		}
	}
	clear(m.voices[len(live):])
	m.voices = live
}

func (m *mixer) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

func (m *mixer) newOscillator() *oscillator {
	v := &voice{
		freq: param{initial: defaultFrequency},
		gain: param{initial: defaultGain},
	}
	m.mu.Lock()
	m.voices = append(m.voices, v)
	m.mu.Unlock()
	return &oscillator{m: m, v: v}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type oscillator struct {
	m *mixer
	v *voice
}

func (o *oscillator) SetFrequencyAt(hz, at float64) {
	o.m.mu.Lock()
	o.v.freq.add(paramEvent{kind: eventSet, value: hz, at: at})
	o.m.mu.Unlock()
}

func (o *oscillator) Gain() Gain { return gainStage{o} }

func (o *oscillator) Start(at float64) {
	o.m.mu.Lock()
	if !o.v.started {
		o.v.started, o.v.start = true, at
	}
	o.m.mu.Unlock()
}

func (o *oscillator) Stop(at float64) {
	o.m.mu.Lock()
	o.v.stopped, o.v.stop = true, at
	o.m.mu.Unlock()
}

type gainStage struct{ o *oscillator }

func (g gainStage) SetValueAt(v, at float64) {
	g.o.m.mu.Lock()
	g.o.v.gain.add(paramEvent{kind: eventSet, value: v, at: at})
	g.o.m.mu.Unlock()
}

func (g gainStage) ExponentialRampTo(v, at float64) {
	g.o.m.mu.Lock()
	g.o.v.gain.add(paramEvent{kind: eventExpRamp, value: v, at: at})
	g.o.m.mu.Unlock()
}
