// Package alarm plays a repeating two-tone siren on a synth context.
package alarm

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/sentinel-go/domain/loop"
	"github.com/soocke/sentinel-go/domain/synth"
)

// Period between burst starts.
const Period = 600 * time.Millisecond

// Burst envelope, in seconds relative to the burst start.
const (
	highHz        = 800
	lowHz         = 600
	stepAt        = 0.2
	returnAt      = 0.4
	startGain     = 0.5
	endGain       = 0.01
	burstDuration = 0.5
)

// ContextFactory opens a fresh audio context for one alarm run.
type ContextFactory func() (synth.Context, error)

// Siren owns at most one audio context and one repeat schedule. Methods
// must be called on the siren's loop.
type Siren struct {
	loop       loop.Loop
	newContext ContextFactory
	logger     *slog.Logger

	ctx    synth.Context
	timer  loop.Timer
	bursts uint64
}

func NewSiren(l loop.Loop, newContext ContextFactory, logger *slog.Logger) *Siren {
	return &Siren{loop: l, newContext: newContext, logger: logger}
}

// Start stops any running schedule, opens a new context, plays one burst
// immediately and then one every Period.
func (s *Siren) Start() error {
	s.Stop()
	ctx, err := s.newContext()
	if err != nil {
		if s.logger != nil {
			s.logger.Error("alarm.start", "error", err)
		}
		return fmt.Errorf("open audio context: %w", err)
	}
	s.ctx = ctx
	if s.logger != nil {
		s.logger.Info("alarm.start", "period", Period)
	}
	s.burst()
	s.timer = s.loop.Every(Period, s.burst)
	return nil
}

// Stop cancels the schedule and closes the context. It is a no-op when the
// siren is not active.
func (s *Siren) Stop() {
	if s.ctx == nil {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	ctx := s.ctx
	s.ctx = nil
	if err := ctx.Close(); err != nil && !errors.Is(err, synth.ErrClosed) && s.logger != nil {
		s.logger.Warn("alarm.close", "error", err)
	}
	if s.logger != nil {
		s.logger.Info("alarm.stop", "bursts", s.bursts)
	}
}

func (s *Siren) Active() bool { return s.ctx != nil }

// Bursts counts bursts played since construction.
func (s *Siren) Bursts() uint64 { return s.bursts }

func (s *Siren) burst() {
	if s.ctx == nil {
		return
	}
	Burst(s.ctx)
	s.bursts++
}

// Burst schedules one siren burst starting at the context's current time.
func Burst(ctx synth.Context) {
	t := ctx.CurrentTime()
	osc := ctx.NewOscillator()
	osc.SetFrequencyAt(highHz, t)
	osc.SetFrequencyAt(lowHz, t+stepAt)
	osc.SetFrequencyAt(highHz, t+returnAt)
	g := osc.Gain()
	g.SetValueAt(startGain, t)
	g.ExponentialRampTo(endGain, t+burstDuration)
	osc.Start(t)
	osc.Stop(t + burstDuration)
}
