package pipeline

import (
	"context"
	"time"

	"github.com/ghalamif/BattleTrack/internal/adapters/queue"
	"github.com/ghalamif/BattleTrack/internal/app/sched"
	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// Blink holds the indicator timing.
type Blink struct {
	Fast   time.Duration
	Slow   time.Duration
	Steady time.Duration
}

func (b Blink) period(p domain.IndicatorPattern) time.Duration {
	switch p {
	case domain.IndicatorFastBlink:
		return b.Fast
	case domain.IndicatorSlowBlink:
		return b.Slow
	default:
		return b.Steady
	}
}

// IndicatorTask drives the state LED. Off and Solid hold a level, the blink
// patterns toggle it once per period.
type IndicatorTask struct {
	LED    ports.Indicator
	In     ports.ChanReceiver[domain.IndicatorPattern]
	Status ports.TrySender[domain.StatusReport]
	Alert  *queue.Signal[struct{}]
	Blink  Blink
	Ticker sched.TickerFunc
	Obs    ports.Observability

	pattern domain.IndicatorPattern
	level   bool
}

func (t *IndicatorTask) Run(ctx context.Context) error {
	newTicker := t.Ticker
	if newTicker == nil {
		newTicker = sched.RealTicker
	}

	t.pattern = domain.IndicatorOff
	t.set(false)
	ticker := newTicker(t.Blink.period(t.pattern))
	defer func() { ticker.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case p := <-t.In.C():
			if p == t.pattern {
				continue
			}
			t.pattern = p
			// solid starts lit, the blinks start dark and light on the first tick
			t.set(p == domain.IndicatorSolid)
			ticker.Stop()
			ticker = newTicker(t.Blink.period(p))
		case <-ticker.C():
			if t.pattern.Blinking() {
				t.set(!t.level)
			} else {
				t.set(t.pattern == domain.IndicatorSolid)
			}
		}
	}
}

func (t *IndicatorTask) set(on bool) {
	if err := t.LED.Set(on); err != nil {
		reporter{source: "indicator", out: t.Status, alert: t.Alert, obs: t.Obs}.fault(
			&ActuatorFault{Actuator: "indicator", Op: "set " + t.pattern.String(), Err: err})
		return
	}
	t.level = on
}

// LinkLEDTask flashes the link LED once per good poll.
type LinkLEDTask struct {
	LED   ports.Indicator
	Pulse *queue.Signal[struct{}]
	Width time.Duration
	Obs   ports.Observability
}

func (t *LinkLEDTask) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.Pulse.Ready():
		}
		if _, ok := t.Pulse.Take(); !ok {
			continue
		}

		t.set(true)
		err := sched.Sleep(ctx, t.Width)
		t.set(false)
		if err != nil {
			return nil
		}
	}
}

func (t *LinkLEDTask) set(on bool) {
	if err := t.LED.Set(on); err != nil {
		t.Obs.IncCounter(ports.MetricActuatorFaults, 1)
		t.Obs.LogError("link_led_failed", err)
	}
}
