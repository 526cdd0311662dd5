package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/ghalamif/BattleTrack/internal/adapters/queue"
	"github.com/ghalamif/BattleTrack/internal/app/sched"
	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// InputTask polls the pad at a fixed rate and hands each reading to the
// decision task. The rumble of the latest decision rides along on every poll.
type InputTask struct {
	Device      ports.InputDevice
	Out         ports.Sender[domain.Reading]
	Feedback    *queue.Signal[domain.Feedback]
	LinkPulse   *queue.Signal[struct{}]
	Interval    time.Duration
	ReadTimeout time.Duration
	Ticker      sched.TickerFunc
	Obs         ports.Observability
}

func (t *InputTask) Run(ctx context.Context) error {
	newTicker := t.Ticker
	if newTicker == nil {
		newTicker = sched.RealTicker
	}
	ticker := newTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
		}
		if err := t.poll(ctx); err != nil {
			return ignoreShutdown(err)
		}
	}
}

// poll runs one input cycle.
func (t *InputTask) poll(ctx context.Context) error {
	sample, err := t.Device.Poll(ctx, t.Feedback.Peek())
	switch {
	case err == nil:
		t.Obs.IncCounter(ports.MetricPolls, 1)
		if t.LinkPulse != nil {
			t.LinkPulse.Raise(struct{}{})
		}
		return t.Out.Send(ctx, domain.Reading{Sample: sample})

	case errors.Is(err, ports.ErrUnexpectedDevice):
		t.Obs.IncCounter(ports.MetricUnexpectedDevice, 1)
		t.Obs.LogError("unexpected_controller", err)
		return nil

	case ctx.Err() != nil:
		return ctx.Err()

	default:
		t.Obs.IncCounter(ports.MetricInputReadFailures, 1)
		t.Obs.LogError("controller_read_failed", err)
		if err := t.Out.Send(ctx, domain.Reading{Lost: true}); err != nil {
			return err
		}
		return sched.Sleep(ctx, t.ReadTimeout)
	}
}

func ignoreShutdown(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ports.ErrChannelClosed) {
		return nil
	}
	return err
}
