package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ghalamif/BattleTrack/internal/adapters/queue"
	"github.com/ghalamif/BattleTrack/internal/app/engine"
	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// DecisionTask owns the engine. Per reading it folds in pending emergency
// requests and actuator status, steps the engine and forwards the result.
// Emergency requests and actuator alerts are also applied between readings,
// so a stalled or mismatched pad cannot hold them back.
type DecisionTask struct {
	Engine    *engine.Engine
	In        ports.ChanReceiver[domain.Reading]
	Drive     ports.Sender[domain.DriveCommand]
	Servo     ports.Sender[domain.ServoCommand]
	Indicator ports.Sender[domain.IndicatorPattern]
	Status    []ports.Receiver[domain.StatusReport]
	Emergency *queue.Signal[string]
	Alert     *queue.Signal[struct{}]
	Feedback  *queue.Signal[domain.Feedback]
	Journal   ports.Journal
	Obs       ports.Observability

	state atomic.Uint32
}

// State is safe to call from any goroutine.
func (t *DecisionTask) State() domain.BotState {
	return domain.BotState(t.state.Load())
}

func (t *DecisionTask) Run(ctx context.Context) error {
	if err := t.dispatch(ctx, t.Engine.Boot()); err != nil {
		return ignoreShutdown(err)
	}

	for {
		var err error
		select {
		case <-ctx.Done():
			return nil
		case r := <-t.In.C():
			err = t.dispatch(ctx, t.decide(r))
		case <-ready(t.Emergency):
			err = t.escalate(ctx)
		case <-ready(t.Alert):
			err = t.escalate(ctx)
		case <-t.In.Done():
			r, rerr := t.In.Receive(ctx)
			if rerr != nil {
				return ignoreShutdown(rerr)
			}
			err = t.dispatch(ctx, t.decide(r))
		}
		if err != nil {
			return ignoreShutdown(err)
		}
	}
}

// escalate applies a pending emergency request or actuator fault without a
// reading.
func (t *DecisionTask) escalate(ctx context.Context) error {
	t.collect()
	d, ok := t.Engine.Escalate()
	if !ok {
		return nil
	}
	return t.dispatch(ctx, d)
}

func (t *DecisionTask) decide(r domain.Reading) engine.Decision {
	t.collect()

	start := time.Now()
	var d engine.Decision
	if r.Lost {
		d = t.Engine.InputLost()
	} else {
		d = t.Engine.Step(r.Sample)
	}
	t.Obs.ObserveLatency(ports.MetricDecisionLatency, time.Since(start).Seconds())
	return d
}

// collect folds external emergency requests and actuator status into the
// engine.
func (t *DecisionTask) collect() {
	if t.Emergency != nil {
		if reason, ok := t.Emergency.Take(); ok {
			t.Engine.SignalEmergency(reason)
		}
	}
	t.drainStatus()
}

func (t *DecisionTask) drainStatus() {
	for _, ch := range t.Status {
		for {
			rep, ok := ch.TryReceive()
			if !ok {
				break
			}
			if t.Engine.Reconcile(rep) {
				t.Obs.LogError("actuator_reported_fault", nil,
					ports.Field{Key: "source", Value: rep.Source},
					ports.Field{Key: "fault", Value: rep.Fault})
			}
		}
	}
}

func (t *DecisionTask) dispatch(ctx context.Context, d engine.Decision) error {
	t.state.Store(uint32(d.State))
	if d.Transitioned() {
		t.Obs.IncCounter(ports.MetricTransitions, 1)
		fields := []ports.Field{
			{Key: "from", Value: d.Previous.String()},
			{Key: "to", Value: d.State.String()},
		}
		if d.Reason != "" {
			fields = append(fields, ports.Field{Key: "reason", Value: d.Reason})
		}
		t.Obs.LogInfo("state_transition", fields...)
		t.record(d)
	}
	t.Obs.SetGauge(ports.MetricState, float64(d.State))

	if t.Feedback != nil {
		t.Feedback.Raise(d.Feedback)
	}

	for _, cmd := range d.Drive {
		if err := t.Drive.Send(ctx, cmd); err != nil {
			return err
		}
		t.Obs.IncCounter(ports.MetricCommandsSent, 1)
	}
	if d.HasServo {
		if err := t.Servo.Send(ctx, d.Servo); err != nil {
			return err
		}
		t.Obs.IncCounter(ports.MetricCommandsSent, 1)
	}
	if d.HasIndicator {
		if err := t.Indicator.Send(ctx, d.Indicator); err != nil {
			return err
		}
		t.Obs.IncCounter(ports.MetricCommandsSent, 1)
	}
	return nil
}

// record journals a transition. A failing journal never holds up control.
func (t *DecisionTask) record(d engine.Decision) {
	if t.Journal == nil {
		return
	}
	ev := domain.Event{At: time.Now(), From: d.Previous, To: d.State, Reason: d.Reason}
	if _, err := t.Journal.Append(ev); err != nil {
		t.Obs.IncCounter(ports.MetricJournalErrors, 1)
		t.Obs.LogError("journal_append_failed", err, ports.Field{Key: "to", Value: d.State.String()})
	}
}

func ready[T any](s *queue.Signal[T]) <-chan struct{} {
	if s == nil {
		return nil
	}
	return s.Ready()
}
