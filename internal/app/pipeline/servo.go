package pipeline

import (
	"context"
	"fmt"

	"github.com/ghalamif/BattleTrack/internal/adapters/queue"
	"github.com/ghalamif/BattleTrack/internal/control"
	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// ServoTask is the only writer of the aiming servo.
type ServoTask struct {
	Driver  ports.ServoDriver
	In      ports.Receiver[domain.ServoCommand]
	Status  ports.TrySender[domain.StatusReport]
	Alert   *queue.Signal[struct{}]
	MinDuty float64
	MaxDuty float64
	Obs     ports.Observability

	angle uint8
	known bool
}

func (t *ServoTask) Run(ctx context.Context) error {
	for {
		cmd, err := t.In.Receive(ctx)
		if err != nil {
			return ignoreShutdown(err)
		}
		t.handle(cmd)
	}
}

func (t *ServoTask) handle(cmd domain.ServoCommand) {
	angle := cmd.Angle
	if angle > domain.MaxServoAngle {
		angle = domain.MaxServoAngle
	}
	if t.known && t.angle == angle {
		return
	}

	duty := control.ServoDuty(angle, t.MinDuty, t.MaxDuty)
	if err := t.Driver.SetDuty(duty); err != nil {
		t.known = false
		t.rep().fault(&ActuatorFault{Actuator: "servo", Op: fmt.Sprintf("set angle %d", angle), Err: err})
		return
	}

	t.angle, t.known = angle, true
	t.Obs.SetGauge(ports.MetricServoAngle, float64(angle))
	t.rep().report(domain.StatusReport{ServoPosition: angle})
}

func (t *ServoTask) rep() reporter {
	return reporter{source: "servo", out: t.Status, alert: t.Alert, obs: t.Obs}
}
