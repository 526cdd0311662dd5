package pipeline

import (
	"context"

	"github.com/ghalamif/BattleTrack/internal/adapters/queue"
	"github.com/ghalamif/BattleTrack/internal/control"
	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// DriveTask is the only writer of the motor driver.
type DriveTask struct {
	Driver ports.MotorDriver
	In     ports.Receiver[domain.DriveCommand]
	Status ports.TrySender[domain.StatusReport]
	Alert  *queue.Signal[struct{}]
	Obs    ports.Observability

	cache   driveCache
	faulted bool
	active  bool
}

// driveCache remembers what the driver last accepted so repeats are not
// written again. A side or the standby line is unknown until written.
type driveCache struct {
	side         [2]domain.MotorCommand
	sideKnown    [2]bool
	standby      bool
	standbyKnown bool
}

func (c *driveCache) reset() { *c = driveCache{} }

func (t *DriveTask) Run(ctx context.Context) error {
	for {
		cmd, err := t.In.Receive(ctx)
		if err != nil {
			return ignoreShutdown(err)
		}
		t.handle(cmd)
	}
}

func (t *DriveTask) handle(cmd domain.DriveCommand) {
	switch cmd.Kind {
	case domain.DriveEnable:
		if t.faulted {
			t.faulted = false
			t.cache.reset()
			t.Obs.LogInfo("drive_fault_cleared")
		}
		if err := t.setStandby(true); err != nil {
			t.fail("standby on", err)
		}
		return
	case domain.DriveDisable:
		if err := t.setStandby(false); err != nil {
			t.fail("standby off", err)
		}
		return
	}

	if t.faulted && cmd.Kind != domain.DriveStop {
		// keep the engine informed in case the first report was dropped
		t.rep().report(domain.StatusReport{State: domain.StateEmergency, Fault: "drive faulted, " + cmd.String() + " ignored"})
		return
	}

	left, right, ok := control.Tracks(cmd)
	if !ok {
		return
	}
	if err := t.apply(domain.SideLeft, left); err != nil {
		t.fail("apply left "+left.String(), err)
		return
	}
	if err := t.apply(domain.SideRight, right); err != nil {
		t.fail("apply right "+right.String(), err)
		return
	}

	active := driven(left) || driven(right)
	if active != t.active {
		t.active = active
		if active {
			t.Obs.SetGauge(ports.MetricMotorActive, 1)
		} else {
			t.Obs.SetGauge(ports.MetricMotorActive, 0)
		}
		t.rep().report(domain.StatusReport{MotorActive: active})
	}
}

func (t *DriveTask) apply(side domain.Side, cmd domain.MotorCommand) error {
	if t.cache.sideKnown[side] && t.cache.side[side] == cmd {
		return nil
	}
	if err := t.Driver.Apply(side, cmd); err != nil {
		t.cache.sideKnown[side] = false
		return err
	}
	t.cache.side[side] = cmd
	t.cache.sideKnown[side] = true
	return nil
}

func (t *DriveTask) setStandby(enabled bool) error {
	if t.cache.standbyKnown && t.cache.standby == enabled {
		return nil
	}
	if err := t.Driver.SetStandby(enabled); err != nil {
		t.cache.standbyKnown = false
		return err
	}
	t.cache.standby = enabled
	t.cache.standbyKnown = true
	return nil
}

// fail parks the tracks as well as the driver still allows and stops
// forwarding movement until the next Enable.
func (t *DriveTask) fail(op string, err error) {
	t.faulted = true
	stop := domain.MotorCommand{Direction: domain.DirStop}
	_ = t.apply(domain.SideLeft, stop)
	_ = t.apply(domain.SideRight, stop)
	_ = t.setStandby(false)

	t.active = false
	t.Obs.SetGauge(ports.MetricMotorActive, 0)
	t.rep().fault(&ActuatorFault{Actuator: "drive", Op: op, Err: err})
}

func (t *DriveTask) rep() reporter {
	return reporter{source: "drive", out: t.Status, alert: t.Alert, obs: t.Obs}
}

func driven(c domain.MotorCommand) bool {
	return (c.Direction == domain.DirForward || c.Direction == domain.DirBackward) && c.Duty > 0
}
