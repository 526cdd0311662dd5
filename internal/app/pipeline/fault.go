package pipeline

import (
	"errors"
	"fmt"

	"github.com/ghalamif/BattleTrack/internal/adapters/queue"
	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// ActuatorFault is a failed apply on one actuator. It never stops the task;
// it is reported so the engine can force Emergency.
type ActuatorFault struct {
	Actuator string
	Op       string
	Err      error
}

func (f *ActuatorFault) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Actuator, f.Op, f.Err)
}

func (f *ActuatorFault) Unwrap() error { return f.Err }

// IsActuatorFault reports whether err carries an ActuatorFault.
func IsActuatorFault(err error) bool {
	var f *ActuatorFault
	return errors.As(err, &f)
}

// reporter sends best-effort status back to the decision task. A report
// asking for Emergency also raises alert so the decision task acts on it
// without waiting for the next reading.
type reporter struct {
	source string
	out    ports.TrySender[domain.StatusReport]
	alert  *queue.Signal[struct{}]
	obs    ports.Observability
}

func (r reporter) report(s domain.StatusReport) {
	if r.out == nil {
		return
	}
	s.Source = r.source
	if !r.out.TrySend(s) {
		r.obs.IncCounter(ports.MetricStatusDropped, 1)
		return
	}
	if s.Faulted() && r.alert != nil {
		r.alert.Raise(struct{}{})
	}
}

func (r reporter) fault(f *ActuatorFault) {
	r.obs.IncCounter(ports.MetricActuatorFaults, 1)
	r.obs.LogCritical("actuator_fault", f,
		ports.Field{Key: "actuator", Value: f.Actuator},
		ports.Field{Key: "op", Value: f.Op})
	r.report(domain.StatusReport{State: domain.StateEmergency, Fault: f.Error()})
}
