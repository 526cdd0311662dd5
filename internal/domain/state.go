package domain

// BotState is the operating mode owned by the decision engine.
type BotState uint8

const (
	StateIdle BotState = iota
	StateArmed
	StateCombat
	StateEmergency
)

// Active reports whether the state forwards pilot movement to the actuators.
func (s BotState) Active() bool {
	return s == StateArmed || s == StateCombat
}

func (s BotState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateCombat:
		return "combat"
	case StateEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// StatusReport is best-effort telemetry from one actuation task back to the
// decision side. A healthy report leaves State at StateIdle; a task that lost
// control of its output reports StateEmergency.
type StatusReport struct {
	Source        string
	State         BotState
	MotorActive   bool
	ServoPosition uint8
	Fault         string
}

// Faulted reports whether the sender has lost control of its output.
func (r StatusReport) Faulted() bool {
	return r.State == StateEmergency
}
