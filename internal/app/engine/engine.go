// Package engine is the single authority over the bot's operating mode. It
// turns one controller sample at a time into the commands each actuation
// task should apply.
package engine

import (
	"github.com/ghalamif/BattleTrack/internal/control"
	"github.com/ghalamif/BattleTrack/internal/domain"
)

// Tuning holds the thresholds the engine needs from configuration.
type Tuning struct {
	DeadZoneLow    uint8
	DeadZoneHigh   uint8
	SpinThreshold  int8
	CombatPressure uint8
	Feedback       control.FeedbackTuning
}

// Decision is everything one engine step asks of the actuators, in the order
// it must be sent.
type Decision struct {
	Previous domain.BotState
	State    domain.BotState

	Drive []domain.DriveCommand

	Servo    domain.ServoCommand
	HasServo bool

	Indicator    domain.IndicatorPattern
	HasIndicator bool

	// Feedback goes out with the next poll.
	Feedback domain.Feedback

	// Reason is set when the step entered Emergency.
	Reason string
}

// Transitioned reports whether the step changed the operating mode.
func (d Decision) Transitioned() bool { return d.Previous != d.State }

type Engine struct {
	tuning Tuning
	state  domain.BotState
	// last valid button state, for press edges
	prevButtons domain.ButtonMask

	emergencyPending bool
	emergencyReason  string
}

func New(t Tuning) *Engine {
	return &Engine{tuning: t, state: domain.StateIdle}
}

func (e *Engine) State() domain.BotState { return e.state }

// Boot is the decision issued once before the first poll: tracks stopped,
// driver enabled, indicator off.
func (e *Engine) Boot() Decision {
	d := Decision{Previous: e.state, State: e.state}
	d.Drive = []domain.DriveCommand{domain.StopCommand(), domain.EnableCommand()}
	d.setIndicator(domain.IndicatorFor(e.state))
	return d
}

// SignalEmergency requests Emergency; it takes effect on the next step.
func (e *Engine) SignalEmergency(reason string) {
	if e.emergencyPending {
		return
	}
	e.emergencyPending = true
	e.emergencyReason = reason
}

// Reconcile folds an actuation-side report into the engine. Only a faulted
// report changes anything: it forces Emergency. It returns true when it did.
func (e *Engine) Reconcile(r domain.StatusReport) bool {
	if !r.Faulted() || e.state == domain.StateEmergency {
		return false
	}
	reason := "actuator fault: " + r.Source
	if r.Fault != "" {
		reason += ": " + r.Fault
	}
	e.SignalEmergency(reason)
	return true
}

// Escalate applies a pending emergency request at once, without waiting for
// a sample. It reports false when nothing is pending.
func (e *Engine) Escalate() (Decision, bool) {
	if !e.emergencyPending {
		return Decision{}, false
	}
	d := Decision{Previous: e.state, State: e.state}
	e.enterEmergency(&d)
	return d, true
}

// InputLost handles a cycle without usable input. Tracks stop, rumble is
// zeroed and no input-driven transition happens. A pending emergency still
// applies.
func (e *Engine) InputLost() Decision {
	d := Decision{Previous: e.state, State: e.state}
	if e.emergencyPending {
		e.enterEmergency(&d)
		return d
	}
	d.Drive = append(d.Drive, domain.StopCommand())
	if e.state == domain.StateEmergency {
		d.Drive = append(d.Drive, domain.DisableCommand())
	}
	return d
}

// Step runs one cycle of the state machine.
func (e *Engine) Step(s domain.ControllerSample) Decision {
	d := Decision{Previous: e.state, State: e.state}
	d.Feedback = control.FeedbackFor(s, e.tuning.Feedback)

	prev := e.prevButtons
	pressed := s.Buttons.Pressed(prev)
	e.prevButtons = s.Buttons

	if e.emergencyPending {
		e.enterEmergency(&d)
		return d
	}

	switch e.state {
	case domain.StateIdle:
		if pressed.Start() {
			e.state = domain.StateArmed
		}
	case domain.StateArmed:
		if pressed.Select() {
			e.state = domain.StateIdle
		} else if s.L2Pressure > e.tuning.CombatPressure {
			e.state = domain.StateCombat
		}
	case domain.StateCombat:
		if pressed.Select() {
			e.state = domain.StateArmed
		}
	case domain.StateEmergency:
		release := domain.ButtonStart | domain.ButtonSelect
		if s.Buttons.Has(release) && !prev.Has(release) {
			e.state = domain.StateIdle
		}
	}
	d.State = e.state

	switch {
	case d.Previous == domain.StateEmergency && d.State == domain.StateIdle:
		d.Drive = append(d.Drive, domain.StopCommand(), domain.EnableCommand())
	case !d.State.Active():
		d.Drive = append(d.Drive, domain.StopCommand())
		if d.State == domain.StateEmergency {
			d.Drive = append(d.Drive, domain.DisableCommand())
		}
	case d.Previous == domain.StateIdle:
		// arming cycle: never move on the press that armed
		d.Drive = append(d.Drive, domain.StopCommand())
	default:
		d.Drive = append(d.Drive, e.movement(s))
		d.Servo = domain.ServoCommand{Angle: control.ServoAngle(s.RightY)}
		d.HasServo = true
	}

	if d.Transitioned() {
		d.setIndicator(domain.IndicatorFor(d.State))
	}
	return d
}

func (e *Engine) movement(s domain.ControllerSample) domain.DriveCommand {
	lo, hi := e.tuning.DeadZoneLow, e.tuning.DeadZoneHigh

	rx := control.Normalize(s.RightX, lo, hi)
	if abs8(rx) > e.tuning.SpinThreshold {
		return domain.SpinCommand(rx)
	}

	x := control.Normalize(s.LeftX, lo, hi)
	// stick up reads low, forward is positive
	y := -control.Normalize(s.LeftY, lo, hi)
	if x == 0 && y == 0 {
		return domain.StopCommand()
	}
	return domain.MoveCommand(x, y)
}

func (e *Engine) enterEmergency(d *Decision) {
	e.state = domain.StateEmergency
	d.State = e.state
	d.Reason = e.emergencyReason
	d.Drive = append(d.Drive[:0], domain.StopCommand(), domain.DisableCommand())
	d.HasServo = false
	d.Feedback = domain.Feedback{}
	d.setIndicator(domain.IndicatorSolid)

	e.emergencyPending = false
	e.emergencyReason = ""
}

func (d *Decision) setIndicator(p domain.IndicatorPattern) {
	d.Indicator = p
	d.HasIndicator = true
}

func abs8(v int8) int8 {
	if v < 0 {
		return -v
	}
	return v
}
