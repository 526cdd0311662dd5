package domain

import "fmt"

// MaxCommand bounds every signed drive magnitude.
const MaxCommand = 100

// MaxServoAngle is the mechanical end stop of the aiming servo.
const MaxServoAngle = 180

// DriveKind tags a DriveCommand.
type DriveKind uint8

const (
	DriveStop DriveKind = iota
	DriveMove
	DriveSpin
	DriveEnable
	DriveDisable
)

func (k DriveKind) String() string {
	switch k {
	case DriveStop:
		return "stop"
	case DriveMove:
		return "move"
	case DriveSpin:
		return "spin"
	case DriveEnable:
		return "enable"
	case DriveDisable:
		return "disable"
	default:
		return "unknown"
	}
}

// DriveCommand is sent from the decision engine to the drive task. X and Y are
// used by Move, Speed by Spin; all are already within [-100, 100].
type DriveCommand struct {
	Kind  DriveKind
	X     int8
	Y     int8
	Speed int8
}

func MoveCommand(x, y int8) DriveCommand {
	return DriveCommand{Kind: DriveMove, X: ClampCommand(int(x)), Y: ClampCommand(int(y))}
}

func SpinCommand(speed int8) DriveCommand {
	return DriveCommand{Kind: DriveSpin, Speed: ClampCommand(int(speed))}
}

func StopCommand() DriveCommand    { return DriveCommand{Kind: DriveStop} }
func EnableCommand() DriveCommand  { return DriveCommand{Kind: DriveEnable} }
func DisableCommand() DriveCommand { return DriveCommand{Kind: DriveDisable} }

func (c DriveCommand) String() string {
	switch c.Kind {
	case DriveMove:
		return fmt.Sprintf("move(x=%d,y=%d)", c.X, c.Y)
	case DriveSpin:
		return fmt.Sprintf("spin(%d)", c.Speed)
	default:
		return c.Kind.String()
	}
}

// ClampCommand saturates v into [-100, 100].
func ClampCommand(v int) int8 {
	if v > MaxCommand {
		return MaxCommand
	}
	if v < -MaxCommand {
		return -MaxCommand
	}
	return int8(v)
}

// ServoCommand positions the aiming servo.
type ServoCommand struct {
	Angle uint8
}

// IndicatorPattern selects the state LED output and its toggle period.
type IndicatorPattern uint8

const (
	IndicatorOff IndicatorPattern = iota
	IndicatorSlowBlink
	IndicatorFastBlink
	IndicatorSolid
)

func (p IndicatorPattern) String() string {
	switch p {
	case IndicatorOff:
		return "off"
	case IndicatorSlowBlink:
		return "slow-blink"
	case IndicatorFastBlink:
		return "fast-blink"
	case IndicatorSolid:
		return "solid"
	default:
		return "unknown"
	}
}

// Blinking reports whether the pattern toggles the output every tick.
func (p IndicatorPattern) Blinking() bool {
	return p == IndicatorSlowBlink || p == IndicatorFastBlink
}

// IndicatorFor maps a bot state to the pattern a pilot sees.
func IndicatorFor(s BotState) IndicatorPattern {
	switch s {
	case StateArmed:
		return IndicatorSlowBlink
	case StateCombat:
		return IndicatorFastBlink
	case StateEmergency:
		return IndicatorSolid
	default:
		return IndicatorOff
	}
}

// Direction is the H-bridge mode for one motor.
type Direction uint8

const (
	DirStop Direction = iota
	DirForward
	DirBackward
	DirBrake
)

func (d Direction) String() string {
	switch d {
	case DirStop:
		return "stop"
	case DirForward:
		return "forward"
	case DirBackward:
		return "backward"
	case DirBrake:
		return "brake"
	default:
		return "unknown"
	}
}

// MotorCommand is a direction plus a duty percentage in [0, 100].
type MotorCommand struct {
	Direction Direction
	Duty      uint8
}

func (c MotorCommand) String() string {
	switch c.Direction {
	case DirForward, DirBackward:
		return fmt.Sprintf("%s(%d)", c.Direction, c.Duty)
	default:
		return c.Direction.String()
	}
}

// Side names one of the two track motors.
type Side uint8

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}
