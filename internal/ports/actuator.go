package ports

import "github.com/ghalamif/BattleTrack/internal/domain"

// MotorDriver is the dual H-bridge behind the tracks. The standby line is
// shared by both sides.
type MotorDriver interface {
	Apply(side domain.Side, cmd domain.MotorCommand) error
	SetStandby(enabled bool) error
}

// ServoDriver accepts a pulse duty as a fraction of the PWM period.
type ServoDriver interface {
	SetDuty(fraction float64) error
}

// Indicator is a single on/off output such as a status LED.
type Indicator interface {
	Set(on bool) error
}
