package battletrack

import (
	"github.com/ghalamif/BattleTrack/internal/app/sched"
	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// ControllerSample is one poll of the pad: sticks, trigger pressures and the
// digital buttons.
type ControllerSample = domain.ControllerSample

// Feedback is the rumble request sent along with the next poll.
type Feedback = domain.Feedback

// ButtonMask is the held-button bit set of a sample.
type ButtonMask = domain.ButtonMask

// BotState is the operating mode owned by the decision engine.
type BotState = domain.BotState

// MotorCommand is a direction and duty for one track motor.
type MotorCommand = domain.MotorCommand

// Side names a track motor.
type Side = domain.Side

// InputDevice polls the pad. Return errors wrapping ErrReadFailed or
// ErrUnexpectedDevice.
type InputDevice = ports.InputDevice

// MotorDriver drives both track motors and their shared standby line.
type MotorDriver = ports.MotorDriver

// ServoDriver positions the aiming servo by PWM duty.
type ServoDriver = ports.ServoDriver

// Indicator is an on/off output such as an LED.
type Indicator = ports.Indicator

// Observability receives structured logs and metrics from every task.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

const (
	StateIdle      = domain.StateIdle
	StateArmed     = domain.StateArmed
	StateCombat    = domain.StateCombat
	StateEmergency = domain.StateEmergency
)

const (
	SideLeft  = domain.SideLeft
	SideRight = domain.SideRight
)

var (
	ErrReadFailed       = ports.ErrReadFailed
	ErrUnexpectedDevice = ports.ErrUnexpectedDevice
)

// NeutralSample is a pad at rest.
func NeutralSample() ControllerSample { return domain.NeutralSample() }

// ParseButton resolves a button name such as "start" or "cross".
func ParseButton(name string) (ButtonMask, bool) { return domain.ParseButton(name) }

// Ticker is the part of time.Ticker the periodic tasks use.
type Ticker = sched.Ticker

// TickerFunc builds a Ticker with the given period.
type TickerFunc = sched.TickerFunc

// Journal records the state transitions of the current run.
type Journal = ports.Journal

// JournalEntryID numbers journal entries from 1.
type JournalEntryID = ports.JournalEntryID

// Event is one journaled transition.
type Event = domain.Event
