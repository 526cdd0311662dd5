package battletrack

import (
	"errors"
	"fmt"
	"sync"

	"tinygo.org/x/drivers"

	"github.com/ghalamif/BattleTrack/internal/adapters/ps2"
)

// ErrChannelDriverClosed is returned when a channel driver is written to after
// being closed.
var ErrChannelDriverClosed = errors.New("battletrack: channel driver closed")

// MotorFunc handles one motor write; standby changes are reported separately
// through StandbyFunc.
type MotorFunc func(side Side, cmd MotorCommand) error

// StandbyFunc handles a change of the shared standby line.
type StandbyFunc func(enabled bool) error

// ServoFunc handles one servo duty write.
type ServoFunc func(fraction float64) error

// IndicatorFunc handles one LED level write.
type IndicatorFunc func(on bool) error

// NewCallbackMotor adapts plain functions into a MotorDriver so callers can
// plug arbitrary hardware without defining structs. A nil standby handler
// accepts every standby change.
func NewCallbackMotor(name string, apply MotorFunc, standby StandbyFunc) MotorDriver {
	if name == "" {
		name = "callback"
	}
	return &callbackMotor{name: name, apply: apply, standby: standby}
}

// NewCallbackServo adapts fn into a ServoDriver.
func NewCallbackServo(fn ServoFunc) ServoDriver { return fn }

// NewCallbackIndicator adapts fn into an Indicator.
func NewCallbackIndicator(fn IndicatorFunc) Indicator { return fn }

func (f ServoFunc) SetDuty(fraction float64) error {
	if f == nil {
		return fmt.Errorf("callback servo: nil handler")
	}
	return f(fraction)
}

func (f IndicatorFunc) Set(on bool) error {
	if f == nil {
		return fmt.Errorf("callback indicator: nil handler")
	}
	return f(on)
}

type callbackMotor struct {
	name    string
	apply   MotorFunc
	standby StandbyFunc
}

func (m *callbackMotor) Apply(side Side, cmd MotorCommand) error {
	if m.apply == nil {
		return fmt.Errorf("callback motor %q: nil handler", m.name)
	}
	return m.apply(side, cmd)
}

func (m *callbackMotor) SetStandby(enabled bool) error {
	if m.standby == nil {
		return nil
	}
	return m.standby(enabled)
}

// NewDualShockInput polls a DualShock 2 pad wired to bus. sel drives the
// attention line and may be nil when the bus asserts chip select itself.
// Set msbFirst for buses that cannot shift least significant bit first.
func NewDualShockInput(bus drivers.SPI, sel func(active bool), msbFirst bool) InputDevice {
	return ps2.New(bus, sel, ps2.Options{MSBFirst: msbFirst})
}

// MotorEvent is one write seen by a channel motor driver. Standby is set for
// standby-line changes, in which case Enabled carries the new level.
type MotorEvent struct {
	Side    Side
	Command MotorCommand
	Standby bool
	Enabled bool
}

// NewChannelMotor exposes motor writes via a channel for dashboards and
// visualizers. It returns the driver, the read-only channel, and a close
// function that the caller should invoke during shutdown. Writes never block
// the drive task: a full buffer drops the event.
func NewChannelMotor(buffer int) (MotorDriver, <-chan MotorEvent, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan MotorEvent, buffer)
	m := &channelMotor{ch: ch}
	return m, ch, m.close
}

type channelMotor struct {
	mu     sync.Mutex
	ch     chan MotorEvent
	closed bool
}

func (m *channelMotor) Apply(side Side, cmd MotorCommand) error {
	return m.emit(MotorEvent{Side: side, Command: cmd})
}

func (m *channelMotor) SetStandby(enabled bool) error {
	return m.emit(MotorEvent{Standby: true, Enabled: enabled})
}

func (m *channelMotor) emit(ev MotorEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrChannelDriverClosed
	}
	select {
	case m.ch <- ev:
	default:
	}
	return nil
}

func (m *channelMotor) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.ch)
	}
}
