package battletrack

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"tinygo.org/x/drivers"

	base "github.com/ghalamif/BattleTrack/pkg/battletrack"
)

// Re-exported errors for convenience.
var (
	ErrReadFailed          = base.ErrReadFailed
	ErrUnexpectedDevice    = base.ErrUnexpectedDevice
	ErrChannelDriverClosed = base.ErrChannelDriverClosed
)

// Type aliases so consumers can import github.com/ghalamif/BattleTrack directly.
type (
	Config           = base.Config
	ChannelPolicy    = base.ChannelPolicy
	Flow             = base.Flow
	FlowOption       = base.FlowOption
	ControllerOption = base.ControllerOption
	ActuatorOption   = base.ActuatorOption
	Runtime          = base.Runtime
	RuntimeOption    = base.RuntimeOption
	ControllerSample = base.ControllerSample
	Feedback         = base.Feedback
	ButtonMask       = base.ButtonMask
	BotState         = base.BotState
	MotorCommand     = base.MotorCommand
	Side             = base.Side
	InputDevice      = base.InputDevice
	MotorDriver      = base.MotorDriver
	ServoDriver      = base.ServoDriver
	Indicator        = base.Indicator
	Observability    = base.Observability
	Field            = base.Field
	Ticker           = base.Ticker
	TickerFunc       = base.TickerFunc
	MotorFunc        = base.MotorFunc
	StandbyFunc      = base.StandbyFunc
	ServoFunc        = base.ServoFunc
	IndicatorFunc    = base.IndicatorFunc
	MotorEvent       = base.MotorEvent
	PushInput        = base.PushInput
	Journal          = base.Journal
	JournalEntryID   = base.JournalEntryID
	Event            = base.Event
)

const (
	StateIdle      = base.StateIdle
	StateArmed     = base.StateArmed
	StateCombat    = base.StateCombat
	StateEmergency = base.StateEmergency
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

// Runtime helpers.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithInputDevice(in InputDevice) RuntimeOption {
	return base.WithInputDevice(in)
}

func WithMotorDriver(m MotorDriver) RuntimeOption {
	return base.WithMotorDriver(m)
}

func WithServoDriver(s ServoDriver) RuntimeOption {
	return base.WithServoDriver(s)
}

func WithIndicator(led Indicator) RuntimeOption {
	return base.WithIndicator(led)
}

func WithLinkLED(led Indicator) RuntimeOption {
	return base.WithLinkLED(led)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

func WithTicker(fn TickerFunc) RuntimeOption {
	return base.WithTicker(fn)
}

func WithRegisterer(reg prometheus.Registerer) RuntimeOption {
	return base.WithRegisterer(reg)
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func ControllerInput(in InputDevice) ControllerOption {
	return base.ControllerInput(in)
}

func ControllerLinkLED(led Indicator) ControllerOption {
	return base.ControllerLinkLED(led)
}

func ControllerTicker(fn TickerFunc) ControllerOption {
	return base.ControllerTicker(fn)
}

func ControllerObservability(obs Observability) ControllerOption {
	return base.ControllerObservability(obs)
}

func ActuatorMotors(m MotorDriver) ActuatorOption {
	return base.ActuatorMotors(m)
}

func ActuatorServo(s ServoDriver) ActuatorOption {
	return base.ActuatorServo(s)
}

func ActuatorIndicator(led Indicator) ActuatorOption {
	return base.ActuatorIndicator(led)
}

func ActuatorCallbacks(motor MotorFunc, servo ServoFunc, led IndicatorFunc) ActuatorOption {
	return base.ActuatorCallbacks(motor, servo, led)
}

// Adapter helpers.
func NewCallbackMotor(name string, apply MotorFunc, standby StandbyFunc) MotorDriver {
	return base.NewCallbackMotor(name, apply, standby)
}

func NewCallbackServo(fn ServoFunc) ServoDriver {
	return base.NewCallbackServo(fn)
}

func NewCallbackIndicator(fn IndicatorFunc) Indicator {
	return base.NewCallbackIndicator(fn)
}

func NewDualShockInput(bus drivers.SPI, sel func(active bool), msbFirst bool) InputDevice {
	return base.NewDualShockInput(bus, sel, msbFirst)
}

func NewChannelMotor(buffer int) (MotorDriver, <-chan MotorEvent, func()) {
	return base.NewChannelMotor(buffer)
}

func NewPushInput(stale time.Duration) *PushInput {
	return base.NewPushInput(stale)
}

func NeutralSample() ControllerSample {
	return base.NeutralSample()
}

func ParseButton(name string) (ButtonMask, bool) {
	return base.ParseButton(name)
}

func WithJournal(j Journal) RuntimeOption {
	return base.WithJournal(j)
}
