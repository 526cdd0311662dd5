package battletrack

import (
	"context"
	"fmt"
)

// Flow assembles a Runtime in the order the robot is built: configuration,
// then the controller side, then the actuators.
type Flow struct {
	cfg  *Config
	opts []RuntimeOption
}

// FlowOption adjusts a Flow right after its configuration is in place.
type FlowOption func(*Flow)

// ControllerOption configures the controller side: pad, link LED, clocks
// and observability.
type ControllerOption func(*Flow)

// ActuatorOption configures the actuation side: motors, servo and state LED.
type ActuatorOption func(*Flow)

// Conf starts a Flow from a config file. An empty path means defaults plus
// BATTLETRACK_* overrides.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig starts a Flow from a Config built in code.
func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	f := &Flow{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Config exposes the loaded configuration; edits apply to the runtime built
// by Actuators.
func (f *Flow) Config() *Config {
	if f == nil {
		return nil
	}
	return f.cfg
}

// Options passes RuntimeOption values straight through to NewRuntime.
func (f *Flow) Options(opts ...RuntimeOption) *Flow {
	if f == nil {
		return nil
	}
	f.appendOptions(opts...)
	return f
}

// Controller records controller-side overrides.
func (f *Flow) Controller(opts ...ControllerOption) *Flow {
	if f == nil {
		return nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Actuators records actuation-side overrides and builds a Runtime ready to run.
func (f *Flow) Actuators(opts ...ActuatorOption) (*Runtime, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return NewRuntime(f.cfg, f.opts...)
}

// Run is a shortcut for Actuators + runtime.Run.
func (f *Flow) Run(ctx context.Context, opts ...ActuatorOption) error {
	rt, err := f.Actuators(opts...)
	if err != nil {
		return err
	}
	return rt.Run(ctx)
}

// WithFlowOptions appends RuntimeOption values during Conf.
func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(opts...)
		}
	}
}

// ControllerInput injects a custom pad (serial bridge, network relay, PushInput).
func ControllerInput(in InputDevice) ControllerOption {
	return func(f *Flow) {
		if f != nil && in != nil {
			f.appendOptions(WithInputDevice(in))
		}
	}
}

// ControllerLinkLED replaces the LED pulsed on every successful poll.
func ControllerLinkLED(led Indicator) ControllerOption {
	return func(f *Flow) {
		if f != nil && led != nil {
			f.appendOptions(WithLinkLED(led))
		}
	}
}

// ControllerTicker overrides how periodic tasks build their tickers.
func ControllerTicker(fn TickerFunc) ControllerOption {
	return func(f *Flow) {
		if f != nil && fn != nil {
			f.appendOptions(WithTicker(fn))
		}
	}
}

// ControllerObservability overrides the default Prometheus and logrus stack.
func ControllerObservability(obs Observability) ControllerOption {
	return func(f *Flow) {
		if f != nil && obs != nil {
			f.appendOptions(WithObservability(obs))
		}
	}
}

// ActuatorMotors injects a custom track motor driver.
func ActuatorMotors(m MotorDriver) ActuatorOption {
	return func(f *Flow) {
		if f != nil && m != nil {
			f.appendOptions(WithMotorDriver(m))
		}
	}
}

// ActuatorServo injects a custom aiming servo.
func ActuatorServo(s ServoDriver) ActuatorOption {
	return func(f *Flow) {
		if f != nil && s != nil {
			f.appendOptions(WithServoDriver(s))
		}
	}
}

// ActuatorIndicator injects a custom state LED.
func ActuatorIndicator(led Indicator) ActuatorOption {
	return func(f *Flow) {
		if f != nil && led != nil {
			f.appendOptions(WithIndicator(led))
		}
	}
}

// ActuatorCallbacks installs motor, servo and LED outputs built from plain
// functions. Nil functions leave the configured adapter in place.
func ActuatorCallbacks(motor MotorFunc, servo ServoFunc, led IndicatorFunc) ActuatorOption {
	return func(f *Flow) {
		if f == nil {
			return
		}
		if motor != nil {
			f.appendOptions(WithMotorDriver(NewCallbackMotor("callback", motor, nil)))
		}
		if servo != nil {
			f.appendOptions(WithServoDriver(servo))
		}
		if led != nil {
			f.appendOptions(WithIndicator(led))
		}
	}
}

func (f *Flow) appendOptions(opts ...RuntimeOption) {
	for _, opt := range opts {
		if opt != nil {
			f.opts = append(f.opts, opt)
		}
	}
}
