package battletrack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ghalamif/BattleTrack/internal/adapters/journal"
	"github.com/ghalamif/BattleTrack/internal/adapters/motorlink"
	"github.com/ghalamif/BattleTrack/internal/adapters/observability"
	"github.com/ghalamif/BattleTrack/internal/adapters/serialpad"
	"github.com/ghalamif/BattleTrack/internal/adapters/sim"
	"github.com/ghalamif/BattleTrack/internal/app/config"
	"github.com/ghalamif/BattleTrack/internal/app/engine"
	"github.com/ghalamif/BattleTrack/internal/app/pipeline"
	"github.com/ghalamif/BattleTrack/internal/app/sched"
	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

const backlogInterval = time.Second

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	input         InputDevice
	motors        MotorDriver
	servo         ServoDriver
	indicator     Indicator
	linkLED       Indicator
	observability Observability
	ticker        TickerFunc
	registerer    prometheus.Registerer
	journal       Journal
}

// WithInputDevice replaces the pad selected by hardware.input.
func WithInputDevice(in InputDevice) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.input = in
	}
}

// WithMotorDriver replaces the track motor driver selected by hardware.actuator.
func WithMotorDriver(m MotorDriver) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.motors = m
	}
}

// WithServoDriver replaces the aiming servo output.
func WithServoDriver(s ServoDriver) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.servo = s
	}
}

// WithIndicator replaces the state LED.
func WithIndicator(led Indicator) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.indicator = led
	}
}

// WithLinkLED replaces the LED pulsed on every successful poll.
func WithLinkLED(led Indicator) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.linkLED = led
	}
}

// WithObservability plugs in a custom logging and metrics backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// WithTicker overrides how the poll, blink and backlog tickers are built.
// Tests pass a manual clock here.
func WithTicker(fn TickerFunc) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.ticker = fn
	}
}

// WithJournal records transitions in j instead of an in-memory ring of
// journal.capacity entries.
func WithJournal(j Journal) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.journal = j
	}
}

// WithRegisterer registers the default Prometheus metrics on reg instead of
// the global registry. Ignored when WithObservability is given.
func WithRegisterer(reg prometheus.Registerer) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.registerer = reg
	}
}

// Runtime wires the controller unit (input, decision, link LED) to the
// actuation unit (drive, servo, state LED) and exposes lifecycle hooks for
// embedding the control core in any Go program.
type Runtime struct {
	cfg      *Config
	obs      ports.Observability
	ticker   sched.TickerFunc
	channels *pipeline.Channels
	motors   ports.MotorDriver
	journal  ports.Journal

	input     *pipeline.InputTask
	decision  *pipeline.DecisionTask
	drive     *pipeline.DriveTask
	servo     *pipeline.ServoTask
	indicator *pipeline.IndicatorTask
	link      *pipeline.LinkLEDTask

	closers []io.Closer

	mu         sync.Mutex
	started    bool
	stopped    bool
	controller *sched.Unit
	actuation  *sched.Unit
	gaugeStop  chan struct{}
}

// NewRuntime bootstraps the adapters named in cfg.Hardware (scripted sim
// input and recording actuators by default, serial bridges otherwise).
// RuntimeOption values override any of them. Unset settings in cfg are
// filled with their defaults before it is validated.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		logger := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
		obs = observability.NewPromObs(overrides.registerer, logger)
	}

	tickerFn := overrides.ticker
	if tickerFn == nil {
		tickerFn = sched.RealTicker
	}

	rt := &Runtime{cfg: cfg, obs: obs, ticker: tickerFn}

	in := overrides.input
	if in == nil {
		dev, err := rt.openInput()
		if err != nil {
			return nil, err
		}
		in = dev
	}

	motors, servo, led, link := overrides.motors, overrides.servo, overrides.indicator, overrides.linkLED
	if motors == nil || servo == nil || led == nil || link == nil {
		set, err := rt.openActuators()
		if err != nil {
			rt.closeAll()
			return nil, err
		}
		if motors == nil {
			motors = set.motors
		}
		if servo == nil {
			servo = set.servo
		}
		if led == nil {
			led = set.led
		}
		if link == nil {
			link = set.link
		}
	}
	rt.motors = motors

	jr := overrides.journal
	if jr == nil {
		jr = journal.NewRing(cfg.Journal.Capacity)
	}
	rt.journal = jr

	ch := pipeline.NewChannels(cfg.Channels)
	rt.channels = ch

	rt.input = &pipeline.InputTask{
		Device:      in,
		Out:         ch.Readings,
		Feedback:    ch.Feedback,
		LinkPulse:   ch.LinkPulse,
		Interval:    cfg.PollInterval(),
		ReadTimeout: cfg.Loop.ReadTimeout,
		Ticker:      tickerFn,
		Obs:         obs,
	}
	rt.decision = &pipeline.DecisionTask{
		Engine:    engine.New(cfg.Tuning()),
		In:        ch.Readings,
		Drive:     ch.Drive,
		Servo:     ch.Servo,
		Indicator: ch.Indicator,
		Status:    ch.Statuses(),
		Emergency: ch.Emergency,
		Alert:     ch.Alert,
		Feedback:  ch.Feedback,
		Journal:   jr,
		Obs:       obs,
	}
	rt.link = &pipeline.LinkLEDTask{
		LED:   link,
		Pulse: ch.LinkPulse,
		Width: cfg.Indicator.LinkPulse,
		Obs:   obs,
	}
	rt.drive = &pipeline.DriveTask{
		Driver: motors,
		In:     ch.Drive,
		Status: ch.DriveStatus,
		Alert:  ch.Alert,
		Obs:    obs,
	}
	rt.servo = &pipeline.ServoTask{
		Driver:  servo,
		In:      ch.Servo,
		Status:  ch.ServoStatus,
		Alert:   ch.Alert,
		MinDuty: cfg.Servo.MinDuty,
		MaxDuty: cfg.Servo.MaxDuty,
		Obs:     obs,
	}
	rt.indicator = &pipeline.IndicatorTask{
		LED:    led,
		In:     ch.Indicator,
		Status: ch.IndicatorStatus,
		Alert:  ch.Alert,
		Blink:  cfg.Blink(),
		Ticker: tickerFn,
		Obs:    obs,
	}

	return rt, nil
}

// Start launches both units. It returns immediately; call Run to block on a
// context instead.
func (r *Runtime) Start() error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return fmt.Errorf("runtime already shut down")
	}
	if r.started {
		return fmt.Errorf("runtime already started")
	}
	r.started = true

	// Actuation first so the boot commands find their consumers running.
	r.actuation = sched.NewUnit(context.Background(), "actuation", r.obs)
	r.actuation.Go("drive", r.drive.Run)
	r.actuation.Go("servo", r.servo.Run)
	r.actuation.Go("indicator", r.indicator.Run)

	r.controller = sched.NewUnit(context.Background(), "controller", r.obs)
	r.controller.Go("decision", r.decision.Run)
	r.controller.Go("input", r.input.Run)
	r.controller.Go("link", r.link.Run)

	r.gaugeStop = make(chan struct{})
	go r.recordBacklog(r.gaugeStop, backlogInterval)

	r.obs.LogInfo("runtime_started",
		ports.Field{Key: "poll_hz", Value: r.cfg.Loop.PollHz},
		ports.Field{Key: "input", Value: r.cfg.Hardware.Input},
		ports.Field{Key: "actuator", Value: r.cfg.Hardware.Actuator})
	return nil
}

// Run starts the runtime and blocks until the provided context is cancelled.
// Upon cancellation it attempts a graceful shutdown.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Shutdown stops the controller unit before the actuation unit, parks the
// motors and closes the hardware links.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	started := r.started
	r.mu.Unlock()

	var errs []error
	if started {
		close(r.gaugeStop)

		r.controller.Stop()
		if err := r.controller.Wait(ctx); err != nil {
			errs = append(errs, err)
		}

		r.channels.Close()
		r.actuation.Stop()
		if err := r.actuation.Wait(ctx); err != nil {
			errs = append(errs, err)
		}
	} else {
		r.channels.Close()
	}

	if err := r.park(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, r.closeAll())

	r.obs.LogInfo("runtime_stopped", ports.Field{Key: "state", Value: r.State().String()})
	return errors.Join(errs...)
}

// TriggerEmergency requests Emergency from outside the pad, for example a
// watchdog. It is applied on the next decision cycle.
func (r *Runtime) TriggerEmergency(reason string) {
	if reason == "" {
		reason = "external"
	}
	r.channels.Emergency.Raise(reason)
	r.obs.LogInfo("emergency_requested", ports.Field{Key: "reason", Value: reason})
}

// State is the operating mode after the most recent decision cycle.
func (r *Runtime) State() BotState {
	return r.decision.State()
}

// Journal is the transition history of this run.
func (r *Runtime) Journal() Journal {
	return r.journal
}

// park leaves both tracks stopped with the driver in standby.
func (r *Runtime) park() error {
	return errors.Join(
		r.motors.Apply(domain.SideLeft, domain.MotorCommand{Direction: domain.DirStop}),
		r.motors.Apply(domain.SideRight, domain.MotorCommand{Direction: domain.DirStop}),
		r.motors.SetStandby(false),
	)
}

func (r *Runtime) recordBacklog(stop <-chan struct{}, interval time.Duration) {
	ticker := r.ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			backlog := r.channels.Drive.Len() + r.channels.Servo.Len() + r.channels.Indicator.Len()
			r.obs.SetGauge(ports.MetricCommandBacklog, float64(backlog))
		}
	}
}

func (r *Runtime) openInput() (ports.InputDevice, error) {
	hw := r.cfg.Hardware
	switch hw.Input {
	case config.InputSerialPad:
		pad, err := serialpad.Open(hw.InputPort, hw.InputBaud, r.cfg.Loop.ReadTimeout)
		if err != nil {
			return nil, fmt.Errorf("open input %s: %w", hw.InputPort, err)
		}
		r.closers = append(r.closers, pad)
		return pad, nil
	default:
		var sc *sim.Scenario
		if hw.Scenario != "" {
			loaded, err := sim.LoadScenario(hw.Scenario)
			if err != nil {
				return nil, err
			}
			sc = loaded
		}
		return sim.NewInput(sc), nil
	}
}

type actuatorSet struct {
	motors ports.MotorDriver
	servo  ports.ServoDriver
	led    ports.Indicator
	link   ports.Indicator
}

func (r *Runtime) openActuators() (actuatorSet, error) {
	hw := r.cfg.Hardware
	switch hw.Actuator {
	case config.ActuatorLink:
		l, err := motorlink.Open(hw.ActuatorPort, hw.ActuatorBaud)
		if err != nil {
			return actuatorSet{}, fmt.Errorf("open actuator link %s: %w", hw.ActuatorPort, err)
		}
		r.closers = append(r.closers, l)
		return actuatorSet{
			motors: l,
			servo:  l.Servo(),
			led:    l.LED(motorlink.LEDState),
			link:   l.LED(motorlink.LEDLink),
		}, nil
	default:
		return actuatorSet{
			motors: &sim.Motors{},
			servo:  &sim.Servo{},
			led:    &sim.LED{},
			link:   &sim.LED{},
		}, nil
	}
}

func (r *Runtime) closeAll() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
