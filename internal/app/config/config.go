package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ghalamif/BattleTrack/internal/app/engine"
	"github.com/ghalamif/BattleTrack/internal/app/pipeline"
	"github.com/ghalamif/BattleTrack/internal/control"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "BATTLETRACK_"

type Config struct {
	Loop      LoopConfig             `yaml:"loop"`
	Input     InputConfig            `yaml:"input"`
	Feedback  control.FeedbackTuning `yaml:"feedback"`
	Control   ControlConfig          `yaml:"control"`
	Channels  ports.Policy           `yaml:"channels"`
	Indicator IndicatorConfig        `yaml:"indicator"`
	Servo     ServoConfig            `yaml:"servo"`
	Logging   LoggingConfig          `yaml:"logging"`
	Hardware  HardwareConfig         `yaml:"hardware"`
	Journal   JournalConfig          `yaml:"journal"`
}

type LoopConfig struct {
	PollHz      int           `yaml:"poll_hz"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

type InputConfig struct {
	DeadZoneLow   uint8 `yaml:"dead_zone_low"`
	DeadZoneHigh  uint8 `yaml:"dead_zone_high"`
	SpinThreshold int8  `yaml:"spin_threshold"`
}

type ControlConfig struct {
	// CombatPressure is the L2 pressure that must be exceeded to enter combat.
	CombatPressure uint8 `yaml:"combat_pressure"`
}

type IndicatorConfig struct {
	Fast      time.Duration `yaml:"fast"`
	Slow      time.Duration `yaml:"slow"`
	Steady    time.Duration `yaml:"steady"`
	LinkPulse time.Duration `yaml:"link_pulse"`
}

type ServoConfig struct {
	MinDuty float64 `yaml:"min_duty"`
	MaxDuty float64 `yaml:"max_duty"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HardwareConfig selects the adapters the CLI wires. Embedders that inject
// their own devices can ignore it.
type HardwareConfig struct {
	Input        string `yaml:"input"`
	InputPort    string `yaml:"input_port"`
	InputBaud    int    `yaml:"input_baud"`
	Actuator     string `yaml:"actuator"`
	ActuatorPort string `yaml:"actuator_port"`
	ActuatorBaud int    `yaml:"actuator_baud"`
	Scenario     string `yaml:"scenario"`
}

// JournalConfig bounds the in-memory transition history.
type JournalConfig struct {
	Capacity int `yaml:"capacity"`
}

const (
	InputSim       = "sim"
	InputSerialPad = "serialpad"
	ActuatorSim    = "sim"
	ActuatorLink   = "motorlink"
)

// Load reads path (skipped when empty), applies .env and BATTLETRACK_*
// overrides, fills defaults and validates.
func Load(path string) (*Config, error) {
	var cfg Config
	cfg.seedThresholds()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default is the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.seedThresholds()
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}

	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)
	str("INPUT", &c.Hardware.Input)
	str("INPUT_PORT", &c.Hardware.InputPort)
	str("ACTUATOR", &c.Hardware.Actuator)
	str("ACTUATOR_PORT", &c.Hardware.ActuatorPort)
	str("SCENARIO", &c.Hardware.Scenario)

	return errors.Join(
		integer("POLL_HZ", &c.Loop.PollHz),
		integer("INPUT_BAUD", &c.Hardware.InputBaud),
		integer("ACTUATOR_BAUD", &c.Hardware.ActuatorBaud),
		integer("JOURNAL_CAPACITY", &c.Journal.Capacity),
	)
}

// seedThresholds sets the tunables for which zero is a valid setting. They
// are filled before the file is decoded, so only a missing key keeps the
// default. A Config built in code takes them as written.
func (c *Config) seedThresholds() {
	c.Input.SpinThreshold = 20
	c.Feedback.RumbleThreshold = 30
	c.Feedback.RumbleSubtract = 30
	c.Feedback.SmallMotorThreshold = 30
	c.Control.CombatPressure = 100
}

// applyDefaults fills every setting for which zero means unset.
func (c *Config) applyDefaults() {
	if c.Loop.PollHz == 0 {
		c.Loop.PollHz = 60
	}
	if c.Loop.ReadTimeout == 0 {
		c.Loop.ReadTimeout = 100 * time.Millisecond
	}
	if c.Input.DeadZoneLow == 0 {
		c.Input.DeadZoneLow = 118
	}
	if c.Input.DeadZoneHigh == 0 {
		c.Input.DeadZoneHigh = 138
	}
	if c.Feedback.RumbleDivisor == 0 {
		c.Feedback.RumbleDivisor = 225
	}
	if c.Channels.CommandDepth == 0 {
		c.Channels.CommandDepth = 8
	}
	if c.Channels.StatusDepth == 0 {
		c.Channels.StatusDepth = 4
	}
	if c.Indicator.Fast == 0 {
		c.Indicator.Fast = 100 * time.Millisecond
	}
	if c.Indicator.Slow == 0 {
		c.Indicator.Slow = 500 * time.Millisecond
	}
	if c.Indicator.Steady == 0 {
		c.Indicator.Steady = 100 * time.Millisecond
	}
	if c.Indicator.LinkPulse == 0 {
		c.Indicator.LinkPulse = 10 * time.Millisecond
	}
	if c.Servo.MinDuty == 0 {
		c.Servo.MinDuty = 0.05
	}
	if c.Servo.MaxDuty == 0 {
		c.Servo.MaxDuty = 0.10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Hardware.Input == "" {
		c.Hardware.Input = InputSim
	}
	if c.Hardware.InputBaud == 0 {
		c.Hardware.InputBaud = 115200
	}
	if c.Hardware.Actuator == "" {
		c.Hardware.Actuator = ActuatorSim
	}
	if c.Hardware.ActuatorBaud == 0 {
		c.Hardware.ActuatorBaud = 115200
	}
	if c.Journal.Capacity == 0 {
		c.Journal.Capacity = 256
	}
}

func (c *Config) validate() error {
	if c.Loop.PollHz < 1 || c.Loop.PollHz > 1000 {
		return fmt.Errorf("loop.poll_hz must be within 1..1000, got %d", c.Loop.PollHz)
	}
	if c.Loop.ReadTimeout < 0 {
		return fmt.Errorf("loop.read_timeout must not be negative")
	}
	if c.Input.DeadZoneLow >= c.Input.DeadZoneHigh || c.Input.DeadZoneHigh == 255 {
		return fmt.Errorf("input.dead_zone_low (%d) must be below input.dead_zone_high (%d) and the high edge below 255",
			c.Input.DeadZoneLow, c.Input.DeadZoneHigh)
	}
	if c.Input.SpinThreshold < 0 || c.Input.SpinThreshold > 100 {
		return fmt.Errorf("input.spin_threshold must be within 0..100, got %d", c.Input.SpinThreshold)
	}
	if c.Channels.CommandDepth < 1 {
		return fmt.Errorf("channels.command_depth must be positive")
	}
	if c.Channels.StatusDepth < 1 {
		return fmt.Errorf("channels.status_depth must be positive")
	}
	if c.Indicator.Fast <= 0 || c.Indicator.Slow <= 0 || c.Indicator.Steady <= 0 || c.Indicator.LinkPulse <= 0 {
		return fmt.Errorf("indicator periods must be positive")
	}
	if c.Servo.MinDuty <= 0 || c.Servo.MaxDuty > 1 || c.Servo.MinDuty >= c.Servo.MaxDuty {
		return fmt.Errorf("servo.min_duty (%g) and servo.max_duty (%g) must satisfy 0 < min < max <= 1",
			c.Servo.MinDuty, c.Servo.MaxDuty)
	}
	if c.Journal.Capacity < 1 {
		return fmt.Errorf("journal.capacity must be positive, got %d", c.Journal.Capacity)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	switch c.Hardware.Input {
	case InputSim:
	case InputSerialPad:
		if c.Hardware.InputPort == "" {
			return fmt.Errorf("hardware.input_port is required for input %q", c.Hardware.Input)
		}
	default:
		return fmt.Errorf("hardware.input must be %s or %s, got %q", InputSim, InputSerialPad, c.Hardware.Input)
	}
	switch c.Hardware.Actuator {
	case ActuatorSim:
	case ActuatorLink:
		if c.Hardware.ActuatorPort == "" {
			return fmt.Errorf("hardware.actuator_port is required for actuator %q", c.Hardware.Actuator)
		}
	default:
		return fmt.Errorf("hardware.actuator must be %s or %s, got %q", ActuatorSim, ActuatorLink, c.Hardware.Actuator)
	}
	return nil
}

// Validate fills unset settings of a config built in code and checks it.
func (c *Config) Validate() error {
	c.applyDefaults()
	return c.validate()
}

func (c *Config) PollInterval() time.Duration {
	return time.Second / time.Duration(c.Loop.PollHz)
}

func (c *Config) Tuning() engine.Tuning {
	return engine.Tuning{
		DeadZoneLow:    c.Input.DeadZoneLow,
		DeadZoneHigh:   c.Input.DeadZoneHigh,
		SpinThreshold:  c.Input.SpinThreshold,
		CombatPressure: c.Control.CombatPressure,
		Feedback:       c.Feedback,
	}
}

func (c *Config) Blink() pipeline.Blink {
	return pipeline.Blink{Fast: c.Indicator.Fast, Slow: c.Indicator.Slow, Steady: c.Indicator.Steady}
}
