package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
loop:
  poll_hz: 50
channels:
  command_depth: 16
indicator:
  slow: 750ms
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.PollInterval() != 20*time.Millisecond {
		t.Fatalf("expected 20ms poll interval, got %s", cfg.PollInterval())
	}
	if cfg.Loop.ReadTimeout != 100*time.Millisecond {
		t.Fatalf("expected read timeout default 100ms, got %s", cfg.Loop.ReadTimeout)
	}
	if cfg.Channels.CommandDepth != 16 || cfg.Channels.StatusDepth != 4 {
		t.Fatalf("unexpected channel depths %+v", cfg.Channels)
	}
	if cfg.Indicator.Slow != 750*time.Millisecond || cfg.Indicator.Fast != 100*time.Millisecond {
		t.Fatalf("unexpected indicator timing %+v", cfg.Indicator)
	}
	if cfg.Indicator.LinkPulse != 10*time.Millisecond {
		t.Fatalf("expected link pulse default 10ms, got %s", cfg.Indicator.LinkPulse)
	}

	tuning := cfg.Tuning()
	if tuning.DeadZoneLow != 118 || tuning.DeadZoneHigh != 138 || tuning.SpinThreshold != 20 {
		t.Fatalf("unexpected stick tuning %+v", tuning)
	}
	if tuning.CombatPressure != 100 {
		t.Fatalf("expected combat pressure 100, got %d", tuning.CombatPressure)
	}
	if tuning.Feedback.RumbleDivisor != 225 || tuning.Feedback.SmallMotorThreshold != 30 {
		t.Fatalf("unexpected feedback tuning %+v", tuning.Feedback)
	}
	if cfg.Servo.MinDuty != 0.05 || cfg.Servo.MaxDuty != 0.10 {
		t.Fatalf("unexpected servo duty %+v", cfg.Servo)
	}
	if cfg.Hardware.Input != InputSim || cfg.Hardware.Actuator != ActuatorSim {
		t.Fatalf("expected simulated hardware by default, got %+v", cfg.Hardware)
	}
	if cfg.Journal.Capacity != 256 {
		t.Fatalf("expected journal capacity 256, got %d", cfg.Journal.Capacity)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Loop.PollHz != 60 {
		t.Fatalf("expected 60 Hz, got %d", cfg.Loop.PollHz)
	}
	if *cfg != *Default() {
		t.Fatalf("Load(\"\") and Default() disagree")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BATTLETRACK_POLL_HZ", "100")
	t.Setenv("BATTLETRACK_LOG_FORMAT", "json")
	t.Setenv("BATTLETRACK_INPUT", "serialpad")
	t.Setenv("BATTLETRACK_INPUT_PORT", "/dev/ttyUSB0")
	t.Setenv("BATTLETRACK_JOURNAL_CAPACITY", "32")

	cfg, err := Load(writeConfig(t, "loop:\n  poll_hz: 30\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Loop.PollHz != 100 {
		t.Fatalf("env must win over file, got %d", cfg.Loop.PollHz)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json logging, got %s", cfg.Logging.Format)
	}
	if cfg.Hardware.Input != InputSerialPad || cfg.Hardware.InputPort != "/dev/ttyUSB0" {
		t.Fatalf("unexpected hardware %+v", cfg.Hardware)
	}
	if cfg.Journal.Capacity != 32 {
		t.Fatalf("expected journal capacity 32, got %d", cfg.Journal.Capacity)
	}
}

func TestLoadRejectsBadEnvNumber(t *testing.T) {
	t.Setenv("BATTLETRACK_POLL_HZ", "fast")
	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "BATTLETRACK_POLL_HZ") {
		t.Fatalf("expected env error naming the key, got %v", err)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("BATTLETRACK_LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("BATTLETRACK_LOG_LEVEL")
	})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected level from .env, got %s", cfg.Logging.Level)
	}
}

func TestLoadKeepsExplicitZeroThresholds(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
input:
  spin_threshold: 0
feedback:
  rumble_threshold: 0
  rumble_subtract: 0
  small_motor_threshold: 0
control:
  combat_pressure: 0
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tuning := cfg.Tuning()
	if tuning.SpinThreshold != 0 || tuning.CombatPressure != 0 {
		t.Fatalf("explicit zero replaced by a default: %+v", tuning)
	}
	if tuning.Feedback.RumbleThreshold != 0 || tuning.Feedback.RumbleSubtract != 0 || tuning.Feedback.SmallMotorThreshold != 0 {
		t.Fatalf("explicit zero replaced by a default: %+v", tuning.Feedback)
	}
	if tuning.Feedback.RumbleDivisor != 225 {
		t.Fatalf("omitted divisor should default to 225, got %d", tuning.Feedback.RumbleDivisor)
	}
}

func TestValidateFillsConfigBuiltInCode(t *testing.T) {
	cfg := &Config{Hardware: HardwareConfig{Input: InputSim}}
	cfg.Servo.MaxDuty = 0.2
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.PollInterval() <= 0 {
		t.Fatalf("expected a poll interval, got %s", cfg.PollInterval())
	}
	if cfg.Indicator.Steady != 100*time.Millisecond || cfg.Journal.Capacity != 256 {
		t.Fatalf("defaults not applied: %+v %+v", cfg.Indicator, cfg.Journal)
	}
	if cfg.Servo.MinDuty != 0.05 || cfg.Servo.MaxDuty != 0.2 {
		t.Fatalf("unexpected servo duty %+v", cfg.Servo)
	}

	bad := &Config{Loop: LoopConfig{PollHz: -5}}
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "loop.poll_hz") {
		t.Fatalf("expected poll rate error, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]struct {
		yaml string
		key  string
	}{
		"dead zone inverted": {"input:\n  dead_zone_low: 140\n  dead_zone_high: 120\n", "input.dead_zone_low"},
		"dead zone at rail":  {"input:\n  dead_zone_high: 255\n", "input.dead_zone_low"},
		"spin threshold":     {"input:\n  spin_threshold: 120\n", "input.spin_threshold"},
		"poll rate":          {"loop:\n  poll_hz: 5000\n", "loop.poll_hz"},
		"servo duty":         {"servo:\n  min_duty: 0.2\n  max_duty: 0.1\n", "servo.min_duty"},
		"log format":         {"logging:\n  format: xml\n", "logging.format"},
		"input kind":         {"hardware:\n  input: ps3\n", "hardware.input"},
		"serial port":        {"hardware:\n  input: serialpad\n", "hardware.input_port"},
		"motor port":         {"hardware:\n  actuator: motorlink\n", "hardware.actuator_port"},
		"status depth":       {"channels:\n  status_depth: -1\n", "channels.status_depth"},
		"journal capacity":   {"journal:\n  capacity: -1\n", "journal.capacity"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.key) {
				t.Fatalf("expected error to mention %s, got %v", tc.key, err)
			}
		})
	}
}

func TestBlinkFromConfig(t *testing.T) {
	b := Default().Blink()
	if b.Fast != 100*time.Millisecond || b.Slow != 500*time.Millisecond || b.Steady != 100*time.Millisecond {
		t.Fatalf("unexpected blink %+v", b)
	}
}
