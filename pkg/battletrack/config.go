package battletrack

import (
	"github.com/ghalamif/BattleTrack/internal/app/config"
	"github.com/ghalamif/BattleTrack/internal/control"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// Config re-exports the root configuration struct so embedders can build or
// tweak it in code.
type Config = config.Config

type (
	// LoopConfig sets the poll rate and the retry delay after a failed read.
	LoopConfig = config.LoopConfig
	// InputConfig holds the stick dead zone and spin threshold.
	InputConfig = config.InputConfig
	// FeedbackConfig maps trigger pressure to rumble.
	FeedbackConfig = control.FeedbackTuning
	// ControlConfig holds the combat trigger threshold.
	ControlConfig = config.ControlConfig
	// ChannelPolicy sizes the inter-unit channels.
	ChannelPolicy = ports.Policy
	// IndicatorConfig holds LED blink timing.
	IndicatorConfig = config.IndicatorConfig
	// ServoConfig maps servo angle to PWM duty.
	ServoConfig = config.ServoConfig
	// LoggingConfig picks log level and format.
	LoggingConfig = config.LoggingConfig
	// HardwareConfig selects the built-in adapters.
	HardwareConfig = config.HardwareConfig
	// JournalConfig bounds the transition history.
	JournalConfig = config.JournalConfig
)

// LoadConfig reads YAML from disk, applies .env and BATTLETRACK_* overrides
// and validates. An empty path yields the defaults plus overrides.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return config.Default()
}
