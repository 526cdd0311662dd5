package control

import "github.com/ghalamif/BattleTrack/internal/domain"

// Rumble scales a trigger pressure into the large motor intensity. Pressures
// below threshold give 0.
func Rumble(pressure, threshold, maxSubtract uint8, divisor uint16) uint8 {
	if pressure < threshold || divisor == 0 {
		return 0
	}
	var p uint16
	if pressure > maxSubtract {
		p = uint16(pressure - maxSubtract)
	}
	v := uint32(p) * 255 / uint32(divisor)
	return uint8(clamp(v, 0, 255))
}

// SmallMotor reports whether the on/off small motor should run.
func SmallMotor(pressure, threshold uint8) bool {
	return pressure > threshold
}

// FeedbackTuning holds the thresholds for both rumble channels.
type FeedbackTuning struct {
	RumbleThreshold     uint8  `yaml:"rumble_threshold"`
	RumbleSubtract      uint8  `yaml:"rumble_subtract"`
	RumbleDivisor       uint16 `yaml:"rumble_divisor"`
	SmallMotorThreshold uint8  `yaml:"small_motor_threshold"`
}

// FeedbackFor drives the small motor from L2 and the large motor from R2.
func FeedbackFor(s domain.ControllerSample, t FeedbackTuning) domain.Feedback {
	return domain.Feedback{
		Small: SmallMotor(s.L2Pressure, t.SmallMotorThreshold),
		Large: Rumble(s.R2Pressure, t.RumbleThreshold, t.RumbleSubtract, t.RumbleDivisor),
	}
}
