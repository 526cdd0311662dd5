// Package control holds the pure arithmetic between raw pad bytes and
// actuator commands: stick normalization, track mixing, rumble scaling and
// servo mapping. Nothing here blocks or keeps state.
package control

import (
	"golang.org/x/exp/constraints"

	"github.com/ghalamif/BattleTrack/internal/domain"
)

func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Normalize maps a raw axis byte to [-100, 100]. Bytes inside [lo, hi] map to
// 0; outside the band the offset is measured from the band edge, so output
// grows from 0 at the edge to ±100 at the rail.
func Normalize(raw, lo, hi uint8) int8 {
	switch {
	case raw < lo:
		v := -int(lo-raw) * domain.MaxCommand / int(lo)
		return int8(clamp(v, -domain.MaxCommand, domain.MaxCommand))
	case raw > hi:
		v := int(raw-hi) * domain.MaxCommand / (255 - int(hi))
		return int8(clamp(v, -domain.MaxCommand, domain.MaxCommand))
	default:
		return 0
	}
}

// ServoAngle maps a raw axis byte linearly onto [0, 180] with no dead zone.
func ServoAngle(raw uint8) uint8 {
	return uint8(uint32(raw) * domain.MaxServoAngle / 255)
}

// ServoDuty interpolates the pulse duty for angle between the duties of the
// 0° and 180° pulse widths.
func ServoDuty(angle uint8, minDuty, maxDuty float64) float64 {
	a := clamp(angle, 0, domain.MaxServoAngle)
	return minDuty + (maxDuty-minDuty)*float64(a)/domain.MaxServoAngle
}
