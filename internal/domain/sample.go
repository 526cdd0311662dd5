package domain

// AxisCenter is the raw value an un-actuated analog stick reports.
const AxisCenter = 128

// ControllerSample is one poll worth of pad input. It is a plain value and is
// copied, never shared, between the controller and actuation units.
type ControllerSample struct {
	LeftX  uint8 `yaml:"lx" json:"lx"`
	LeftY  uint8 `yaml:"ly" json:"ly"`
	RightX uint8 `yaml:"rx" json:"rx"`
	RightY uint8 `yaml:"ry" json:"ry"`

	L2Pressure uint8 `yaml:"l2" json:"l2"`
	R2Pressure uint8 `yaml:"r2" json:"r2"`

	Buttons ButtonMask `yaml:"buttons" json:"buttons"`
}

// NeutralSample returns a sample with both sticks centred and nothing pressed.
func NeutralSample() ControllerSample {
	return ControllerSample{
		LeftX:  AxisCenter,
		LeftY:  AxisCenter,
		RightX: AxisCenter,
		RightY: AxisCenter,
	}
}

// Reading is what the input task hands to the decision task for one cycle.
// Lost marks a transient read failure: Sample is meaningless in that case.
type Reading struct {
	Sample ControllerSample
	Lost   bool
}

// Feedback carries the two independent rumble channels piggy-backed on the
// next poll.
type Feedback struct {
	Small bool
	Large uint8
}
