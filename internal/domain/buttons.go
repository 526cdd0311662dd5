package domain

import "strings"

// ButtonMask is the pad's digital button state, one bit per button, set when
// the button is held.
type ButtonMask uint16

// Bit positions follow the DualShock 2 wire order of the two button bytes.
const (
	SelectBit   = 0
	L3Bit       = 1
	R3Bit       = 2
	StartBit    = 3
	UpBit       = 4
	RightBit    = 5
	DownBit     = 6
	LeftBit     = 7
	L2Bit       = 8
	R2Bit       = 9
	L1Bit       = 10
	R1Bit       = 11
	TriangleBit = 12
	CircleBit   = 13
	CrossBit    = 14
	SquareBit   = 15
)

const (
	ButtonSelect   ButtonMask = 1 << SelectBit
	ButtonL3       ButtonMask = 1 << L3Bit
	ButtonR3       ButtonMask = 1 << R3Bit
	ButtonStart    ButtonMask = 1 << StartBit
	ButtonUp       ButtonMask = 1 << UpBit
	ButtonRight    ButtonMask = 1 << RightBit
	ButtonDown     ButtonMask = 1 << DownBit
	ButtonLeft     ButtonMask = 1 << LeftBit
	ButtonL2       ButtonMask = 1 << L2Bit
	ButtonR2       ButtonMask = 1 << R2Bit
	ButtonL1       ButtonMask = 1 << L1Bit
	ButtonR1       ButtonMask = 1 << R1Bit
	ButtonTriangle ButtonMask = 1 << TriangleBit
	ButtonCircle   ButtonMask = 1 << CircleBit
	ButtonCross    ButtonMask = 1 << CrossBit
	ButtonSquare   ButtonMask = 1 << SquareBit
)

var buttonNames = [16]string{
	"select", "l3", "r3", "start", "up", "right", "down", "left",
	"l2", "r2", "l1", "r1", "triangle", "circle", "cross", "square",
}

// ButtonMaskFromWire decodes the two active-low button bytes of a poll
// response. The first byte carries bits 0-7, the second bits 8-15.
func ButtonMaskFromWire(lo, hi byte) ButtonMask {
	return ButtonMask(^lo) | ButtonMask(^hi)<<8
}

// Wire encodes the mask back into its two active-low bytes.
func (m ButtonMask) Wire() (lo, hi byte) {
	return ^byte(m), ^byte(m >> 8)
}

// Has reports whether every button in b is held.
func (m ButtonMask) Has(b ButtonMask) bool {
	return b != 0 && m&b == b
}

func (m ButtonMask) Start() bool  { return m.Has(ButtonStart) }
func (m ButtonMask) Select() bool { return m.Has(ButtonSelect) }

// Pressed returns the buttons that went from released in prev to held in m.
func (m ButtonMask) Pressed(prev ButtonMask) ButtonMask {
	return m &^ prev
}

// ParseButton resolves a button name ("start", "cross", ...) to its mask.
func ParseButton(name string) (ButtonMask, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for bit, n := range buttonNames {
		if n == name {
			return 1 << bit, true
		}
	}
	return 0, false
}

// UnmarshalYAML accepts either a list of button names or a raw integer so
// scenario files stay readable.
func (m *ButtonMask) UnmarshalYAML(unmarshal func(any) error) error {
	var names []string
	if err := unmarshal(&names); err == nil {
		var out ButtonMask
		for _, n := range names {
			b, ok := ParseButton(n)
			if !ok {
				return &UnknownButtonError{Name: n}
			}
			out |= b
		}
		*m = out
		return nil
	}
	var raw uint16
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*m = ButtonMask(raw)
	return nil
}

func (m ButtonMask) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for bit, n := range buttonNames {
		if m&(1<<bit) != 0 {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "+")
}

// UnknownButtonError is returned when a button name cannot be resolved.
type UnknownButtonError struct {
	Name string
}

func (e *UnknownButtonError) Error() string {
	return "unknown button " + `"` + e.Name + `"`
}
