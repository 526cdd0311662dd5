// Package sim stands in for the hardware: a scripted pad and actuators that
// record what they were told.
package sim

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// Scenario is a scripted pilot. Each step holds one pad state for Repeat
// polls, or fails those polls.
type Scenario struct {
	Name  string `yaml:"name"`
	Loop  bool   `yaml:"loop"`
	Steps []Step `yaml:"steps"`
}

type Step struct {
	Repeat int
	Sample domain.ControllerSample
	// Fail is "", "read" or "unexpected".
	Fail string
}

// stepSpec is the on-disk form; omitted sticks rest at center.
type stepSpec struct {
	Repeat  int               `yaml:"repeat"`
	Fail    string            `yaml:"fail"`
	LX      *uint8            `yaml:"lx"`
	LY      *uint8            `yaml:"ly"`
	RX      *uint8            `yaml:"rx"`
	RY      *uint8            `yaml:"ry"`
	L2      uint8             `yaml:"l2"`
	R2      uint8             `yaml:"r2"`
	Buttons domain.ButtonMask `yaml:"buttons"`
}

func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	var spec stepSpec
	if err := node.Decode(&spec); err != nil {
		return err
	}
	switch spec.Fail {
	case "", "read", "unexpected":
	default:
		return fmt.Errorf("line %d: fail must be read or unexpected, got %q", node.Line, spec.Fail)
	}
	if spec.Repeat < 0 {
		return fmt.Errorf("line %d: repeat must not be negative", node.Line)
	}
	if spec.Repeat == 0 {
		spec.Repeat = 1
	}

	axis := func(v *uint8) uint8 {
		if v == nil {
			return domain.AxisCenter
		}
		return *v
	}
	*s = Step{
		Repeat: spec.Repeat,
		Fail:   spec.Fail,
		Sample: domain.ControllerSample{
			LeftX:      axis(spec.LX),
			LeftY:      axis(spec.LY),
			RightX:     axis(spec.RX),
			RightY:     axis(spec.RY),
			L2Pressure: spec.L2,
			R2Pressure: spec.R2,
			Buttons:    spec.Buttons,
		},
	}
	return nil
}

func ParseScenario(raw []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &sc, nil
}

func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScenario(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return sc, nil
}

// Polls is how many polls one pass over the scenario takes.
func (sc *Scenario) Polls() int {
	n := 0
	for _, st := range sc.Steps {
		n += st.Repeat
	}
	return n
}

// Input plays a Scenario as a ports.InputDevice. Once the script is used up
// it keeps reporting a neutral pad, unless the scenario loops.
type Input struct {
	mu       sync.Mutex
	sc       *Scenario
	step     int
	left     int
	polls    int
	feedback []domain.Feedback

	done     chan struct{}
	doneOnce sync.Once
}

func NewInput(sc *Scenario) *Input {
	if sc == nil {
		sc = &Scenario{}
	}
	in := &Input{sc: sc, done: make(chan struct{})}
	if len(sc.Steps) > 0 {
		in.left = sc.Steps[0].Repeat
	} else {
		in.finish()
	}
	return in
}

func (in *Input) Poll(ctx context.Context, fb domain.Feedback) (domain.ControllerSample, error) {
	if err := ctx.Err(); err != nil {
		return domain.ControllerSample{}, err
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.polls++
	in.feedback = append(in.feedback, fb)

	if in.step >= len(in.sc.Steps) {
		return domain.NeutralSample(), nil
	}

	st := in.sc.Steps[in.step]
	in.advance()

	switch st.Fail {
	case "read":
		return domain.ControllerSample{}, fmt.Errorf("scripted: %w", ports.ErrReadFailed)
	case "unexpected":
		return domain.ControllerSample{}, fmt.Errorf("scripted: %w", ports.ErrUnexpectedDevice)
	}
	return st.Sample, nil
}

func (in *Input) advance() {
	in.left--
	if in.left > 0 {
		return
	}
	in.step++
	if in.step >= len(in.sc.Steps) {
		if !in.sc.Loop {
			in.finish()
			return
		}
		in.step = 0
	}
	in.left = in.sc.Steps[in.step].Repeat
}

func (in *Input) finish() { in.doneOnce.Do(func() { close(in.done) }) }

// Done is closed once a non-looping scenario has been played out.
func (in *Input) Done() <-chan struct{} { return in.done }

// Feedback returns every rumble request seen so far.
func (in *Input) Feedback() []domain.Feedback {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]domain.Feedback(nil), in.feedback...)
}

func (in *Input) Polls() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.polls
}

var _ ports.InputDevice = (*Input)(nil)
