package sim

import (
	"sync"

	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

// MotorWrite is one call a Motors recorded. For a standby write IsStandby is
// set and Side and Cmd are zero.
type MotorWrite struct {
	Side      domain.Side
	Cmd       domain.MotorCommand
	IsStandby bool
	Standby   bool
}

// Motors records drive writes and can be told to fail.
type Motors struct {
	mu      sync.Mutex
	writes  []MotorWrite
	current [2]domain.MotorCommand
	standby bool
	err     error
}

func (m *Motors) Apply(side domain.Side, cmd domain.MotorCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes = append(m.writes, MotorWrite{Side: side, Cmd: cmd})
	m.current[side] = cmd
	return nil
}

func (m *Motors) SetStandby(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes = append(m.writes, MotorWrite{IsStandby: true, Standby: enabled})
	m.standby = enabled
	return nil
}

// Fail makes every later write return err; nil heals the driver.
func (m *Motors) Fail(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *Motors) Writes() []MotorWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MotorWrite(nil), m.writes...)
}

// State is what the bridge currently outputs.
func (m *Motors) State() (left, right domain.MotorCommand, standby bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current[domain.SideLeft], m.current[domain.SideRight], m.standby
}

type Servo struct {
	mu   sync.Mutex
	duty []float64
	err  error
}

func (s *Servo) SetDuty(fraction float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.duty = append(s.duty, fraction)
	return nil
}

func (s *Servo) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *Servo) Duties() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]float64(nil), s.duty...)
}

type LED struct {
	mu     sync.Mutex
	levels []bool
	err    error
}

func (l *LED) Set(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.levels = append(l.levels, on)
	return nil
}

func (l *LED) Fail(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

func (l *LED) Levels() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]bool(nil), l.levels...)
}

// On is the current level.
func (l *LED) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.levels) > 0 && l.levels[len(l.levels)-1]
}

var (
	_ ports.MotorDriver = (*Motors)(nil)
	_ ports.ServoDriver = (*Servo)(nil)
	_ ports.Indicator   = (*LED)(nil)
)
