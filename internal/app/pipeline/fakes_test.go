package pipeline

import (
	"context"
	"sync"

	"github.com/ghalamif/BattleTrack/internal/domain"
	"github.com/ghalamif/BattleTrack/internal/ports"
)

type motorCall struct {
	Side    domain.Side
	Cmd     domain.MotorCommand
	Standby *bool
}

type fakeMotor struct {
	mu       sync.Mutex
	calls    []motorCall
	applyErr error
}

func (m *fakeMotor) Apply(side domain.Side, cmd domain.MotorCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	m.calls = append(m.calls, motorCall{Side: side, Cmd: cmd})
	return nil
}

func (m *fakeMotor) SetStandby(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, motorCall{Standby: &enabled})
	return nil
}

func (m *fakeMotor) failWith(err error) {
	m.mu.Lock()
	m.applyErr = err
	m.mu.Unlock()
}

func (m *fakeMotor) snapshot() []motorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]motorCall(nil), m.calls...)
}

func (m *fakeMotor) applies() []motorCall {
	var out []motorCall
	for _, c := range m.snapshot() {
		if c.Standby == nil {
			out = append(out, c)
		}
	}
	return out
}

func (m *fakeMotor) standbys() []bool {
	var out []bool
	for _, c := range m.snapshot() {
		if c.Standby != nil {
			out = append(out, *c.Standby)
		}
	}
	return out
}

type fakeServo struct {
	mu   sync.Mutex
	duty []float64
	err  error
}

func (s *fakeServo) SetDuty(f float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.duty = append(s.duty, f)
	return nil
}

type fakeLED struct {
	mu     sync.Mutex
	levels []bool
	err    error
}

func (l *fakeLED) Set(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.levels = append(l.levels, on)
	return nil
}

func (l *fakeLED) snapshot() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]bool(nil), l.levels...)
}

type pollResult struct {
	sample domain.ControllerSample
	err    error
}

// fakeInput replays results in order and then repeats the last one.
type fakeInput struct {
	mu       sync.Mutex
	results  []pollResult
	feedback []domain.Feedback
}

func (f *fakeInput) Poll(_ context.Context, fb domain.Feedback) (domain.ControllerSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, fb)
	r := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return r.sample, r.err
}

func (f *fakeInput) set(results ...pollResult) {
	f.mu.Lock()
	f.results = results
	f.mu.Unlock()
}

type recordObs struct {
	mu       sync.Mutex
	counters map[string]float64
	gauges   map[string]float64
	errors   []error
}

func newRecordObs() *recordObs {
	return &recordObs{counters: map[string]float64{}, gauges: map[string]float64{}}
}

func (o *recordObs) LogInfo(string, ...ports.Field) {}

func (o *recordObs) LogError(_ string, err error, _ ...ports.Field) {
	o.mu.Lock()
	o.errors = append(o.errors, err)
	o.mu.Unlock()
}

func (o *recordObs) LogCritical(msg string, err error, fields ...ports.Field) {
	o.LogError(msg, err, fields...)
}

func (o *recordObs) IncCounter(name string, v float64) {
	o.mu.Lock()
	o.counters[name] += v
	o.mu.Unlock()
}

func (o *recordObs) ObserveLatency(string, float64) {}

func (o *recordObs) SetGauge(name string, v float64) {
	o.mu.Lock()
	o.gauges[name] = v
	o.mu.Unlock()
}

func (o *recordObs) counter(name string) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counters[name]
}

func (o *recordObs) gauge(name string) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gauges[name]
}

type fakeJournal struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (j *fakeJournal) Append(e domain.Event) (ports.JournalEntryID, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return 0, j.err
	}
	j.events = append(j.events, e)
	return ports.JournalEntryID(len(j.events)), nil
}

func (j *fakeJournal) Iterate(from ports.JournalEntryID, fn func(ports.JournalEntryID, domain.Event) error) error {
	j.mu.Lock()
	events := append([]domain.Event(nil), j.events...)
	j.mu.Unlock()
	for i, e := range events {
		id := ports.JournalEntryID(i + 1)
		if id < from {
			continue
		}
		if err := fn(id, e); err != nil {
			return err
		}
	}
	return nil
}

func (j *fakeJournal) Stats() ports.JournalStats {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := ports.JournalEntryID(len(j.events))
	if n == 0 {
		return ports.JournalStats{}
	}
	return ports.JournalStats{Oldest: 1, Latest: n}
}

func (j *fakeJournal) snapshot() []domain.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]domain.Event(nil), j.events...)
}
