package sched

import (
	"sync"
	"time"
)

// Ticker is the part of time.Ticker the tasks use.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc builds a ticker with the given period.
type TickerFunc func(d time.Duration) Ticker

// RealTicker is the TickerFunc used outside tests.
func RealTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// ManualClock hands out tickers that only fire when told to.
type ManualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
	created chan struct{}
}

func NewManualClock() *ManualClock {
	return &ManualClock{created: make(chan struct{}, 1)}
}

// Ticker satisfies TickerFunc.
func (m *ManualClock) Ticker(d time.Duration) Ticker {
	t := &manualTicker{period: d, ch: make(chan time.Time), stop: make(chan struct{})}
	m.mu.Lock()
	m.tickers = append(m.tickers, t)
	m.mu.Unlock()
	select {
	case m.created <- struct{}{}:
	default:
	}
	return t
}

// Fire delivers one tick to a live ticker with period d, waiting for such a
// ticker to exist and for its owner to receive the tick. It reports false if
// that does not happen before timeout.
func (m *ManualClock) Fire(d, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if t := m.live(d); t != nil {
			select {
			case t.ch <- time.Now():
				return true
			case <-t.stop:
				continue
			case <-deadline.C:
				return false
			}
		}
		select {
		case <-m.created:
		case <-time.After(time.Millisecond):
		case <-deadline.C:
			return false
		}
	}
}

// Created counts every ticker built so far, stopped or not.
func (m *ManualClock) Created() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickers)
}

// Live counts tickers that have not been stopped.
func (m *ManualClock) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tickers {
		if !t.stopped() {
			n++
		}
	}
	return n
}

func (m *ManualClock) live(d time.Duration) *manualTicker {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.tickers) - 1; i >= 0; i-- {
		t := m.tickers[i]
		if t.period == d && !t.stopped() {
			return t
		}
	}
	return nil
}

type manualTicker struct {
	period time.Duration
	ch     chan time.Time
	stop   chan struct{}
	once   sync.Once
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               { t.once.Do(func() { close(t.stop) }) }

func (t *manualTicker) stopped() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}
