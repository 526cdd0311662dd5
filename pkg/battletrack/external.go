package battletrack

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PushInput is an InputDevice fed by the caller, for pads read by another
// library or relayed over a network. Each Poll returns the newest pushed
// sample; a sample older than the staleness limit counts as a failed read so
// the controller treats a silent source as a lost link.
type PushInput struct {
	mu       sync.Mutex
	sample   ControllerSample
	at       time.Time
	feedback Feedback
	stale    time.Duration
	now      func() time.Time
}

// NewPushInput builds a PushInput. A non-positive stale disables the
// staleness check once the first sample arrived.
func NewPushInput(stale time.Duration) *PushInput {
	return &PushInput{stale: stale, now: time.Now}
}

// Push records s as the pad's current state.
func (p *PushInput) Push(s ControllerSample) {
	p.mu.Lock()
	p.sample = s
	p.at = p.now()
	p.mu.Unlock()
}

// Feedback is the rumble request carried by the most recent poll, for
// callers that forward it to the real pad.
func (p *PushInput) Feedback() Feedback {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.feedback
}

func (p *PushInput) Poll(ctx context.Context, fb Feedback) (ControllerSample, error) {
	if err := ctx.Err(); err != nil {
		return ControllerSample{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.feedback = fb

	if p.at.IsZero() {
		return ControllerSample{}, fmt.Errorf("push input: no sample yet: %w", ErrReadFailed)
	}
	if p.stale > 0 {
		if age := p.now().Sub(p.at); age > p.stale {
			return ControllerSample{}, fmt.Errorf("push input: sample is %s old: %w", age, ErrReadFailed)
		}
	}
	return p.sample, nil
}
