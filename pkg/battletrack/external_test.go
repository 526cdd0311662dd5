package battletrack

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPushInputReturnsNewestSample(t *testing.T) {
	p := NewPushInput(time.Second)
	now := time.Unix(100, 0)
	p.now = func() time.Time { return now }

	if _, err := p.Poll(context.Background(), Feedback{}); !errors.Is(err, ErrReadFailed) {
		t.Fatalf("expected ErrReadFailed before the first push, got %v", err)
	}

	s := NeutralSample()
	s.L2Pressure = 200
	p.Push(NeutralSample())
	p.Push(s)

	got, err := p.Poll(context.Background(), Feedback{Small: true, Large: 90})
	if err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if got != s {
		t.Fatalf("expected newest sample, got %+v", got)
	}
	if fb := p.Feedback(); !fb.Small || fb.Large != 90 {
		t.Fatalf("expected feedback to be recorded, got %+v", fb)
	}

	now = now.Add(2 * time.Second)
	if _, err := p.Poll(context.Background(), Feedback{}); !errors.Is(err, ErrReadFailed) {
		t.Fatalf("expected stale sample to fail, got %v", err)
	}
}

func TestPushInputHonoursContext(t *testing.T) {
	p := NewPushInput(0)
	p.Push(NeutralSample())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Poll(ctx, Feedback{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if _, err := p.Poll(context.Background(), Feedback{}); err != nil {
		t.Fatalf("staleness disabled, got %v", err)
	}
}
