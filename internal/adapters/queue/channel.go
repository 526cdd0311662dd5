package queue

import (
	"context"
	"sync"

	"github.com/ghalamif/BattleTrack/internal/ports"
)

// Channel is a bounded FIFO between exactly one producer task and one
// consumer task. Values are copied in and out.
type Channel[T any] struct {
	name   string
	ch     chan T
	closed chan struct{}
	once   sync.Once
}

func NewChannel[T any](name string, capacity int) *Channel[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Channel[T]{
		name:   name,
		ch:     make(chan T, capacity),
		closed: make(chan struct{}),
	}
}

func (c *Channel[T]) Name() string { return c.name }

// Send waits for capacity, so a slow consumer stalls the producer instead of
// losing the value.
func (c *Channel[T]) Send(ctx context.Context, v T) error {
	select {
	case <-c.closed:
		return ports.ErrChannelClosed
	default:
	}

	select {
	case c.ch <- v:
		return nil
	case <-c.closed:
		return ports.ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend enqueues v only if there is room; a full channel drops v.
func (c *Channel[T]) TrySend(v T) bool {
	select {
	case <-c.closed:
		return false
	default:
	}

	select {
	case c.ch <- v:
		return true
	default:
		return false
	}
}

func (c *Channel[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	select {
	case v := <-c.ch:
		return v, nil
	case <-c.closed:
		// drain what was queued before the close
		select {
		case v := <-c.ch:
			return v, nil
		default:
			return zero, ports.ErrChannelClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Channel[T]) TryReceive() (T, bool) {
	select {
	case v := <-c.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// C exposes the receive side for select loops.
func (c *Channel[T]) C() <-chan T { return c.ch }

// Done is closed by Close. Values queued before the close remain on C.
func (c *Channel[T]) Done() <-chan struct{} { return c.closed }

func (c *Channel[T]) Len() int { return len(c.ch) }
func (c *Channel[T]) Cap() int { return cap(c.ch) }

// Close wakes blocked senders and receivers. Queued values stay readable.
func (c *Channel[T]) Close() {
	c.once.Do(func() { close(c.closed) })
}

var (
	_ ports.Sender[int]       = (*Channel[int])(nil)
	_ ports.TrySender[int]    = (*Channel[int])(nil)
	_ ports.ChanReceiver[int] = (*Channel[int])(nil)
)
