package ports

import (
	"context"
	"errors"
)

// ErrChannelClosed is returned by Send/Receive once the channel is closed.
var ErrChannelClosed = errors.New("battletrack: channel closed")

// Sender is the producing end of a command channel. Send blocks until there
// is capacity or ctx ends.
type Sender[T any] interface {
	Send(ctx context.Context, v T) error
}

// TrySender is the producing end of a best-effort channel. TrySend reports
// false when the value was dropped.
type TrySender[T any] interface {
	TrySend(v T) bool
}

// Receiver is the consuming end of a channel.
type Receiver[T any] interface {
	Receive(ctx context.Context) (T, error)
	TryReceive() (T, bool)
}

// ChanReceiver exposes the underlying channel for tasks that select on more
// than one event source.
type ChanReceiver[T any] interface {
	Receiver[T]
	C() <-chan T
	Done() <-chan struct{}
}
