package queue

import "sync"

// Signal holds the most recent value raised by one task for another. Raising
// never blocks and overwrites a value nobody has taken yet.
type Signal[T any] struct {
	mu      sync.Mutex
	value   T
	pending bool
	notify  chan struct{}
}

func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{notify: make(chan struct{}, 1)}
}

func (s *Signal[T]) Raise(v T) {
	s.mu.Lock()
	s.value = v
	s.pending = true
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Take returns the pending value, if any, and clears it.
func (s *Signal[T]) Take() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.value, s.pending
	s.pending = false
	return v, ok
}

// Peek returns the last raised value without clearing it. Before the first
// Raise it returns the zero value.
func (s *Signal[T]) Peek() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Ready fires after a Raise. Call Take after it fires; a stale wake-up with
// nothing pending is possible.
func (s *Signal[T]) Ready() <-chan struct{} { return s.notify }
