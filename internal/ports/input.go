package ports

import (
	"context"
	"errors"

	"github.com/ghalamif/BattleTrack/internal/domain"
)

var (
	// ErrReadFailed marks a transient transport failure; the caller retries
	// after the configured read timeout.
	ErrReadFailed = errors.New("battletrack: controller read failed")
	// ErrUnexpectedDevice marks a response from a pad of the wrong class; the
	// cycle is skipped without delay.
	ErrUnexpectedDevice = errors.New("battletrack: unexpected controller type")
)

// InputDevice polls the pad once, sending fb to its rumble motors in the same
// transaction.
type InputDevice interface {
	Poll(ctx context.Context, fb domain.Feedback) (domain.ControllerSample, error)
}
