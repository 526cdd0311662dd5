// Package sched runs the bot's tasks. A Unit is one execution unit: a named
// group of long-lived tasks sharing a context, started together and awaited
// together.
package sched

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ghalamif/BattleTrack/internal/ports"
)

// Task loops until ctx ends. Returning nil or a context error is a clean exit.
type Task func(ctx context.Context) error

type Unit struct {
	name string
	obs  ports.Observability

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	errs []error
}

// NewUnit derives the unit's context from parent. Cancelling parent stops
// every task of the unit.
func NewUnit(parent context.Context, name string, obs ports.Observability) *Unit {
	ctx, cancel := context.WithCancel(parent)
	return &Unit{name: name, obs: obs, ctx: ctx, cancel: cancel}
}

func (u *Unit) Name() string { return u.name }

// Go starts fn on its own goroutine.
func (u *Unit) Go(task string, fn Task) {
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		u.obs.LogInfo("task_started", ports.Field{Key: "unit", Value: u.name}, ports.Field{Key: "task", Value: task})

		err := fn(u.ctx)
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ports.ErrChannelClosed) {
			u.obs.LogInfo("task_stopped", ports.Field{Key: "unit", Value: u.name}, ports.Field{Key: "task", Value: task})
			return
		}

		u.obs.LogCritical("task_failed", err, ports.Field{Key: "unit", Value: u.name}, ports.Field{Key: "task", Value: task})
		u.mu.Lock()
		u.errs = append(u.errs, fmt.Errorf("%s/%s: %w", u.name, task, err))
		u.mu.Unlock()
	}()
}

// Stop cancels the unit's context. Tasks observe it at their next wait.
func (u *Unit) Stop() { u.cancel() }

// Wait blocks until every task returned or ctx ends, and joins the task
// errors.
func (u *Unit) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		u.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("unit %s: %w", u.name, ctx.Err())
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	return errors.Join(u.errs...)
}

// Sleep waits for d or until ctx ends, whichever is first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
