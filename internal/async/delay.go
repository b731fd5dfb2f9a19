// Package async holds the pieces that stand between a request and a slow
// result: pluggable delays and last-write-wins result slots.
package async

import (
	"context"
	"sync/atomic"
	"time"
)

// Delayer pauses a request. Implementations must return ctx.Err() when the
// context ends first.
type Delayer interface {
	Wait(ctx context.Context) error
}

// Fixed waits for a constant duration.
type Fixed time.Duration

// Wait implements Delayer.
func (d Fixed) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// None returns immediately.
var None Delayer = Fixed(0)

// DelayFunc adapts a function to Delayer.
type DelayFunc func(ctx context.Context) error

// Wait implements Delayer.
func (f DelayFunc) Wait(ctx context.Context) error { return f(ctx) }

// Adjustable is a Fixed delay that can be changed while requests are running.
type Adjustable struct {
	d atomic.Int64
}

// NewAdjustable starts at d.
func NewAdjustable(d time.Duration) *Adjustable {
	a := &Adjustable{}
	a.Set(d)
	return a
}

// Set replaces the delay used by later waits.
func (a *Adjustable) Set(d time.Duration) { a.d.Store(int64(d)) }

// Duration returns the current delay.
func (a *Adjustable) Duration() time.Duration { return time.Duration(a.d.Load()) }

// Wait implements Delayer.
func (a *Adjustable) Wait(ctx context.Context) error {
	return Fixed(a.Duration()).Wait(ctx)
}
