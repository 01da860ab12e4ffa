package util

import (
	"context"
	"math/rand"
	"time"
)

var (
	// DefaultDelay is the default pause between remote mutating calls.
	DefaultDelay = 5 * time.Second
	// DefaultJitter is the default maximum deviation from the base delay.
	DefaultJitter = 2 * time.Second
	// DefaultShortDelay is the fixed pause after lookup-only resolutions.
	DefaultShortDelay = 2 * time.Second
)

// Waiter suspends the pipeline between remote calls for a randomized
// interval, keeping the request pattern irregular. It is meant for the
// single-threaded pipeline; there is no token accounting.
type Waiter struct {
	base       time.Duration
	jitter     time.Duration
	shortDelay time.Duration
	rng        *rand.Rand
}

// NewWaiter creates a Waiter with the given base delay and jitter. The
// jitter is clamped to the base so the effective delay never goes negative.
func NewWaiter(base, jitter, shortDelay time.Duration) *Waiter {
	if base <= 0 {
		base = DefaultDelay
	}
	if jitter < 0 {
		jitter = DefaultJitter
	}
	if jitter > base {
		jitter = base
	}
	if shortDelay <= 0 {
		shortDelay = DefaultShortDelay
	}
	return &Waiter{
		base:       base,
		jitter:     jitter,
		shortDelay: shortDelay,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Wait blocks for base ± jitter or until the context is cancelled.
func (w *Waiter) Wait(ctx context.Context) error {
	offset := time.Duration((w.rng.Float64()*2 - 1) * float64(w.jitter))
	return w.sleep(ctx, w.base+offset)
}

// WaitShort blocks for the fixed short delay used after lookup-only calls.
func (w *Waiter) WaitShort(ctx context.Context) error {
	return w.sleep(ctx, w.shortDelay)
}

func (w *Waiter) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
