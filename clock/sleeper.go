package clock

import (
	"context"
	"runtime"
	"time"
)

// DefaultSpin is the final slice of a wait spent polling instead of sleeping
// OS timers routinely overshoot by around a millisecond; two cover the tail
const DefaultSpin = 2 * time.Millisecond

// HybridSleeper waits with a timer for the bulk of a duration and busy-polls
// the remainder against its time source for sub-millisecond accuracy
type HybridSleeper struct {
	time Source
	spin time.Duration
}

// NewHybridSleeper creates a sleeper over src; a negative spin selects DefaultSpin
// A nil src uses the system clock
func NewHybridSleeper(src Source, spin time.Duration) *HybridSleeper {
	if src == nil {
		src = NewTimeProvider()
	}
	if spin < 0 {
		spin = DefaultSpin
	}
	return &HybridSleeper{time: src, spin: spin}
}

// Spin returns the busy-poll window
func (h *HybridSleeper) Spin() time.Duration {
	return h.spin
}

// Wait blocks for d or until ctx is done, returning ctx's error in that case
func (h *HybridSleeper) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	deadline := h.time.Now().Add(d)

	if coarse := d - h.spin; coarse > 0 {
		timer := time.NewTimer(coarse)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	for h.time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		runtime.Gosched()
	}
	return nil
}
