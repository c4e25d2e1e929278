package driver

import (
	"iter"
	"sync"
	"time"

	"github.com/lixenwraith/spatial-led/clock"
	"github.com/lixenwraith/spatial-led/sled"
)

// Throttle forwards at most one frame per interval to the wrapped sink
// Frames arriving early are dropped, not queued
type Throttle[T any] struct {
	next     Sink[T]
	interval time.Duration
	time     clock.Source

	mu      sync.Mutex
	last    time.Time
	sent    bool
	dropped uint64
}

// NewThrottle wraps next; a nil src reads the real clock
func NewThrottle[T any](next Sink[T], interval time.Duration, src clock.Source) *Throttle[T] {
	if src == nil {
		src = clock.NewTimeProvider()
	}
	return &Throttle[T]{next: next, interval: interval, time: src}
}

// Dropped returns the number of frames discarded so far
func (t *Throttle[T]) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

func (t *Throttle[T]) Write(points iter.Seq[sled.Point[T]]) error {
	t.mu.Lock()
	now := t.time.Now()
	if t.sent && now.Sub(t.last) < t.interval {
		t.dropped++
		t.mu.Unlock()
		return nil
	}
	t.last = now
	t.sent = true
	t.mu.Unlock()

	return t.next.Write(points)
}
