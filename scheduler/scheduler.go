// Package scheduler drives an update function over a Sled at a fixed rate
//
// One tick loop serves two execution modes that differ only in how the wait
// between ticks is realized: Start blocks the calling goroutine and waits with
// a sleep-then-spin Waiter, Spawn runs the same loop as a cooperative task that
// yields its token for the wait.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/spatial-led/clock"
	"github.com/lixenwraith/spatial-led/coop"
	"github.com/lixenwraith/spatial-led/core"
	"github.com/lixenwraith/spatial-led/sled"
	"github.com/lixenwraith/spatial-led/status"
)

var (
	// ErrInvalidRate is returned for a non-positive or non-finite tick rate
	ErrInvalidRate = errors.New("scheduler: rate must be positive and finite")

	// ErrNotIdle is returned when starting a scheduler that already ran
	ErrNotIdle = errors.New("scheduler: not idle")

	// ErrUpdateFailure matches every UpdateError
	ErrUpdateFailure = errors.New("scheduler: update failed")
)

// UpdateError carries the update function's error and the tick it failed on
type UpdateError struct {
	Tick uint64
	Err  error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("scheduler: update failed at tick %d: %v", e.Tick, e.Err)
}

// Unwrap returns the update function's error verbatim
func (e *UpdateError) Unwrap() error { return e.Err }

// Is matches ErrUpdateFailure
func (e *UpdateError) Is(target error) bool { return target == ErrUpdateFailure }

// Frame is the timing context of one tick
type Frame struct {
	Elapsed time.Duration // since the loop started
	Delta   time.Duration // since the previous update returned
	Tick    uint64        // zero-based
}

// UpdateFunc mutates the sled for one tick; a non-nil error stops the scheduler
type UpdateFunc[T any] func(s *sled.Sled[T], f Frame) error

// Waiter realizes the wait between ticks
// Implemented by clock.HybridSleeper, clock.MockTimeProvider and coop.Task
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// Option configures a Scheduler
type Option func(*config)

type config struct {
	time   clock.Source
	waiter Waiter
	spin   time.Duration
	status *status.Registry
}

// WithTimeProvider sets the time source used for frame accounting
func WithTimeProvider(src clock.Source) Option {
	return func(c *config) {
		c.time = src
	}
}

// WithWaiter replaces the blocking-mode waiter
func WithWaiter(w Waiter) Option {
	return func(c *config) {
		c.waiter = w
	}
}

// WithSpin sets the busy-poll window of the default blocking waiter
func WithSpin(d time.Duration) Option {
	return func(c *config) {
		c.spin = d
	}
}

// WithStatus publishes tick metrics to reg
func WithStatus(reg *status.Registry) Option {
	return func(c *config) {
		c.status = reg
	}
}

// Scheduler runs an update function at a target rate
// Lifecycle is Idle → Running → Stopped; a stopped scheduler never restarts
type Scheduler[T any] struct {
	rate   float64
	period time.Duration
	time   clock.Source
	waiter Waiter

	state    atomic.Int32
	stopReq  atomic.Bool
	ticks    atomic.Uint64
	overruns atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc

	stats *stats
}

// New creates an idle scheduler ticking rate times per second
func New[T any](rate float64, opts ...Option) (*Scheduler[T], error) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	period := time.Duration(float64(time.Second) / rate)
	if period <= 0 {
		return nil, fmt.Errorf("%w: %v exceeds clock resolution", ErrInvalidRate, rate)
	}

	c := config{spin: clock.DefaultSpin}
	for _, opt := range opts {
		opt(&c)
	}
	if c.time == nil {
		c.time = clock.NewTimeProvider()
	}
	if c.waiter == nil {
		c.waiter = clock.NewHybridSleeper(c.time, c.spin)
	}

	s := &Scheduler[T]{
		rate:   rate,
		period: period,
		time:   c.time,
		waiter: c.waiter,
	}
	if c.status != nil {
		s.stats = newStats(c.status, rate)
	}
	return s, nil
}

// Period returns the target interval between tick starts
func (s *Scheduler[T]) Period() time.Duration { return s.period }

// Rate returns the target ticks per second
func (s *Scheduler[T]) Rate() float64 { return s.rate }

// State returns the lifecycle state
func (s *Scheduler[T]) State() State { return State(s.state.Load()) }

// IsRunning reports whether the tick loop is active
func (s *Scheduler[T]) IsRunning() bool { return s.State() == StateRunning }

// Ticks returns the number of completed update calls
func (s *Scheduler[T]) Ticks() uint64 { return s.ticks.Load() }

// Overruns returns the number of ticks whose update consumed the whole period
func (s *Scheduler[T]) Overruns() uint64 { return s.overruns.Load() }

// Start runs the tick loop on the calling goroutine until Stop, an update
// error or ctx cancellation
// Returns nil after Stop, an *UpdateError after a failed update, ctx.Err()
// after cancellation
func (s *Scheduler[T]) Start(ctx context.Context, topo *sled.Sled[T], update UpdateFunc[T]) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrNotIdle
	}
	return s.run(ctx, topo, update, s.waiter)
}

// Spawn runs the tick loop as a task of rt; each wait yields rt's token
// The task's result follows Start's contract and is read from the Handle
func (s *Scheduler[T]) Spawn(rt *coop.Runtime, topo *sled.Sled[T], update UpdateFunc[T]) *coop.Handle {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return rt.Go(func(*coop.Task) error { return ErrNotIdle })
	}
	return rt.Go(func(task *coop.Task) error {
		return s.run(task.Context(), topo, update, task)
	})
}

// Stop ends the loop; safe from any goroutine and from inside the update
// Called from the update, the loop ends once that update returns; called
// externally, a pending wait is interrupted. Stopping an idle scheduler
// moves it straight to Stopped
func (s *Scheduler[T]) Stop() {
	s.stopReq.Store(true)
	if s.state.CompareAndSwap(int32(StateIdle), int32(StateStopped)) {
		s.stats.setState(StateStopped)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// run is the tick loop shared by both execution modes
func (s *Scheduler[T]) run(parent context.Context, topo *sled.Sled[T], update UpdateFunc[T], w Waiter) (err error) {
	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	log := core.Logger().With("rate", s.rate)
	log.Info("scheduler started", "period", s.period)
	s.stats.setState(StateRunning)

	defer func() {
		cancel()
		s.state.Store(int32(StateStopped))
		s.stats.setState(StateStopped)
		if err != nil {
			log.Warn("scheduler stopped", "ticks", s.ticks.Load(), "overruns", s.overruns.Load(), "error", err)
		} else {
			log.Info("scheduler stopped", "ticks", s.ticks.Load(), "overruns", s.overruns.Load())
		}
	}()

	start := s.time.Now()
	last := start
	for {
		if s.stopReq.Load() {
			return nil
		}
		if err := parent.Err(); err != nil {
			return err
		}

		now := s.time.Now()
		frame := Frame{
			Elapsed: now.Sub(start),
			Delta:   now.Sub(last),
			Tick:    s.ticks.Load(),
		}
		if err := update(topo, frame); err != nil {
			return &UpdateError{Tick: frame.Tick, Err: err}
		}
		after := s.time.Now()
		last = after
		s.ticks.Add(1)
		busy := after.Sub(now)
		s.stats.tick(frame, busy)

		if s.stopReq.Load() {
			return nil
		}

		remaining := s.period - busy
		if remaining <= 0 {
			s.overruns.Add(1)
			s.stats.overrun()
			continue
		}
		if err := w.Wait(ctx, remaining); err != nil {
			if s.stopReq.Load() {
				return nil
			}
			if perr := parent.Err(); perr != nil {
				return perr
			}
			return err
		}
	}
}
