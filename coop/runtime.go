// Package coop runs tasks cooperatively on a single execution token
//
// Each task owns a goroutine, but only the task holding the token runs; the
// rest are parked until the Runtime hands the token back to them. A task gives
// the token up only inside Wait or Yield, so code between two suspension points
// never interleaves with another task.
package coop

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/spatial-led/clock"
	"github.com/lixenwraith/spatial-led/core"
)

// ErrStarted is returned when Run is called more than once
var ErrStarted = errors.New("coop: runtime already started")

// Option configures a Runtime
type Option func(*Runtime)

// WithSpin sets the busy-poll window used while idling until the next wake time
func WithSpin(d time.Duration) Option {
	return func(rt *Runtime) {
		rt.spin = d
	}
}

// Runtime drives tasks one at a time in wake-time order
type Runtime struct {
	base     context.Context
	shutdown context.CancelFunc
	spin     time.Duration
	sleeper  *clock.HybridSleeper

	mu         sync.Mutex
	tasks      []*Task
	pending    bool
	idleCancel context.CancelFunc

	seq     atomic.Uint64
	started atomic.Bool
	back    chan struct{}
}

// New creates an idle runtime
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		spin: clock.DefaultSpin,
		back: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.base, rt.shutdown = context.WithCancel(context.Background())
	rt.sleeper = clock.NewHybridSleeper(clock.NewTimeProvider(), rt.spin)
	return rt
}

// Go registers fn as a new task; it first runs once Run hands it the token
// Safe to call from inside a running task
func (rt *Runtime) Go(fn func(*Task) error) *Handle {
	ctx, cancel := context.WithCancel(rt.base)
	t := &Task{
		rt:     rt,
		ctx:    ctx,
		cancel: cancel,
		resume: make(chan struct{}),
		done:   make(chan struct{}),
		wakeAt: time.Now(),
		seq:    rt.seq.Add(1),
	}
	context.AfterFunc(ctx, rt.notify)

	rt.mu.Lock()
	rt.tasks = append(rt.tasks, t)
	rt.mu.Unlock()
	rt.notify()

	core.Go(func() {
		<-t.resume
		t.err = fn(t)
		t.finished = true
		t.cancel()
		rt.back <- struct{}{}
	})
	return &Handle{t: t}
}

// Run drives every task until all have returned and yields their joined errors
// Cancelling ctx cancels every task's context; tasks are then resumed one at a
// time so each can observe it and return
func (rt *Runtime) Run(ctx context.Context) error {
	if !rt.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	stop := context.AfterFunc(ctx, rt.shutdown)
	defer stop()

	core.Logger().Debug("coop runtime started", "tasks", rt.Len())

	var errs []error
	for {
		t, wait, ok := rt.next()
		if !ok {
			break
		}
		if wait > 0 {
			rt.idle(wait)
			continue
		}
		if rt.step(t) && t.err != nil {
			errs = append(errs, t.err)
		}
	}

	core.Logger().Debug("coop runtime finished", "errors", len(errs))
	return errors.Join(errs...)
}

// Len returns the number of unfinished tasks
func (rt *Runtime) Len() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.tasks)
}

// notify wakes the runtime out of an idle wait so it re-evaluates readiness
func (rt *Runtime) notify() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.pending = true
	if rt.idleCancel != nil {
		rt.idleCancel()
	}
}

// next picks the task with the earliest wake time, interrupted tasks first,
// and how long until it is due
func (rt *Runtime) next() (*Task, time.Duration, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if len(rt.tasks) == 0 {
		return nil, 0, false
	}

	var best *Task
	var bestAt time.Time
	for _, t := range rt.tasks {
		at := t.wakeAt
		if t.interrupted() != nil {
			at = time.Time{}
		}
		if best == nil || at.Before(bestAt) || (at.Equal(bestAt) && t.seq < best.seq) {
			best, bestAt = t, at
		}
	}
	return best, time.Until(bestAt), true
}

// idle waits up to d, returning early if notify fires
func (rt *Runtime) idle(d time.Duration) {
	rt.mu.Lock()
	if rt.pending {
		rt.pending = false
		rt.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	rt.idleCancel = cancel
	rt.mu.Unlock()

	_ = rt.sleeper.Wait(ctx, d)

	rt.mu.Lock()
	rt.idleCancel = nil
	rt.pending = false
	rt.mu.Unlock()
	cancel()
}

// step hands the token to t and blocks until t suspends or returns
// Reports whether t finished
func (rt *Runtime) step(t *Task) bool {
	t.resume <- struct{}{}
	<-rt.back
	if !t.finished {
		return false
	}

	rt.mu.Lock()
	rt.tasks = slices.DeleteFunc(rt.tasks, func(o *Task) bool { return o == t })
	rt.mu.Unlock()
	close(t.done)
	return true
}
