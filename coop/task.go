package coop

import (
	"context"
	"time"
)

// Task is the view a running task has of itself
// Its methods must only be called from the task's own function
type Task struct {
	rt     *Runtime
	ctx    context.Context
	cancel context.CancelFunc
	resume chan struct{}
	done   chan struct{}

	// Written by the task while it holds the token, read by the runtime after
	// the token is handed back
	wakeAt   time.Time
	seq      uint64
	waitCtx  context.Context
	finished bool
	err      error
}

// Context is cancelled by Handle.Cancel or when the runtime's Run context ends
func (t *Task) Context() context.Context {
	return t.ctx
}

// Wait gives up the token until d has elapsed; other tasks run meanwhile
// Returns early with the context error when ctx or the task is cancelled;
// an already cancelled wait returns without suspending
func (t *Task) Wait(ctx context.Context, d time.Duration) error {
	if ctx == nil {
		ctx = t.ctx
	}
	t.waitCtx = ctx
	defer func() { t.waitCtx = nil }()
	if err := t.interrupted(); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, t.rt.notify)
	defer stop()

	t.wakeAt = time.Now().Add(d)
	t.suspend()
	return t.interrupted()
}

// Yield lets every other ready task run once before continuing
func (t *Task) Yield() error {
	return t.Wait(t.ctx, 0)
}

func (t *Task) suspend() {
	t.seq = t.rt.seq.Add(1)
	t.rt.back <- struct{}{}
	<-t.resume
}

// interrupted returns the error of whichever of the task or wait context ended
func (t *Task) interrupted() error {
	if err := t.ctx.Err(); err != nil {
		return err
	}
	if t.waitCtx != nil {
		return t.waitCtx.Err()
	}
	return nil
}

// Handle lets the spawner observe and cancel a task
type Handle struct {
	t *Task
}

// Cancel cancels the task's context, resuming any pending Wait early
func (h *Handle) Cancel() {
	h.t.cancel()
}

// Done is closed once the task function has returned
func (h *Handle) Done() <-chan struct{} {
	return h.t.done
}

// Err returns the task's result; nil until Done is closed
func (h *Handle) Err() error {
	select {
	case <-h.t.done:
		return h.t.err
	default:
		return nil
	}
}
