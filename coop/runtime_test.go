package coop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeInterleavesWaits(t *testing.T) {
	rt := New()
	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	for _, name := range []string{"a", "b"} {
		rt.Go(func(task *Task) error {
			for range 3 {
				record(name)
				if err := task.Wait(task.Context(), 5*time.Millisecond); err != nil {
					return err
				}
			}
			return nil
		})
	}

	require.NoError(t, rt.Run(context.Background()))
	assert.Equal(t, []string{"a", "b", "a", "b", "a", "b"}, order)
	assert.Zero(t, rt.Len())
}

func TestRuntimeSingleToken(t *testing.T) {
	rt := New()
	var active atomic.Int32
	var overlaps atomic.Int32

	for range 4 {
		rt.Go(func(task *Task) error {
			for range 50 {
				if active.Add(1) != 1 {
					overlaps.Add(1)
				}
				time.Sleep(10 * time.Microsecond)
				active.Add(-1)
				if err := task.Yield(); err != nil {
					return err
				}
			}
			return nil
		})
	}

	require.NoError(t, rt.Run(context.Background()))
	assert.Zero(t, overlaps.Load())
}

func TestRuntimeJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	rt := New()
	ha := rt.Go(func(*Task) error { return errA })
	hb := rt.Go(func(*Task) error { return errB })
	hc := rt.Go(func(*Task) error { return nil })

	err := rt.Run(context.Background())
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	for _, h := range []*Handle{ha, hb, hc} {
		select {
		case <-h.Done():
		default:
			t.Fatal("handle not done after Run")
		}
	}
	assert.Equal(t, errA, ha.Err())
	assert.NoError(t, hc.Err())

	assert.ErrorIs(t, rt.Run(context.Background()), ErrStarted)
}

func TestHandleCancelResumesWait(t *testing.T) {
	rt := New()
	h := rt.Go(func(task *Task) error {
		return task.Wait(task.Context(), time.Hour)
	})
	assert.NoError(t, h.Err())

	rt.Go(func(task *Task) error {
		if err := task.Wait(task.Context(), 5*time.Millisecond); err != nil {
			return err
		}
		h.Cancel()
		return nil
	})

	start := time.Now()
	err := rt.Run(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, h.Err(), context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunContextCancelStopsTasks(t *testing.T) {
	rt := New()
	for range 3 {
		rt.Go(func(task *Task) error {
			for {
				if err := task.Wait(context.Background(), time.Hour); err != nil {
					return err
				}
			}
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := rt.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Zero(t, rt.Len())
}

func TestWaitOnCancelledContextDoesNotSuspend(t *testing.T) {
	rt := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got error
	rt.Go(func(task *Task) error {
		got = task.Wait(ctx, time.Hour)
		return nil
	})
	require.NoError(t, rt.Run(context.Background()))
	assert.ErrorIs(t, got, context.Canceled)
}

func TestGoFromTask(t *testing.T) {
	rt := New()
	var ran atomic.Bool
	rt.Go(func(task *Task) error {
		child := task.rt.Go(func(*Task) error {
			ran.Store(true)
			return nil
		})
		for {
			select {
			case <-child.Done():
				return nil
			default:
			}
			if err := task.Yield(); err != nil {
				return err
			}
		}
	})

	require.NoError(t, rt.Run(context.Background()))
	assert.True(t, ran.Load())
}
