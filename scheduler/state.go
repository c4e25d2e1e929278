package scheduler

import (
	"sync/atomic"
	"time"

	"github.com/rcrowley/go-metrics"

	"github.com/lixenwraith/spatial-led/status"
)

// State is the scheduler lifecycle position
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// stats caches registry pointers; a nil *stats records nothing
type stats struct {
	ticks    *atomic.Int64
	overruns *atomic.Int64
	running  *atomic.Bool
	state    *status.AtomicString
	elapsed  *status.AtomicFloat
	delta    metrics.Histogram
	busy     metrics.Histogram
}

func newStats(reg *status.Registry, rate float64) *stats {
	reg.Floats.Get("scheduler.rate").Set(rate)
	st := &stats{
		ticks:    reg.Ints.Get("scheduler.ticks"),
		overruns: reg.Ints.Get("scheduler.overruns"),
		running:  reg.Bools.Get("scheduler.running"),
		state:    reg.Strings.Get("scheduler.state"),
		elapsed:  reg.Floats.Get("scheduler.elapsed_s"),
		delta:    reg.Histogram("scheduler.delta_us"),
		busy:     reg.Histogram("scheduler.update_us"),
	}
	st.state.Store(StateIdle.String())
	return st
}

func (st *stats) setState(s State) {
	if st == nil {
		return
	}
	st.state.Store(s.String())
	st.running.Store(s == StateRunning)
}

func (st *stats) tick(f Frame, busy time.Duration) {
	if st == nil {
		return
	}
	st.ticks.Add(1)
	st.elapsed.Set(f.Elapsed.Seconds())
	st.delta.Update(f.Delta.Microseconds())
	st.busy.Update(busy.Microseconds())
}

func (st *stats) overrun() {
	if st == nil {
		return
	}
	st.overruns.Add(1)
}
