package status

import (
	"math"
	"sync/atomic"
)

// AtomicFloat is a float64 gauge stored as its IEEE-754 bits
// The zero value reads 0
type AtomicFloat struct {
	bits atomic.Uint64
}

// Set stores val
func (f *AtomicFloat) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
}

// Get loads the current value
func (f *AtomicFloat) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// SetClamped stores val limited to [lo, hi] and returns what was stored
// NaN stores lo
func (f *AtomicFloat) SetClamped(val, lo, hi float64) float64 {
	switch {
	case math.IsNaN(val) || val < lo:
		val = lo
	case val > hi:
		val = hi
	}
	f.Set(val)
	return val
}
