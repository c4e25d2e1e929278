// Package status holds lock-free runtime metrics
// Producers cache metric pointers once and write atomics on the hot path;
// readers walk the registry in key order
package status

import (
	"fmt"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/rcrowley/go-metrics"
)

// Histogram reservoir parameters, the go-metrics defaults for a forward-decaying sample
const (
	sampleSize  = 1028
	sampleAlpha = 0.015
)

// Registry is the central metrics facade
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]

	histograms metrics.Registry
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:      NewMetricMap[atomic.Bool](),
		Ints:       NewMetricMap[atomic.Int64](),
		Floats:     NewMetricMap[AtomicFloat](),
		Strings:    NewMetricMap[AtomicString](),
		histograms: metrics.NewRegistry(),
	}
}

// Histogram returns the named distribution, creating it on first use
func (r *Registry) Histogram(name string) metrics.Histogram {
	return metrics.GetOrRegisterHistogram(name, r.histograms, metrics.NewExpDecaySample(sampleSize, sampleAlpha))
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Len() + r.Ints.Len() + r.Floats.Len() + r.Strings.Len() + len(r.histogramsByName())
}

// Entry is one formatted metric
type Entry struct {
	Key   string
	Value string
}

// Snapshot formats every metric: scalars first by type then key, histograms
// as their count, mean and 99th percentile
func (r *Registry) Snapshot() []Entry {
	out := make([]Entry, 0, r.TotalCount())
	for k, v := range r.Bools.All() {
		out = append(out, Entry{k, fmt.Sprint(v.Load())})
	}
	for k, v := range r.Ints.All() {
		out = append(out, Entry{k, fmt.Sprint(v.Load())})
	}
	for k, v := range r.Floats.All() {
		out = append(out, Entry{k, fmt.Sprintf("%.3f", v.Get())})
	}
	for k, v := range r.Strings.All() {
		out = append(out, Entry{k, v.Load()})
	}

	hist := r.histogramsByName()
	for _, k := range slices.Sorted(maps.Keys(hist)) {
		s := hist[k].Snapshot()
		out = append(out, Entry{k, fmt.Sprintf("n=%d mean=%.0f p99=%.0f", s.Count(), s.Mean(), s.Percentile(0.99))})
	}
	return out
}

func (r *Registry) histogramsByName() map[string]metrics.Histogram {
	hist := make(map[string]metrics.Histogram)
	r.histograms.Each(func(k string, m any) {
		if h, ok := m.(metrics.Histogram); ok {
			hist[k] = h
		}
	})
	return hist
}
