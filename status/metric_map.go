package status

import (
	"iter"
	"maps"
	"slices"
	"sync"
)

// MetricMap holds named metrics of type T behind stable pointers
// Producers resolve a pointer once and write it lock-free afterwards
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

// NewMetricMap creates an empty MetricMap
func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{items: make(map[string]*T)}
}

// Get returns the metric for key, registering a zero value on first use
func (m *MetricMap[T]) Get(key string) *T {
	if ptr, ok := m.Lookup(key); ok {
		return ptr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	ptr, ok := m.items[key]
	if !ok {
		ptr = new(T)
		m.items[key] = ptr
	}
	return ptr
}

// Lookup returns the metric for key without registering it
func (m *MetricMap[T]) Lookup(key string) (*T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ptr, ok := m.items[key]
	return ptr, ok
}

// All yields metrics in key order
// Keys registered while iterating are not visited; yield may call Get
func (m *MetricMap[T]) All() iter.Seq2[string, *T] {
	return func(yield func(string, *T) bool) {
		m.mu.RLock()
		keys := slices.Sorted(maps.Keys(m.items))
		ptrs := make([]*T, len(keys))
		for i, k := range keys {
			ptrs[i] = m.items[k]
		}
		m.mu.RUnlock()

		for i, k := range keys {
			if !yield(k, ptrs[i]) {
				return
			}
		}
	}
}

// Len returns the number of registered metrics
func (m *MetricMap[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
