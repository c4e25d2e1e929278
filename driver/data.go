package driver

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
)

var (
	// ErrMissingKey is returned when no value is stored under a key
	ErrMissingKey = errors.New("driver: no data for key")

	// ErrTypeMismatch is returned when the stored value has a different type
	ErrTypeMismatch = errors.New("driver: data type mismatch")
)

// Data is a thread-safe store of typed values under string keys
// It lets an update function hand state (palettes, timers, counters) to a
// driver without the two sharing a concrete type
// The zero value is an empty store ready to use
type Data struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewData creates an empty store
func NewData() *Data {
	return &Data{values: make(map[string]any)}
}

// Set stores v under key, replacing any previous value of any type
func Set[T any](d *Data, key string, v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.values == nil {
		d.values = make(map[string]any)
	}
	d.values[key] = v
}

// Get returns the value stored under key as a T
func Get[T any](d *Data, key string) (T, error) {
	d.mu.RLock()
	raw, ok := d.values[key]
	d.mu.RUnlock()

	var zero T
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q holds %T, not %v", ErrTypeMismatch, key, raw, reflect.TypeFor[T]())
	}
	return v, nil
}

// MustGet is Get that panics on error
// Use only for keys the application sets before the first tick
func MustGet[T any](d *Data, key string) T {
	v, err := Get[T](d, key)
	if err != nil {
		panic(err)
	}
	return v
}

// GetOr returns the value under key, or def when missing or of another type
func GetOr[T any](d *Data, key string, def T) T {
	v, err := Get[T](d, key)
	if err != nil {
		return def
	}
	return v
}

// Update replaces the value under key with fn applied to it
// The store stays locked while fn runs, so fn must not touch d
func Update[T any](d *Data, key string, fn func(T) T) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	raw, ok := d.values[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	v, ok := raw.(T)
	if !ok {
		return fmt.Errorf("%w: %q holds %T, not %v", ErrTypeMismatch, key, raw, reflect.TypeFor[T]())
	}
	d.values[key] = fn(v)
	return nil
}

// Has reports whether any value is stored under key
func (d *Data) Has(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.values[key]
	return ok
}

// Delete removes key
func (d *Data) Delete(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.values, key)
}

// Keys returns the stored keys in sorted order
func (d *Data) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
