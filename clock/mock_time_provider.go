package clock

import (
	"context"
	"sync"
	"time"
)

// MockTimeProvider provides a controllable time source for testing
// Its Wait advances the mock instead of sleeping, so a loop driven by it runs
// at full speed with exact durations
type MockTimeProvider struct {
	mu          sync.RWMutex
	currentTime time.Time
	waits       []time.Duration
}

// NewMockTimeProvider creates a new mock time provider with the given start time
func NewMockTimeProvider(startTime time.Time) *MockTimeProvider {
	return &MockTimeProvider{
		currentTime: startTime,
	}
}

// Now returns the current mocked time
func (m *MockTimeProvider) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentTime
}

// SetTime sets the current time for the mock
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = t
}

// Advance advances the current time by the given duration
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

// Wait records d and advances the mock by it without blocking
func (m *MockTimeProvider) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waits = append(m.waits, d)
	m.currentTime = m.currentTime.Add(d)
	return nil
}

// Waits returns every duration passed to Wait, in call order
func (m *MockTimeProvider) Waits() []time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]time.Duration, len(m.waits))
	copy(out, m.waits)
	return out
}
