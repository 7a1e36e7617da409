package engine

import (
	"sync"
	"time"
)

// MockTimeProvider is a controllable time source for tests
// Readings move only through SetTime, Advance, or queued frame durations
type MockTimeProvider struct {
	mu     sync.Mutex
	now    time.Time
	queued []time.Duration
}

// NewMockTimeProvider creates a mock time source reading startTime
func NewMockTimeProvider(startTime time.Time) *MockTimeProvider {
	return &MockTimeProvider{now: startTime}
}

// Now returns the mocked time, first applying the next queued duration if any
func (m *MockTimeProvider) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queued) > 0 {
		m.now = m.now.Add(m.queued[0])
		m.queued = m.queued[1:]
	}
	return m.now
}

// SetTime jumps the mocked time, queued durations are kept
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the mocked time by d; a negative d moves it backwards
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// QueueFrames scripts frame lengths: each following Now call advances by the next one
func (m *MockTimeProvider) QueueFrames(durations ...time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, durations...)
}

// Pending returns the number of queued durations not yet consumed
func (m *MockTimeProvider) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queued)
}
