package engine

import "time"

// TimeProvider is a source of real time readings for frame measurement
type TimeProvider interface {
	Now() time.Time
}

// MonotonicTimeProvider provides the system time with monotonic clock readings
// Differences between its readings are immune to wall clock adjustments
type MonotonicTimeProvider struct{}

// NewMonotonicTimeProvider creates a new monotonic time provider
func NewMonotonicTimeProvider() *MonotonicTimeProvider {
	return &MonotonicTimeProvider{}
}

// Now returns the current time with monotonic clock reading
func (p *MonotonicTimeProvider) Now() time.Time {
	return time.Now()
}
