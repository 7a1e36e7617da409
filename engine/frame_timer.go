package engine

import "time"

// FrameTimer measures real elapsed time between frames with pause tracking
// Feeds Clock.AdvanceFrame; owned by the loop goroutine
type FrameTimer struct {
	provider TimeProvider
	maxDelta time.Duration // Clamp for a single frame, 0 disables

	lastTick time.Time
	started  bool

	// Pause state
	isPaused        bool
	pauseStartTime  time.Time     // When current pause started (provider time)
	totalPausedTime time.Duration // Cumulative completed pause duration
}

// NewFrameTimer creates a frame timer reading provider
// Frames longer than maxDelta are reported as maxDelta; 0 reports them as measured
func NewFrameTimer(provider TimeProvider, maxDelta time.Duration) *FrameTimer {
	if provider == nil {
		provider = NewMonotonicTimeProvider()
	}
	return &FrameTimer{
		provider: provider,
		maxDelta: maxDelta,
	}
}

// Tick returns the real time elapsed since the previous Tick
// First Tick and paused Ticks return 0, a reading that went backwards returns 0
func (ft *FrameTimer) Tick() time.Duration {
	now := ft.provider.Now()
	if !ft.started {
		ft.started = true
		ft.lastTick = now
		return 0
	}

	elapsed := now.Sub(ft.lastTick)
	ft.lastTick = now

	if ft.isPaused || elapsed < 0 {
		return 0
	}
	if ft.maxDelta > 0 && elapsed > ft.maxDelta {
		return ft.maxDelta
	}
	return elapsed
}

// Pause stops reporting elapsed time
func (ft *FrameTimer) Pause() {
	if ft.isPaused {
		return
	}
	ft.isPaused = true
	ft.pauseStartTime = ft.provider.Now()
}

// Resume continues reporting elapsed time
// The frame after Resume measures from the resume point, never across the pause
func (ft *FrameTimer) Resume() {
	if !ft.isPaused {
		return
	}
	now := ft.provider.Now()
	ft.totalPausedTime += now.Sub(ft.pauseStartTime)
	ft.pauseStartTime = time.Time{}
	ft.isPaused = false

	if ft.started {
		ft.lastTick = now
	}
}

// IsPaused returns current pause state
func (ft *FrameTimer) IsPaused() bool {
	return ft.isPaused
}

// TotalPauseDuration returns cumulative pause time including an ongoing pause
func (ft *FrameTimer) TotalPauseDuration() time.Duration {
	total := ft.totalPausedTime
	if ft.isPaused {
		total += ft.provider.Now().Sub(ft.pauseStartTime)
	}
	return total
}

// MaxDelta returns the single frame clamp, 0 when disabled
func (ft *FrameTimer) MaxDelta() time.Duration {
	return ft.maxDelta
}
