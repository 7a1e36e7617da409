package constants

import "time"

// Frame Loop Timing
const (
	// FrameUpdateInterval is the rendering frame rate interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// DefaultFixedTime is the fixed update interval of a new clock (1/60 s)
	DefaultFixedTime = 16_666_666 * time.Nanosecond

	// DefaultTimeScale is the time multiplier of a new clock
	DefaultTimeScale float32 = 1.0
)

// Catch-up Limits
const (
	// MaxFixedStepsPerFrame bounds fixed updates drained in a single frame
	// Owed steps beyond the cap stay banked for the next frame
	MaxFixedStepsPerFrame = 8

	// MaxFrameDelta clamps a single measured frame (debugger stops, window drags)
	MaxFrameDelta = 250 * time.Millisecond
)

// Demo Defaults
const (
	DefaultFrameRate = 60
	DefaultFixedRate = 60

	// MinTimeScale and MaxTimeScale bound interactive scale stepping, not the clock
	MinTimeScale float32 = 1.0 / 64
	MaxTimeScale float32 = 64
)
