package engine

import "time"

// TimeResource wraps time data for frame and fixed update handlers
// It is refreshed by the Loop from its Clock before each handler call
type TimeResource struct {
	// DeltaTime is the scaled duration since the last frame
	DeltaTime time.Duration

	// DeltaRealTime is the unscaled duration since the last frame
	DeltaRealTime time.Duration

	// FixedTime is the fixed update interval, the step fixed updates must integrate with
	FixedTime time.Duration

	// AbsoluteTime is the scaled time since the clock was created
	AbsoluteTime time.Duration

	// AbsoluteRealTime is the unscaled time since the clock was created
	AbsoluteRealTime time.Duration

	// FrameNumber is the current frame count, starting at 1
	FrameNumber uint64

	// TimeScale is the multiplier in effect for this frame
	TimeScale float32

	// Alpha is the banked fraction of a fixed interval, for render interpolation
	Alpha float64

	// FixedStep is the 1-based index of the running fixed update within this frame, 0 outside fixed updates
	FixedStep int
}

// Update modifies TimeResource fields in-place from the clock (zero allocation)
// FixedStep is left to the caller
func (tr *TimeResource) Update(c *Clock) {
	tr.DeltaTime = c.DeltaTime()
	tr.DeltaRealTime = c.DeltaRealTime()
	tr.FixedTime = c.FixedTime()
	tr.AbsoluteTime = c.AbsoluteTime()
	tr.AbsoluteRealTime = c.AbsoluteRealTime()
	tr.FrameNumber = c.FrameNumber()
	tr.TimeScale = c.TimeScale()
	tr.Alpha = c.FixedAlpha()
}
