package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/lixenwraith/frameclock/constants"
)

// Clock tracks frame timing for a simulation loop
// The owner measures real elapsed time and feeds it in once per frame via AdvanceFrame,
// then drains StepFixedUpdate until it returns false
// Not safe for concurrent use; one goroutine owns the clock
type Clock struct {
	deltaTime     time.Duration // Scaled time since previous frame
	deltaRealTime time.Duration // Unscaled time since previous frame

	fixedTime            time.Duration // Fixed update interval
	fixedTimeAccumulator time.Duration // Unscaled time banked toward fixed updates

	frameNumber uint64 // Frames advanced, no frame 0 is ever reported

	absoluteTime     time.Duration // Sum of scaled deltas
	absoluteRealTime time.Duration // Sum of unscaled deltas

	timeScale float32
}

// NewClock creates a clock at frame 0 with a 1/60s fixed interval and unit time scale
func NewClock() *Clock {
	return &Clock{
		fixedTime: constants.DefaultFixedTime,
		timeScale: constants.DefaultTimeScale,
	}
}

// DeltaTime returns the scaled time between the last two frames
func (c *Clock) DeltaTime() time.Duration {
	return c.deltaTime
}

// DeltaRealTime returns the time between the last two frames ignoring time scale
func (c *Clock) DeltaRealTime() time.Duration {
	return c.deltaRealTime
}

// FixedTime returns the fixed update interval
// Fixed updates must use this instead of DeltaTime
func (c *Clock) FixedTime() time.Duration {
	return c.fixedTime
}

// FixedTimeAccumulator returns unscaled time banked but not yet consumed by fixed updates
func (c *Clock) FixedTimeAccumulator() time.Duration {
	return c.fixedTimeAccumulator
}

// FixedAlpha returns the fraction of a fixed interval left in the accumulator
// Used to interpolate rendered state between the last two fixed updates
func (c *Clock) FixedAlpha() float64 {
	if c.fixedTime <= 0 {
		return 0
	}
	return float64(c.fixedTimeAccumulator) / float64(c.fixedTime)
}

// FrameNumber returns the number of frames advanced, 1 after the first frame
func (c *Clock) FrameNumber() uint64 {
	return c.frameNumber
}

// AbsoluteTime returns the scaled time since the clock was created
func (c *Clock) AbsoluteTime() time.Duration {
	return c.absoluteTime
}

// AbsoluteRealTime returns the unscaled time since the clock was created
func (c *Clock) AbsoluteRealTime() time.Duration {
	return c.absoluteRealTime
}

// TimeScale returns the current time multiplier
func (c *Clock) TimeScale() float32 {
	return c.timeScale
}

// SetFixedTime replaces the fixed update interval, effective on the next StepFixedUpdate
// The value is not validated: a zero or negative interval makes StepFixedUpdate return true forever
func (c *Clock) SetFixedTime(interval time.Duration) {
	c.fixedTime = interval
}

// SetTimeScale sets the multiplier applied to incoming frame durations
// Panics if multiplier is negative, infinite or NaN
func (c *Clock) SetTimeScale(multiplier float32) {
	if !ValidTimeScale(multiplier) {
		panic(fmt.Sprintf("engine: invalid time scale %v", multiplier))
	}
	c.timeScale = multiplier
}

// AdvanceFrame records the real time elapsed since the previous frame
// Must be called once per frame, before draining StepFixedUpdate
// Panics on a negative duration or when the scaled duration overflows
func (c *Clock) AdvanceFrame(timeDiff time.Duration) {
	if timeDiff < 0 {
		panic(fmt.Sprintf("engine: negative frame duration %v", timeDiff))
	}

	c.deltaRealTime = timeDiff
	c.deltaTime = scaleDuration(timeDiff, c.timeScale)
	c.frameNumber++

	c.absoluteTime += c.deltaTime
	c.absoluteRealTime += c.deltaRealTime

	// Fixed cadence follows real time only
	c.fixedTimeAccumulator += c.deltaRealTime
}

// StepFixedUpdate consumes one fixed interval from the accumulator if one is owed
// Returns false, leaving state untouched, when less than a full interval is banked
func (c *Clock) StepFixedUpdate() bool {
	if c.fixedTimeAccumulator >= c.fixedTime {
		c.fixedTimeAccumulator -= c.fixedTime
		return true
	}
	return false
}

// ValidTimeScale reports whether multiplier is accepted by SetTimeScale
func ValidTimeScale(multiplier float32) bool {
	// NaN fails every comparison
	if !(multiplier >= 0) {
		return false
	}
	return !math.IsInf(float64(multiplier), 1)
}

// scaleDuration multiplies d by scale in single precision
// Seconds are taken as float32, multiplied, and rounded back to the nearest nanosecond, ties to even
// Panics when the product does not fit in a Duration
func scaleDuration(d time.Duration, scale float32) time.Duration {
	sec := d / time.Second
	nsec := d % time.Second
	secs := float32(sec) + float32(nsec)/float32(time.Second)

	scaled := secs * scale
	// float32 mantissa times 1e9 is exact in float64, the tie decision sees the true product
	ns := math.RoundToEven(float64(scaled) * float64(time.Second))
	if ns >= math.MaxInt64 {
		panic(fmt.Sprintf("engine: scaled frame duration overflows: %v x %v", d, scale))
	}
	return time.Duration(ns)
}
