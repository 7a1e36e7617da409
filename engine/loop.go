package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/frameclock/constants"
	"github.com/lixenwraith/frameclock/engine/status"
)

var (
	ErrInvalidTimeScale = errors.New("time scale must be finite and non-negative")
	ErrInvalidRate      = errors.New("rate must be positive")
	ErrInvalidInterval  = errors.New("frame interval must be positive")
)

// Metric names published by Loop
const (
	MetricFrames        = "engine.frames"
	MetricFixedSteps    = "engine.fixed_steps"
	MetricDeferredSteps = "engine.deferred_steps"
	MetricTimeScale     = "engine.time_scale"
	MetricFixedTimeMs   = "engine.fixed_time_ms"
	MetricPaused        = "engine.paused"
)

// FixedUpdater runs once per fixed step, integrating with tr.FixedTime
type FixedUpdater interface {
	FixedUpdate(tr *TimeResource)
}

// FrameUpdater runs once per frame after fixed steps, integrating with tr.DeltaTime
type FrameUpdater interface {
	Update(tr *TimeResource)
}

// FixedUpdateFunc adapts a function to FixedUpdater
type FixedUpdateFunc func(tr *TimeResource)

// FixedUpdate implements FixedUpdater
func (f FixedUpdateFunc) FixedUpdate(tr *TimeResource) { f(tr) }

// UpdateFunc adapts a function to FrameUpdater
type UpdateFunc func(tr *TimeResource)

// Update implements FrameUpdater
func (f UpdateFunc) Update(tr *TimeResource) { f(tr) }

// LoopOption configures a Loop
type LoopOption func(*Loop)

// WithMaxFixedSteps caps fixed steps drained per frame, 0 removes the cap
// Without a cap a zero or negative fixed interval never finishes draining
func WithMaxFixedSteps(n int) LoopOption {
	return func(l *Loop) {
		l.maxFixedSteps = n
	}
}

// WithLogger replaces the default component logger
func WithLogger(logger logrus.FieldLogger) LoopOption {
	return func(l *Loop) {
		l.log = logger
	}
}

// Loop drives a Clock: measure frame, advance, drain fixed steps, run frame handlers
// Single goroutine ownership; only the status registry is safe to read elsewhere
type Loop struct {
	clock   *Clock
	timer   *FrameTimer
	timeRes TimeResource

	fixedHandlers []FixedUpdater
	frameHandlers []FrameUpdater

	maxFixedSteps int
	deferring     bool // Cap was hit on the previous frame

	log logrus.FieldLogger

	// Cached metric pointers
	statusReg    *status.Registry
	statFrames   *atomic.Int64
	statFixed    *atomic.Int64
	statDeferred *atomic.Int64
	statScale    *status.AtomicFloat
	statFixedMs  *status.AtomicFloat
	statPaused   *atomic.Bool
}

// NewLoop creates a loop around clock, measuring frames with timer
// Nil arguments are replaced by defaults: a new Clock, a monotonic FrameTimer, a fresh Registry
func NewLoop(clock *Clock, timer *FrameTimer, reg *status.Registry, opts ...LoopOption) *Loop {
	if clock == nil {
		clock = NewClock()
	}
	if timer == nil {
		timer = NewFrameTimer(NewMonotonicTimeProvider(), constants.MaxFrameDelta)
	}
	if reg == nil {
		reg = status.NewRegistry()
	}

	l := &Loop{
		clock:         clock,
		timer:         timer,
		maxFixedSteps: constants.MaxFixedStepsPerFrame,
		log:           logrus.WithField("component", "loop"),
		statusReg:     reg,
		statFrames:    reg.Ints.Get(MetricFrames),
		statFixed:     reg.Ints.Get(MetricFixedSteps),
		statDeferred:  reg.Ints.Get(MetricDeferredSteps),
		statScale:     reg.Floats.Get(MetricTimeScale),
		statFixedMs:   reg.Floats.Get(MetricFixedTimeMs),
		statPaused:    reg.Bools.Get(MetricPaused),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.timeRes.Update(clock)
	l.publishSettings()
	return l
}

// OnFixedUpdate registers handlers run on every fixed step, in registration order
func (l *Loop) OnFixedUpdate(handlers ...FixedUpdater) {
	l.fixedHandlers = append(l.fixedHandlers, handlers...)
}

// OnUpdate registers handlers run once per frame, in registration order
func (l *Loop) OnUpdate(handlers ...FrameUpdater) {
	l.frameHandlers = append(l.frameHandlers, handlers...)
}

// Frame measures the real time since the previous frame and runs Step with it
func (l *Loop) Frame() int {
	return l.Step(l.timer.Tick())
}

// Step advances the clock by delta, runs owed fixed steps then frame handlers
// Returns the number of fixed steps run
func (l *Loop) Step(delta time.Duration) int {
	l.clock.AdvanceFrame(delta)
	l.statFrames.Add(1)

	steps := 0
	for l.maxFixedSteps <= 0 || steps < l.maxFixedSteps {
		if !l.clock.StepFixedUpdate() {
			break
		}
		steps++

		l.timeRes.Update(l.clock)
		l.timeRes.FixedStep = steps
		for _, h := range l.fixedHandlers {
			h.FixedUpdate(&l.timeRes)
		}
	}
	l.statFixed.Add(int64(steps))
	l.checkDeferred(steps)

	l.timeRes.Update(l.clock)
	l.timeRes.FixedStep = 0
	for _, h := range l.frameHandlers {
		h.Update(&l.timeRes)
	}

	return steps
}

// checkDeferred records a frame that stopped at the cap with steps still owed
// Warns once per run of capped frames
func (l *Loop) checkDeferred(steps int) {
	capped := l.maxFixedSteps > 0 && steps == l.maxFixedSteps &&
		l.clock.FixedTimeAccumulator() >= l.clock.FixedTime()
	if !capped {
		if l.deferring {
			l.log.WithField("frame", l.clock.FrameNumber()).Info("fixed updates caught up")
		}
		l.deferring = false
		return
	}

	l.statDeferred.Add(1)
	fields := logrus.Fields{
		"frame":      l.clock.FrameNumber(),
		"banked":     l.clock.FixedTimeAccumulator(),
		"fixed_time": l.clock.FixedTime(),
		"cap":        l.maxFixedSteps,
	}
	if l.deferring {
		l.log.WithFields(fields).Debug("fixed step cap reached")
	} else {
		l.log.WithFields(fields).Warn("fixed step cap reached, deferring owed steps")
	}
	l.deferring = true
}

// Run calls Frame every interval until ctx is done
// Returns nil on cancellation, an error only for a non-positive interval
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.log.WithField("interval", interval).Debug("loop started")
	for {
		select {
		case <-ctx.Done():
			l.log.WithField("frames", l.clock.FrameNumber()).Debug("loop stopped")
			return nil
		case <-ticker.C:
			l.Frame()
		}
	}
}

// SetTimeScale validates multiplier before handing it to the clock
func (l *Loop) SetTimeScale(multiplier float32) error {
	if !ValidTimeScale(multiplier) {
		return fmt.Errorf("%w: %v", ErrInvalidTimeScale, multiplier)
	}
	l.clock.SetTimeScale(multiplier)
	l.publishSettings()
	l.log.WithField("time_scale", multiplier).Debug("time scale changed")
	return nil
}

// SetFixedRate sets the fixed interval to one second divided by hz
func (l *Loop) SetFixedRate(hz int) error {
	if hz <= 0 {
		return fmt.Errorf("%w: fixed rate %d", ErrInvalidRate, hz)
	}
	l.clock.SetFixedTime(time.Second / time.Duration(hz))
	l.publishSettings()
	l.log.WithFields(logrus.Fields{"hz": hz, "fixed_time": l.clock.FixedTime()}).Debug("fixed rate changed")
	return nil
}

// FixedRate returns the fixed update frequency rounded to whole hertz, 0 for a non-positive interval
func (l *Loop) FixedRate() int {
	ft := l.clock.FixedTime()
	if ft <= 0 {
		return 0
	}
	return int((time.Second + ft/2) / ft)
}

// Pause freezes measured time, frames keep advancing with zero deltas
func (l *Loop) Pause() {
	l.timer.Pause()
	l.statPaused.Store(true)
	l.log.Debug("paused")
}

// Resume continues measuring time from now
func (l *Loop) Resume() {
	l.timer.Resume()
	l.statPaused.Store(false)
	l.log.WithField("total_paused", l.timer.TotalPauseDuration()).Debug("resumed")
}

// TogglePause flips pause state and returns the new state
func (l *Loop) TogglePause() bool {
	if l.timer.IsPaused() {
		l.Resume()
	} else {
		l.Pause()
	}
	return l.timer.IsPaused()
}

// IsPaused returns current pause state
func (l *Loop) IsPaused() bool {
	return l.timer.IsPaused()
}

// Clock returns the driven clock
func (l *Loop) Clock() *Clock {
	return l.clock
}

// Timer returns the frame timer
func (l *Loop) Timer() *FrameTimer {
	return l.timer
}

// Time returns the loop's time resource, valid until the next Step
func (l *Loop) Time() *TimeResource {
	return &l.timeRes
}

// Registry returns the metrics registry the loop publishes to
func (l *Loop) Registry() *status.Registry {
	return l.statusReg
}

// MaxFixedSteps returns the per-frame fixed step cap, 0 when uncapped
func (l *Loop) MaxFixedSteps() int {
	return l.maxFixedSteps
}

func (l *Loop) publishSettings() {
	l.statScale.Set(float64(l.clock.TimeScale()))
	l.statFixedMs.Set(float64(l.clock.FixedTime()) / float64(time.Millisecond))
	l.statPaused.Store(l.timer.IsPaused())
}
