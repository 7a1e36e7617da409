package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/frameclock/constants"
	"github.com/lixenwraith/frameclock/engine/status"
)

func newTestLoop(t *testing.T, opts ...LoopOption) (*Loop, *MockTimeProvider, *logtest.Hook) {
	t.Helper()

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	mock := NewMockTimeProvider(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	timer := NewFrameTimer(mock, 0)

	opts = append([]LoopOption{WithLogger(logger.WithField("component", "loop"))}, opts...)
	return NewLoop(NewClock(), timer, status.NewRegistry(), opts...), mock, hook
}

func countLevel(hook *logtest.Hook, level logrus.Level) int {
	n := 0
	for _, e := range hook.AllEntries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

func TestLoopStepRunsFixedThenFrameHandlers(t *testing.T) {
	loop, _, _ := newTestLoop(t)
	loop.Clock().SetFixedTime(10 * time.Millisecond)

	var calls []string
	var fixedSteps []int
	loop.OnFixedUpdate(FixedUpdateFunc(func(tr *TimeResource) {
		calls = append(calls, "fixed")
		fixedSteps = append(fixedSteps, tr.FixedStep)
		assert.Equal(t, 10*time.Millisecond, tr.FixedTime)
		assert.Equal(t, uint64(1), tr.FrameNumber)
	}))
	loop.OnUpdate(UpdateFunc(func(tr *TimeResource) {
		calls = append(calls, "frame")
		assert.Equal(t, 0, tr.FixedStep)
		assert.Equal(t, 25*time.Millisecond, tr.DeltaTime)
		assert.InDelta(t, 0.5, tr.Alpha, 1e-12)
	}))

	steps := loop.Step(25 * time.Millisecond)

	assert.Equal(t, 2, steps)
	assert.Equal(t, []string{"fixed", "fixed", "frame"}, calls)
	assert.Equal(t, []int{1, 2}, fixedSteps)
}

func TestLoopHandlersRunInRegistrationOrder(t *testing.T) {
	loop, _, _ := newTestLoop(t)

	var order []int
	loop.OnUpdate(
		UpdateFunc(func(*TimeResource) { order = append(order, 1) }),
		UpdateFunc(func(*TimeResource) { order = append(order, 2) }),
	)
	loop.OnUpdate(UpdateFunc(func(*TimeResource) { order = append(order, 3) }))

	loop.Step(0)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestLoopFrameMeasuresWithTimer(t *testing.T) {
	loop, mock, _ := newTestLoop(t)
	mock.QueueFrames(0, 20*time.Millisecond, 30*time.Millisecond)

	loop.Frame()
	assert.Equal(t, time.Duration(0), loop.Clock().DeltaRealTime(), "first frame has no predecessor")

	loop.Frame()
	assert.Equal(t, 20*time.Millisecond, loop.Clock().DeltaRealTime())

	loop.Frame()
	assert.Equal(t, 30*time.Millisecond, loop.Clock().DeltaRealTime())
	assert.Equal(t, 50*time.Millisecond, loop.Clock().AbsoluteRealTime())
	assert.Equal(t, uint64(3), loop.Clock().FrameNumber())
	assert.Equal(t, uint64(3), loop.Time().FrameNumber)
}

// Scale must not change fixed cadence when driven through the loop either
func TestLoopFixedCadenceIgnoresScale(t *testing.T) {
	loop, _, _ := newTestLoop(t)
	require.NoError(t, loop.SetFixedRate(120))
	require.NoError(t, loop.SetTimeScale(10))

	fixed := 0
	loop.OnFixedUpdate(FixedUpdateFunc(func(*TimeResource) { fixed++ }))

	step := time.Second / 60
	for i := 0; i < 60; i++ {
		loop.Step(step)
	}

	assert.Equal(t, 120, fixed)
	assert.Equal(t, int64(120), loop.Registry().Ints.Get(MetricFixedSteps).Load())
	assert.Equal(t, int64(60), loop.Registry().Ints.Get(MetricFrames).Load())
	assert.Equal(t, int64(0), loop.Registry().Ints.Get(MetricDeferredSteps).Load())
}

func TestLoopFixedStepCapDefersRemainder(t *testing.T) {
	loop, _, hook := newTestLoop(t, WithMaxFixedSteps(4))
	loop.Clock().SetFixedTime(time.Millisecond)

	assert.Equal(t, 4, loop.Step(10*time.Millisecond))
	assert.Equal(t, 6*time.Millisecond, loop.Clock().FixedTimeAccumulator())

	assert.Equal(t, 4, loop.Step(0))
	assert.Equal(t, 2*time.Millisecond, loop.Clock().FixedTimeAccumulator())

	assert.Equal(t, 2, loop.Step(0))
	assert.Equal(t, time.Duration(0), loop.Clock().FixedTimeAccumulator())

	assert.Equal(t, int64(2), loop.Registry().Ints.Get(MetricDeferredSteps).Load())
	assert.Equal(t, 1, countLevel(hook, logrus.WarnLevel), "warn once per capped run")
	assert.Equal(t, 1, countLevel(hook, logrus.InfoLevel), "report catching up")
}

func TestLoopCapExactlyDrainedIsNotDeferred(t *testing.T) {
	loop, _, hook := newTestLoop(t, WithMaxFixedSteps(2))
	loop.Clock().SetFixedTime(5 * time.Millisecond)

	assert.Equal(t, 2, loop.Step(12*time.Millisecond))
	assert.Equal(t, int64(0), loop.Registry().Ints.Get(MetricDeferredSteps).Load())
	assert.Equal(t, 0, countLevel(hook, logrus.WarnLevel))
}

func TestLoopZeroFixedTimeTerminates(t *testing.T) {
	loop, _, _ := newTestLoop(t)
	loop.Clock().SetFixedTime(0)

	assert.Equal(t, constants.MaxFixedStepsPerFrame, loop.Step(16*time.Millisecond))
	assert.Equal(t, int64(1), loop.Registry().Ints.Get(MetricDeferredSteps).Load())
}

func TestLoopUncapped(t *testing.T) {
	loop, _, _ := newTestLoop(t, WithMaxFixedSteps(0))
	loop.Clock().SetFixedTime(time.Millisecond)

	assert.Equal(t, 0, loop.MaxFixedSteps())
	assert.Equal(t, 100, loop.Step(100*time.Millisecond))
}

func TestLoopSetTimeScale(t *testing.T) {
	loop, _, _ := newTestLoop(t)

	for _, bad := range []float32{-1, float32(math.NaN()), float32(math.Inf(1))} {
		err := loop.SetTimeScale(bad)
		require.ErrorIs(t, err, ErrInvalidTimeScale)
	}
	assert.Equal(t, float32(1), loop.Clock().TimeScale())

	require.NoError(t, loop.SetTimeScale(0.25))
	assert.Equal(t, float32(0.25), loop.Clock().TimeScale())
	assert.Equal(t, 0.25, loop.Registry().Floats.Get(MetricTimeScale).Get())
}

func TestLoopSetFixedRate(t *testing.T) {
	loop, _, _ := newTestLoop(t)
	assert.Equal(t, 60, loop.FixedRate())

	require.NoError(t, loop.SetFixedRate(120))
	assert.Equal(t, 8_333_333*time.Nanosecond, loop.Clock().FixedTime())
	assert.Equal(t, 120, loop.FixedRate())
	assert.InDelta(t, 8.333333, loop.Registry().Floats.Get(MetricFixedTimeMs).Get(), 1e-6)

	require.ErrorIs(t, loop.SetFixedRate(0), ErrInvalidRate)
	require.ErrorIs(t, loop.SetFixedRate(-30), ErrInvalidRate)
	assert.Equal(t, 120, loop.FixedRate())

	loop.Clock().SetFixedTime(0)
	assert.Equal(t, 0, loop.FixedRate())
}

func TestLoopPauseFreezesMeasuredTime(t *testing.T) {
	loop, mock, _ := newTestLoop(t)
	loop.Frame()

	assert.True(t, loop.TogglePause())
	assert.True(t, loop.Registry().Bools.Get(MetricPaused).Load())

	mock.Advance(time.Second)
	loop.Frame()
	assert.Equal(t, time.Duration(0), loop.Clock().DeltaRealTime())
	assert.Equal(t, uint64(2), loop.Clock().FrameNumber(), "frames advance while paused")

	mock.Advance(time.Second)
	assert.False(t, loop.TogglePause())
	assert.False(t, loop.IsPaused())
	assert.False(t, loop.Registry().Bools.Get(MetricPaused).Load())

	mock.Advance(16 * time.Millisecond)
	loop.Frame()
	assert.Equal(t, 16*time.Millisecond, loop.Clock().DeltaRealTime())
	assert.Equal(t, 16*time.Millisecond, loop.Clock().AbsoluteRealTime())
}

func TestLoopRunStopsOnCancel(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	loop := NewLoop(nil, nil, nil, WithLogger(logger))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	require.NoError(t, loop.Run(ctx, 5*time.Millisecond))
	assert.Greater(t, loop.Clock().FrameNumber(), uint64(0))
	assert.Equal(t, int64(loop.Clock().FrameNumber()), loop.Registry().Ints.Get(MetricFrames).Load())
}

func TestLoopRunRejectsInterval(t *testing.T) {
	loop, _, _ := newTestLoop(t)

	err := loop.Run(context.Background(), 0)
	require.ErrorIs(t, err, ErrInvalidInterval)
}

func TestNewLoopDefaults(t *testing.T) {
	loop := NewLoop(nil, nil, nil)

	require.NotNil(t, loop.Clock())
	require.NotNil(t, loop.Timer())
	require.NotNil(t, loop.Registry())
	assert.Equal(t, constants.MaxFrameDelta, loop.Timer().MaxDelta())
	assert.Equal(t, constants.MaxFixedStepsPerFrame, loop.MaxFixedSteps())
	assert.Equal(t, 1.0, loop.Registry().Floats.Get(MetricTimeScale).Get())
	assert.Equal(t, constants.DefaultFixedTime, loop.Time().FixedTime)
}
