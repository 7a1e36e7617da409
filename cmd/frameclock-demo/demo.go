package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/frameclock/audio"
	"github.com/lixenwraith/frameclock/constants"
	"github.com/lixenwraith/frameclock/engine"
	"github.com/lixenwraith/frameclock/engine/status"
	"github.com/lixenwraith/frameclock/render"
)

const (
	minFixedRate = 15
	maxFixedRate = 480

	metronomeGain = 0.3
)

// newLoop builds the clock, timer and loop described by cli
func newLoop(cli *CLI) (*engine.Loop, error) {
	timer := engine.NewFrameTimer(engine.NewMonotonicTimeProvider(), cli.MaxFrameDelta)
	loop := engine.NewLoop(engine.NewClock(), timer, status.NewRegistry(),
		engine.WithMaxFixedSteps(cli.MaxFixedSteps),
	)

	if err := loop.SetFixedRate(cli.FixedRate); err != nil {
		return nil, fmt.Errorf("configure loop: %w", err)
	}
	if err := loop.SetTimeScale(cli.TimeScale); err != nil {
		return nil, fmt.Errorf("configure loop: %w", err)
	}
	return loop, nil
}

// attachMetronome registers a metronome on loop, opening the speaker when enabled
// Returns a cleanup func, never nil
func attachMetronome(loop *engine.Loop, enabled bool) (*audio.Metronome, func()) {
	m := audio.NewMetronome(time.Second, metronomeGain)
	loop.OnFixedUpdate(m)

	if !enabled {
		return m, func() {}
	}
	if err := m.Initialize(); err != nil {
		logrus.WithError(err).Warn("audio unavailable, continuing without clicks")
		return m, func() {}
	}
	return m, m.Cleanup
}

// run wires the loop and dispatches to the headless or terminal front end
func run(ctx context.Context, cli *CLI) error {
	loop, err := newLoop(cli)
	if err != nil {
		return err
	}

	metronome, cleanup := attachMetronome(loop, cli.Audio)
	defer cleanup()

	logrus.WithFields(logrus.Fields{
		"frame_rate": cli.FrameRate,
		"fixed_rate": cli.FixedRate,
		"time_scale": cli.TimeScale,
		"headless":   cli.Headless,
	}).Info("starting")

	if cli.Headless {
		return runHeadless(ctx, cli, loop, metronome)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create terminal: %w", err)
	}
	return runInteractive(ctx, cli, loop, screen)
}

// runHeadless drives the loop for cli.Duration, logging metrics once a second
func runHeadless(ctx context.Context, cli *CLI, loop *engine.Loop, metronome *audio.Metronome) error {
	ctx, cancel := context.WithTimeout(ctx, cli.Duration)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx, cli.FrameInterval())
	})
	g.Go(func() error {
		return reportProgress(gctx, loop.Registry(), time.Second)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("headless run: %w", err)
	}

	c := loop.Clock()
	logrus.WithFields(logrus.Fields{
		"frames":             c.FrameNumber(),
		"absolute_time":      c.AbsoluteTime(),
		"absolute_real_time": c.AbsoluteRealTime(),
		"fixed_steps":        loop.Registry().Ints.Get(engine.MetricFixedSteps).Load(),
		"deferred":           loop.Registry().Ints.Get(engine.MetricDeferredSteps).Load(),
		"beats":              metronome.Beats(),
	}).Info("run complete")
	return nil
}

// reportProgress logs a registry snapshot every interval until ctx is done
func reportProgress(ctx context.Context, reg *status.Registry, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			logrus.WithFields(logrus.Fields(reg.Snapshot().Fields())).Info("progress")
		}
	}
}

// runInteractive renders the HUD on screen and handles keys until quit or ctx is done
func runInteractive(ctx context.Context, cli *CLI, loop *engine.Loop, screen tcell.Screen) error {
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	var finiOnce sync.Once
	fini := func() { finiOnce.Do(screen.Fini) }
	defer fini()

	hud := render.NewHUD(screen)
	events := make(chan tcell.Event, 64)
	done := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)

	// PollEvent returns nil once the screen is finalized
	g.Go(func() error {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return nil
			}
			select {
			case events <- ev:
			case <-done:
				return nil
			}
		}
	})

	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				// Restore the terminal before the crash reaches the user
				fini()
				panic(r)
			}
		}()
		defer fini()
		defer close(done)
		return frameLoop(gctx, cli.FrameInterval(), loop, hud, screen, events)
	})

	return g.Wait()
}

// frameLoop ticks the clock and redraws at interval, applying key events between frames
func frameLoop(ctx context.Context, interval time.Duration, loop *engine.Loop, hud *render.HUD, screen tcell.Screen, events <-chan tcell.Event) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if handleKey(loop, ev) {
					logrus.Debug("quit requested")
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case <-ticker.C:
			loop.Frame()
			hud.Draw(loop.Time(), loop.Registry(), loop.IsPaused())
			screen.Show()
		}
	}
}

// handleKey applies a key binding to loop, returns true on quit
func handleKey(loop *engine.Loop, ev *tcell.EventKey) bool {
	if ev.Key() != tcell.KeyRune {
		return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC
	}

	switch ev.Rune() {
	case 'q':
		return true
	case '+', '=':
		stepTimeScale(loop, 2)
	case '-', '_':
		stepTimeScale(loop, 0.5)
	case '0':
		setTimeScale(loop, 0)
	case '1':
		setTimeScale(loop, constants.DefaultTimeScale)
	case 'p':
		loop.TogglePause()
	case 'f':
		stepFixedRate(loop, 2)
	case 'F':
		stepFixedRate(loop, 0.5)
	}
	return false
}

// stepTimeScale multiplies the scale by factor within the interactive bounds
// A frozen clock restarts at the minimum scale
func stepTimeScale(loop *engine.Loop, factor float32) {
	scale := loop.Clock().TimeScale()
	if scale == 0 {
		setTimeScale(loop, constants.MinTimeScale)
		return
	}
	next := min(max(scale*factor, constants.MinTimeScale), constants.MaxTimeScale)
	setTimeScale(loop, next)
}

func setTimeScale(loop *engine.Loop, scale float32) {
	if err := loop.SetTimeScale(scale); err != nil {
		logrus.WithError(err).Warn("time scale rejected")
	}
}

// stepFixedRate multiplies the fixed update rate by factor within [minFixedRate, maxFixedRate]
func stepFixedRate(loop *engine.Loop, factor float64) {
	hz := int(float64(loop.FixedRate()) * factor)
	hz = min(max(hz, minFixedRate), maxFixedRate)
	if err := loop.SetFixedRate(hz); err != nil {
		logrus.WithError(err).Warn("fixed rate rejected")
	}
}
