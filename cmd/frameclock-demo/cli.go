package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/alecthomas/kong"

	"github.com/lixenwraith/frameclock/constants"
	"github.com/lixenwraith/frameclock/engine"
)

var errInvalidLimit = errors.New("limit must not be negative")

// CLI is the demo's flag set; every flag may also come from the JSON config
type CLI struct {
	Config kong.ConfigFlag `help:"Load flag values from a JSON file." placeholder:"FILE"`

	FrameRate     int           `default:"60" help:"Rendered frames per second."`
	FixedRate     int           `default:"60" help:"Fixed updates per second."`
	TimeScale     float32       `default:"1" help:"Initial time scale multiplier."`
	MaxFixedSteps int           `default:"8" help:"Fixed steps drained per frame before deferring the rest, 0 for no cap."`
	MaxFrameDelta time.Duration `default:"250ms" help:"Longest frame reported to the clock, 0 disables the clamp."`

	Headless bool          `help:"Run without the terminal UI and log progress instead."`
	Duration time.Duration `default:"5s" help:"Headless run length."`

	Audio bool `help:"Click once per second of fixed time."`
	Debug bool `help:"Write debug logs to logs/frameclock.log."`
}

// Validate implements kong's validation hook, rejecting values the clock would panic on
func (c *CLI) Validate() error {
	if c.FrameRate <= 0 {
		return fmt.Errorf("--frame-rate %d: %w", c.FrameRate, engine.ErrInvalidRate)
	}
	if c.FixedRate <= 0 {
		return fmt.Errorf("--fixed-rate %d: %w", c.FixedRate, engine.ErrInvalidRate)
	}
	if !engine.ValidTimeScale(c.TimeScale) {
		return fmt.Errorf("--time-scale %v: %w", c.TimeScale, engine.ErrInvalidTimeScale)
	}
	if c.MaxFixedSteps < 0 {
		return fmt.Errorf("--max-fixed-steps %d: %w", c.MaxFixedSteps, errInvalidLimit)
	}
	if c.MaxFrameDelta < 0 {
		return fmt.Errorf("--max-frame-delta %v: %w", c.MaxFrameDelta, errInvalidLimit)
	}
	if c.Headless && c.Duration <= 0 {
		return fmt.Errorf("--duration %v: %w", c.Duration, engine.ErrInvalidInterval)
	}
	return nil
}

// FrameInterval returns the render period for FrameRate
func (c *CLI) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return constants.FrameUpdateInterval
	}
	return time.Second / time.Duration(c.FrameRate)
}

// newParser builds the kong parser, configPaths are JSON files consulted for defaults
func newParser(cli *CLI, configPaths ...string) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("frameclock-demo"),
		kong.Description("Drive a frame clock through a fixed-timestep loop and watch its state."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, configPaths...),
	)
}
