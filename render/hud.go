package render

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/frameclock/engine"
	"github.com/lixenwraith/frameclock/engine/status"
)

const (
	hudX       = 2
	hudY       = 1
	labelWidth = 14
	barWidth   = 30
)

// HelpLine lists the demo key bindings
const HelpLine = "q quit  +/- scale  0 freeze  1 reset  p pause  f/F fixed rate"

// HUD draws clock state as labelled rows onto a tcell screen
type HUD struct {
	screen     tcell.Screen
	labelStyle tcell.Style
	valueStyle tcell.Style
	barStyle   tcell.Style
	warnStyle  tcell.Style
	helpStyle  tcell.Style
}

// NewHUD creates a HUD drawing onto screen
func NewHUD(screen tcell.Screen) *HUD {
	base := tcell.StyleDefault
	return &HUD{
		screen:     screen,
		labelStyle: base.Foreground(tcell.ColorGray),
		valueStyle: base.Foreground(tcell.ColorWhite).Bold(true),
		barStyle:   base.Foreground(tcell.ColorGreen),
		warnStyle:  base.Foreground(tcell.ColorYellow).Bold(true),
		helpStyle:  base.Foreground(tcell.ColorDarkCyan),
	}
}

// Draw clears the screen and renders one frame of clock state
// Caller calls screen.Show
func (h *HUD) Draw(res *engine.TimeResource, reg *status.Registry, paused bool) {
	h.screen.Clear()

	rows := []struct {
		label string
		value string
	}{
		{"frame", fmt.Sprintf("%d", res.FrameNumber)},
		{"delta", formatDuration(res.DeltaTime)},
		{"delta real", formatDuration(res.DeltaRealTime)},
		{"absolute", formatDuration(res.AbsoluteTime)},
		{"absolute real", formatDuration(res.AbsoluteRealTime)},
		{"time scale", fmt.Sprintf("x%.4g", res.TimeScale)},
		{"fixed", formatDuration(res.FixedTime)},
		{"fixed steps", fmt.Sprintf("%d", reg.Ints.Get(engine.MetricFixedSteps).Load())},
		{"deferred", fmt.Sprintf("%d", reg.Ints.Get(engine.MetricDeferredSteps).Load())},
	}

	y := hudY
	for _, row := range rows {
		h.drawText(hudX, y, h.labelStyle, row.label)
		h.drawText(hudX+labelWidth, y, h.valueStyle, row.value)
		y++
	}

	h.drawText(hudX, y, h.labelStyle, "alpha")
	h.drawBar(hudX+labelWidth, y, res.Alpha)
	y += 2

	state, style := "running", h.valueStyle
	if paused {
		state, style = "PAUSED", h.warnStyle
	} else if res.TimeScale == 0 {
		state, style = "FROZEN", h.warnStyle
	}
	h.drawText(hudX, y, h.labelStyle, "state")
	h.drawText(hudX+labelWidth, y, style, state)
	y += 2

	h.drawText(hudX, y, h.helpStyle, HelpLine)
}

// drawBar renders fraction in [0,1] as a filled bar, out-of-range values are clamped
func (h *HUD) drawBar(x, y int, fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*barWidth + 0.5)

	h.screen.SetContent(x, y, '[', nil, h.labelStyle)
	for i := 0; i < barWidth; i++ {
		ch := '·'
		if i < filled {
			ch = '█'
		}
		h.screen.SetContent(x+1+i, y, ch, nil, h.barStyle)
	}
	h.screen.SetContent(x+1+barWidth, y, ']', nil, h.labelStyle)
}

// drawText writes s from (x, y), clipped at the screen edge
func (h *HUD) drawText(x, y int, style tcell.Style, s string) {
	w, _ := h.screen.Size()
	for _, r := range s {
		if x >= w {
			return
		}
		h.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// formatDuration renders d in milliseconds below a second and seconds above
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}
