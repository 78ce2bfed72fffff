package ui

import (
	"fmt"
	"time"

	"github.com/pthm-cable/particlefield/telemetry"
)

// Level grades a line for coloring.
type Level int

const (
	LevelNormal Level = iota
	LevelWarn
	LevelHot
)

// Line is one row of panel text.
type Line struct {
	Text  string
	Level Level
}

// HUDData holds the data shown in the main HUD.
type HUDData struct {
	Title     string
	Particles int
	Links     int
	Tick      uint64
	FPS       int32
	Width     int
	Height    int
	Pointer   bool
}

// Lines formats the HUD rows.
func (d HUDData) Lines() []Line {
	pointer := "away"
	if d.Pointer {
		pointer = "on surface"
	}
	lines := []Line{
		{Text: fmt.Sprintf("Particles: %d | Links: %d", d.Particles, d.Links)},
		{Text: fmt.Sprintf("Tick: %d | FPS: %d", d.Tick, d.FPS)},
		{Text: fmt.Sprintf("Surface: %dx%d | Pointer: %s", d.Width, d.Height, pointer)},
	}
	if d.Particles == 0 {
		lines = append(lines, Line{Text: "Surface too small for particles", Level: LevelWarn})
	}
	return lines
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	x, y     int32
}

// NewHUD creates a HUD anchored at (x, y).
func NewHUD(x, y int32) *HUD {
	return &HUD{renderer: NewRenderer(), x: x, y: y}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	h.renderer.DrawLines(h.x, h.y, 300, data.Title, data.Lines())
}

// PerfPanel renders the per-phase frame timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	p.renderer.DrawLines(p.x, p.y, 260, "Frame Performance", PerfLines(stats))
}

// PerfLines formats the average frame time followed by one row per phase.
// Phases over 20% of the frame are hot, over 10% a warning.
func PerfLines(stats telemetry.PerfStats) []Line {
	lines := []Line{{Text: fmt.Sprintf("Avg: %s | Max: %s",
		stats.AvgTickDuration.Round(time.Microsecond), stats.MaxTickDuration.Round(time.Microsecond))}}
	for _, name := range telemetry.Phases() {
		avg, ok := stats.PhaseAvg[name]
		if !ok {
			continue
		}
		pct := stats.PhasePct[name]
		level := LevelNormal
		switch {
		case pct > 20:
			level = LevelHot
		case pct > 10:
			level = LevelWarn
		}
		lines = append(lines, Line{
			Text:  fmt.Sprintf("%-10s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			Level: level,
		})
	}
	return lines
}
