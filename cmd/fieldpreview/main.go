// Particle field preview tool - interactive tuning with sliders.
//
// Usage: go run ./cmd/fieldpreview [-config path]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/field"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/renderer"
	"github.com/pthm-cable/particlefield/systems"
	"github.com/pthm-cable/particlefield/telemetry"
	"github.com/pthm-cable/particlefield/ui"
)

const (
	windowWidth  = 1200
	windowHeight = 760
	panelWidth   = 320
	previewWidth = windowWidth - panelWidth
)

// slider binds one float parameter to a raygui slider.
type slider struct {
	label    string
	min, max float32
	format   string
	get      func(*systems.Params) float64
	set      func(*systems.Params, float64)
}

var sliders = []slider{
	{"Pointer radius", 0, 400, "%.0f",
		func(p *systems.Params) float64 { return p.PointerRadius },
		func(p *systems.Params, v float64) { p.PointerRadius = v }},
	{"Easing", 0.01, 1, "%.2f",
		func(p *systems.Params) float64 { return p.Easing },
		func(p *systems.Params, v float64) { p.Easing = v }},
	{"Link divisor", 1, 20, "%.1f",
		func(p *systems.Params) float64 { return p.LinkDivisor },
		func(p *systems.Params, v float64) { p.LinkDivisor = v }},
	{"Link alpha", 0, 1, "%.2f",
		func(p *systems.Params) float64 { return p.LinkAlpha },
		func(p *systems.Params, v float64) { p.LinkAlpha = v }},
	{"Area per particle", 1000, 40000, "%.0f",
		func(p *systems.Params) float64 { return p.AreaPerParticle },
		func(p *systems.Params, v float64) { p.AreaPerParticle = v }},
	{"Max particles", 0, config.ParticleCap, "%.0f",
		func(p *systems.Params) float64 { return float64(p.MaxParticles) },
		func(p *systems.Params, v float64) { p.MaxParticles = int(v) }},
	{"Speed max", 0, 2, "%.2f",
		func(p *systems.Params) float64 { return p.SpeedMax },
		func(p *systems.Params, v float64) { p.SpeedMax = v }},
}

// previewSurface is the left part of the window.
type previewSurface struct {
	w, h   int
	canvas *renderer.RayCanvas
}

func (s *previewSurface) Size() (int, int)        { return s.w, s.h }
func (s *previewSurface) Resize(w, h int)         { s.w, s.h = w, h }
func (s *previewSurface) Canvas() renderer.Canvas { return s.canvas }

type previewHost struct {
	*host.Loop
	surface *previewSurface
}

func (h *previewHost) Surface() field.Surface { return h.surface }

func main() {
	configPath := flag.String("config", "", "path to config YAML (defaults embedded)")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	defaults := systems.ParamsFromConfig(cfg)

	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(windowWidth, windowHeight, "Particle Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	h := &previewHost{
		Loop:    host.NewLoop(),
		surface: &previewSurface{w: previewWidth, h: windowHeight, canvas: renderer.NewRayCanvas()},
	}
	sim := field.NewSimulator(defaults, rand.New(rand.NewSource(*seed)), field.Options{
		Cursor: renderer.NewCursor(cfg),
		Perf:   perf,
	})
	if err := sim.Mount(h); err != nil {
		slog.Error("failed to mount field", "error", err)
		os.Exit(1)
	}
	defer sim.Detach()

	hud := ui.NewHUD(10, 10)
	perfPanel := ui.NewPerfPanel(10, windowHeight-130)
	inside := false

	for !rl.WindowShouldClose() {
		// Pointer events only inside the preview area.
		m := rl.GetMousePosition()
		if m.X >= 0 && m.X < previewWidth && m.Y >= 0 && m.Y < windowHeight && rl.IsCursorOnScreen() {
			inside = true
			h.Dispatch(field.Event{Kind: field.EventMove, X: float64(m.X), Y: float64(m.Y)})
			if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
				h.Dispatch(field.Event{Kind: field.EventDown, X: float64(m.X), Y: float64(m.Y)})
			}
		} else if inside {
			inside = false
			h.Dispatch(field.Event{Kind: field.EventLeave})
		}
		if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
			h.Dispatch(field.Event{Kind: field.EventUp, X: float64(m.X), Y: float64(m.Y)})
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)
		h.RunFrame()

		hud.Draw(ui.HUDData{
			Title:     "Preview",
			Particles: sim.Len(),
			Links:     sim.Links(),
			Tick:      sim.Tick(),
			FPS:       rl.GetFPS(),
			Width:     previewWidth,
			Height:    windowHeight,
			Pointer:   sim.Pointer().Present,
		})
		perfPanel.Draw(perf.Stats())

		drawPanel(sim, defaults, cfg)
		rl.EndDrawing()
	}
}

// drawPanel draws the controls and applies any change to sim.
func drawPanel(sim *field.Simulator, defaults systems.Params, cfg *config.Config) {
	panelX := float32(previewWidth + 15)
	panelY := float32(10)
	sliderWidth := float32(panelWidth - 90)

	rl.DrawRectangle(previewWidth, 0, panelWidth, windowHeight, rl.RayWhite)
	rl.DrawText("Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
	panelY += 35

	prm := sim.Params()
	changed := false
	for _, s := range sliders {
		cur := float32(s.get(&prm))
		rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		next := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: sliderWidth, Height: 20},
			"", "",
			cur, s.min, s.max,
		)
		rl.DrawText(fmt.Sprintf(s.format, cur), int32(panelX+sliderWidth+10), int32(panelY+2), 16, rl.DarkGray)
		if next != cur {
			s.set(&prm, float64(next))
			changed = true
		}
		panelY += 35
	}
	if changed {
		sim.SetParams(prm)
	}

	panelY += 10
	if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Regenerate") {
		sim.Regenerate()
	}
	if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
		sim.SetParams(defaults)
	}
	panelY += 45

	// Pointer readout
	if p := sim.Pointer(); p.Present {
		rl.DrawText(fmt.Sprintf("Pointer: %.0f, %.0f", p.At.X, p.At.Y), int32(panelX), int32(panelY), 14, rl.Gray)
		if near, ok := nearest(sim.Particles(), p.At); ok {
			rl.DrawText(fmt.Sprintf("Nearest: size %.2f density %.1f", near.Size, near.Density),
				int32(panelX), int32(panelY+18), 14, rl.Gray)
		}
	}

	rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), windowHeight-30, 12, rl.Gray)
	if rl.IsKeyPressed(rl.KeyC) {
		if text, err := fieldYAML(cfg.Field, sim.Params()); err == nil {
			rl.SetClipboardText(text)
		} else {
			slog.Warn("failed to encode parameters", "error", err)
		}
	}
}

func nearest(particles []systems.Particle, at r2.Vec) (systems.Particle, bool) {
	best, bestD := -1, 0.0
	for i, p := range particles {
		if d := r2.Norm(r2.Sub(p.Pos, at)); best < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	if best < 0 {
		return systems.Particle{}, false
	}
	return particles[best], true
}

// fieldYAML renders the tuned values as a config snippet.
func fieldYAML(base config.FieldConfig, prm systems.Params) (string, error) {
	base.PointerRadius = prm.PointerRadius
	base.Easing = prm.Easing
	base.LinkDivisor = prm.LinkDivisor
	base.LinkAlpha = prm.LinkAlpha
	base.AreaPerParticle = prm.AreaPerParticle
	base.MaxParticles = prm.MaxParticles
	base.SpeedMax = prm.SpeedMax
	out, err := yaml.Marshal(map[string]config.FieldConfig{"field": base})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
