// Package rayhost runs the particle field in a resizable raylib window.
package rayhost

import (
	"context"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/field"
	"github.com/pthm-cable/particlefield/game"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/renderer"
	"github.com/pthm-cable/particlefield/ui"
)

// surface is the window backbuffer.
type surface struct {
	w, h   int
	canvas *renderer.RayCanvas
}

func (s *surface) Size() (int, int) { return s.w, s.h }

func (s *surface) Resize(w, h int) { s.w, s.h = w, h }

func (s *surface) Canvas() renderer.Canvas { return s.canvas }

// Host is a raylib window implementing field.Host.
type Host struct {
	*host.Loop
	cfg     config.ScreenConfig
	surface *surface

	inside bool
	last   r2.Vec

	// F3 toggles the HUD
	showHUD   bool
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
}

// New creates a host for a window described by cfg. The window is opened
// by Run. showHUD sets the initial HUD visibility.
func New(cfg config.ScreenConfig, showHUD bool) *Host {
	return &Host{
		Loop:      host.NewLoop(),
		cfg:       cfg,
		surface:   &surface{w: cfg.Width, h: cfg.Height, canvas: renderer.NewRayCanvas()},
		showHUD:   showHUD,
		hud:       ui.NewHUD(10, 10),
		perfPanel: ui.NewPerfPanel(10, 100),
	}
}

// Surface implements field.Host.
func (h *Host) Surface() field.Surface {
	return h.surface
}

// Run opens the window, mounts g and draws until the window is closed, the
// tick limit is reached or ctx is cancelled. It must be called from the
// main goroutine.
func (h *Host) Run(ctx context.Context, g *game.Game) error {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(h.cfg.Width), int32(h.cfg.Height), h.cfg.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(h.cfg.TargetFPS))

	h.surface.w, h.surface.h = rl.GetScreenWidth(), rl.GetScreenHeight()
	if g.Config().Cursor.Enabled {
		rl.HideCursor()
	}

	// A failed mount leaves an empty window; it is already logged.
	_ = g.Mount(h)
	defer g.Detach()

	bg := g.Simulator().Params().Background
	for !rl.WindowShouldClose() && ctx.Err() == nil && !g.Done() {
		h.pollEvents()

		rl.BeginDrawing()
		if h.RunFrame() == 0 {
			h.surface.canvas.Clear(bg)
		}
		if h.showHUD {
			h.drawHUD(g)
		}
		rl.EndDrawing()
	}
	return nil
}

func (h *Host) drawHUD(g *game.Game) {
	sim := g.Simulator()
	h.hud.Draw(ui.HUDData{
		Title:     h.cfg.Title,
		Particles: sim.Len(),
		Links:     sim.Links(),
		Tick:      sim.Tick(),
		FPS:       rl.GetFPS(),
		Width:     h.surface.w,
		Height:    h.surface.h,
		Pointer:   sim.Pointer().Present,
	})
	h.perfPanel.SetPosition(10, int32(h.surface.h)-130)
	h.perfPanel.Draw(g.Perf())
}

// pollEvents turns raylib input state into field events.
func (h *Host) pollEvents() {
	if rl.IsKeyPressed(rl.KeyF3) {
		h.showHUD = !h.showHUD
	}
	if rl.IsWindowResized() {
		w, hh := rl.GetScreenWidth(), rl.GetScreenHeight()
		if w != h.surface.w || hh != h.surface.h {
			h.Dispatch(field.Event{Kind: field.EventResize, Width: w, Height: hh})
			// Keep the surface in step even when nothing is mounted.
			h.surface.Resize(w, hh)
		}
	}

	if !rl.IsCursorOnScreen() {
		if h.inside {
			h.inside = false
			h.Dispatch(field.Event{Kind: field.EventLeave})
		}
		return
	}

	m := rl.GetMousePosition()
	at := r2.Vec{X: float64(m.X), Y: float64(m.Y)}
	if !h.inside || at != h.last {
		h.inside = true
		h.last = at
		h.Dispatch(field.Event{Kind: field.EventMove, X: at.X, Y: at.Y})
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		h.Dispatch(field.Event{Kind: field.EventDown, X: at.X, Y: at.Y})
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		h.Dispatch(field.Event{Kind: field.EventUp, X: at.X, Y: at.Y})
	}
}
