// Package ebitenhost runs the particle field in an ebiten window.
package ebitenhost

import (
	"context"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/field"
	"github.com/pthm-cable/particlefield/game"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/renderer"
)

// canvas draws onto the screen image of the current Draw call.
type canvas struct {
	dst *ebiten.Image
}

func (c *canvas) Clear(bg color.NRGBA) {
	c.dst.Fill(bg)
}

func (c *canvas) FillCircle(center r2.Vec, radius float64, clr color.NRGBA) {
	vector.DrawFilledCircle(c.dst, float32(center.X), float32(center.Y), float32(radius), clr, true)
}

func (c *canvas) StrokeCircle(center r2.Vec, radius, width float64, clr color.NRGBA) {
	vector.StrokeCircle(c.dst, float32(center.X), float32(center.Y), float32(radius), float32(width), clr, true)
}

func (c *canvas) StrokeLine(a, b r2.Vec, width float64, clr color.NRGBA) {
	vector.StrokeLine(c.dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), float32(width), clr, true)
}

type surface struct {
	w, h   int
	canvas *canvas
}

func (s *surface) Size() (int, int) { return s.w, s.h }

func (s *surface) Resize(w, h int) { s.w, s.h = w, h }

func (s *surface) Canvas() renderer.Canvas { return s.canvas }

// Host is an ebiten game implementing field.Host.
type Host struct {
	*host.Loop
	cfg     config.ScreenConfig
	surface *surface

	ctx context.Context
	g   *game.Game
	bg  color.NRGBA

	// Outside size reported by the last Layout call.
	layoutW, layoutH int

	inside bool
	last   r2.Vec
}

// New creates a host for a window described by cfg.
func New(cfg config.ScreenConfig) *Host {
	return &Host{
		Loop:    host.NewLoop(),
		cfg:     cfg,
		surface: &surface{w: cfg.Width, h: cfg.Height, canvas: &canvas{}},
		layoutW: cfg.Width,
		layoutH: cfg.Height,
	}
}

// Surface implements field.Host.
func (h *Host) Surface() field.Surface {
	return h.surface
}

// Run mounts g and runs the ebiten loop until the window is closed, the
// tick limit is reached or ctx is cancelled.
func (h *Host) Run(ctx context.Context, g *game.Game) error {
	h.ctx, h.g = ctx, g
	h.bg = g.Simulator().Params().Background

	ebiten.SetWindowSize(h.cfg.Width, h.cfg.Height)
	ebiten.SetWindowTitle(h.cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(h.cfg.TargetFPS)
	if g.Config().Cursor.Enabled {
		ebiten.SetCursorMode(ebiten.CursorModeHidden)
	}

	// A failed mount leaves an empty window; it is already logged.
	_ = g.Mount(h)
	defer g.Detach()

	return ebiten.RunGame(h)
}

// Update dispatches input and resize events.
func (h *Host) Update() error {
	if h.ctx.Err() != nil || h.g.Done() {
		return ebiten.Termination
	}

	if h.layoutW != h.surface.w || h.layoutH != h.surface.h {
		h.Dispatch(field.Event{Kind: field.EventResize, Width: h.layoutW, Height: h.layoutH})
		// Keep the surface in step even when nothing is mounted.
		h.surface.Resize(h.layoutW, h.layoutH)
	}

	x, y := ebiten.CursorPosition()
	if x < 0 || y < 0 || x >= h.surface.w || y >= h.surface.h {
		if h.inside {
			h.inside = false
			h.Dispatch(field.Event{Kind: field.EventLeave})
		}
		return nil
	}

	at := r2.Vec{X: float64(x), Y: float64(y)}
	if !h.inside || at != h.last {
		h.inside = true
		h.last = at
		h.Dispatch(field.Event{Kind: field.EventMove, X: at.X, Y: at.Y})
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		h.Dispatch(field.Event{Kind: field.EventDown, X: at.X, Y: at.Y})
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		h.Dispatch(field.Event{Kind: field.EventUp, X: at.X, Y: at.Y})
	}
	return nil
}

// Draw runs the pending frame callbacks against screen.
func (h *Host) Draw(screen *ebiten.Image) {
	h.surface.canvas.dst = screen
	if h.RunFrame() == 0 {
		screen.Fill(h.bg)
	}
	h.surface.canvas.dst = nil
}

// Layout keeps the logical screen equal to the window size so one field
// pixel is one window pixel.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	h.layoutW, h.layoutH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
