// Package termhost runs the particle field in a terminal. Pixels are drawn
// as braille dots and the mouse drives the pointer.
package termhost

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/field"
	"github.com/pthm-cable/particlefield/game"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/renderer"
)

// surface is sized in pixels; the raster holds the matching cell grid.
type surface struct {
	w, h         int
	cellW, cellH int
	raster       *Raster
}

func (s *surface) Size() (int, int) { return s.w, s.h }

func (s *surface) Resize(w, h int) {
	s.w, s.h = w, h
	s.raster.Resize(w/s.cellW, h/s.cellH)
}

func (s *surface) Canvas() renderer.Canvas { return s.raster }

// Host is a tcell screen implementing field.Host.
type Host struct {
	*host.Loop
	screen  tcell.Screen
	cfg     config.TerminalConfig
	surface *surface

	pressed bool
}

// New creates a host on an initialized screen.
func New(screen tcell.Screen, cfg config.TerminalConfig) *Host {
	cols, rows := screen.Size()
	s := &surface{
		cellW:  cfg.CellWidth,
		cellH:  cfg.CellHeight,
		raster: NewRaster(cols, rows, cfg.CellWidth, cfg.CellHeight),
	}
	s.w, s.h = cols*cfg.CellWidth, rows*cfg.CellHeight
	return &Host{
		Loop:    host.NewLoop(),
		screen:  screen,
		cfg:     cfg,
		surface: s,
	}
}

// Surface implements field.Host.
func (h *Host) Surface() field.Surface {
	return h.surface
}

// Run mounts g and draws until a quit key, the tick limit or ctx ends it.
// The caller owns the screen and finalizes it afterwards.
func (h *Host) Run(ctx context.Context, g *game.Game) error {
	h.screen.EnableMouse(tcell.MouseMotionEvents)
	h.screen.EnableFocus()
	h.screen.HideCursor()

	// A failed mount leaves a blank screen; it is already logged.
	_ = g.Mount(h)
	defer g.Detach()
	bg := g.Simulator().Params().Background

	ticker := time.NewTicker(h.cfg.FrameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if !h.handle(ev) {
				return nil
			}

		case <-ticker.C:
			if h.RunFrame() == 0 {
				h.surface.raster.Clear(bg)
			}
			h.surface.raster.Flush(h.screen)
			h.screen.Show()
			if g.Done() {
				return nil
			}
		}
	}
}

// handle translates one terminal event. It returns false on a quit key.
func (h *Host) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}

	case *tcell.EventResize:
		cols, rows := ev.Size()
		w, hh := cols*h.cfg.CellWidth, rows*h.cfg.CellHeight
		h.Dispatch(field.Event{Kind: field.EventResize, Width: w, Height: hh})
		// Keep the grid in step even when nothing is mounted.
		if sw, sh := h.surface.Size(); sw != w || sh != hh {
			h.surface.Resize(w, hh)
		}
		h.screen.Sync()

	case *tcell.EventMouse:
		col, row := ev.Position()
		// Aim at the middle of the cell.
		x := (float64(col) + 0.5) * float64(h.cfg.CellWidth)
		y := (float64(row) + 0.5) * float64(h.cfg.CellHeight)
		h.Dispatch(field.Event{Kind: field.EventMove, X: x, Y: y})

		down := ev.Buttons()&tcell.Button1 != 0
		switch {
		case down && !h.pressed:
			h.Dispatch(field.Event{Kind: field.EventDown, X: x, Y: y})
		case !down && h.pressed:
			h.Dispatch(field.Event{Kind: field.EventUp, X: x, Y: y})
		}
		h.pressed = down

	case *tcell.EventFocus:
		if !ev.Focused {
			h.pressed = false
			h.Dispatch(field.Event{Kind: field.EventLeave})
		}
	}
	return true
}
