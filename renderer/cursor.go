package renderer

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/particlefield/config"
)

// Cursor draws a dot with an outline ring at the pointer. Both shrink while
// a button is held.
type Cursor struct {
	Color            color.NRGBA
	DotRadius        float64
	RingRadius       float64
	RingWidth        float64
	PressedDotScale  float64
	PressedRingScale float64
}

// NewCursor builds a cursor from config. It returns nil when the overlay is
// disabled.
func NewCursor(cfg *config.Config) *Cursor {
	c := cfg.Cursor
	if !c.Enabled {
		return nil
	}
	return &Cursor{
		Color:            cfg.Derived.CursorColor,
		DotRadius:        c.DotRadius,
		RingRadius:       c.RingRadius,
		RingWidth:        c.RingWidth,
		PressedDotScale:  c.PressedDotScale,
		PressedRingScale: c.PressedRingScale,
	}
}

// Draw renders the cursor at the given point.
func (c *Cursor) Draw(cv Canvas, at r2.Vec, pressed bool) {
	dot, ring := c.DotRadius, c.RingRadius
	if pressed {
		dot *= c.PressedDotScale
		ring *= c.PressedRingScale
	}
	cv.StrokeCircle(at, ring, c.RingWidth, c.Color)
	cv.FillCircle(at, dot, c.Color)
}
