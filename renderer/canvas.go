// Package renderer draws the particle field onto a host surface.
package renderer

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"
)

// Canvas is a 2D drawing context. Coordinates are surface pixels with the
// origin at the top-left corner.
type Canvas interface {
	Clear(bg color.NRGBA)
	FillCircle(center r2.Vec, radius float64, c color.NRGBA)
	StrokeCircle(center r2.Vec, radius, width float64, c color.NRGBA)
	StrokeLine(a, b r2.Vec, width float64, c color.NRGBA)
}

// WithAlpha returns c with its alpha replaced by a in [0, 1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	a = min(max(a, 0), 1)
	c.A = uint8(a*255 + 0.5)
	return c
}
