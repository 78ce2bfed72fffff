package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"
)

// ringSegments matches the smoothness of raylib's own DrawCircleLines.
const ringSegments = 36

// RayCanvas draws onto the current raylib render target. Calls must happen
// between BeginDrawing and EndDrawing on the window thread.
type RayCanvas struct{}

// NewRayCanvas creates a raylib canvas.
func NewRayCanvas() *RayCanvas {
	return &RayCanvas{}
}

func (RayCanvas) Clear(bg color.NRGBA) {
	rl.ClearBackground(rayColor(bg))
}

func (RayCanvas) FillCircle(center r2.Vec, radius float64, c color.NRGBA) {
	rl.DrawCircleV(rayVec(center), float32(radius), rayColor(c))
}

func (RayCanvas) StrokeCircle(center r2.Vec, radius, width float64, c color.NRGBA) {
	inner := float32(max(radius-width/2, 0))
	outer := float32(radius + width/2)
	rl.DrawRing(rayVec(center), inner, outer, 0, 360, ringSegments, rayColor(c))
}

func (RayCanvas) StrokeLine(a, b r2.Vec, width float64, c color.NRGBA) {
	rl.DrawLineEx(rayVec(a), rayVec(b), float32(width), rayColor(c))
}

// raylib colors are non-premultiplied, same as NRGBA.
func rayColor(c color.NRGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func rayVec(v r2.Vec) rl.Vector2 {
	return rl.NewVector2(float32(v.X), float32(v.Y))
}
