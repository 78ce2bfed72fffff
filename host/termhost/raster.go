package termhost

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
)

// Each cell is a 2×4 braille dot matrix.
const (
	dotsX       = 2
	dotsY       = 4
	brailleBase = 0x2800
)

// brailleBits maps a dot at (x, y) inside a cell to its bit in the pattern.
var brailleBits = [dotsX][dotsY]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

type cell struct {
	dots  rune
	ink   color.NRGBA // strongest color drawn into the cell
	alpha float64
}

// Raster is a Canvas that rasterizes into braille dots on a grid of
// terminal cells. Each cell stands for cellW×cellH surface pixels. A cell
// shows the strongest color drawn into it, blended over the background.
type Raster struct {
	cols, rows   int
	cellW, cellH float64
	bg           color.NRGBA
	cells        []cell
}

// NewRaster creates a raster of cols×rows cells.
func NewRaster(cols, rows, cellW, cellH int) *Raster {
	r := &Raster{cellW: float64(cellW), cellH: float64(cellH)}
	r.Resize(cols, rows)
	return r
}

// Resize changes the grid size and clears it.
func (r *Raster) Resize(cols, rows int) {
	r.cols, r.rows = max(cols, 0), max(rows, 0)
	r.cells = make([]cell, r.cols*r.rows)
}

// Size returns the grid size in cells.
func (r *Raster) Size() (cols, rows int) {
	return r.cols, r.rows
}

func (r *Raster) Clear(bg color.NRGBA) {
	r.bg = bg
	clear(r.cells)
}

func (r *Raster) FillCircle(center r2.Vec, radius float64, c color.NRGBA) {
	cx, cy := r.toDots(center)
	rx, ry := radius*dotsX/r.cellW, radius*dotsY/r.cellH
	// Always mark the dot under the center so small particles stay visible.
	r.set(int(math.Floor(cx)), int(math.Floor(cy)), c)
	for y := int(math.Floor(cy - ry)); y <= int(math.Ceil(cy+ry)); y++ {
		for x := int(math.Floor(cx - rx)); x <= int(math.Ceil(cx+rx)); x++ {
			dx := (float64(x) + 0.5 - cx) / max(rx, 1e-9)
			dy := (float64(y) + 0.5 - cy) / max(ry, 1e-9)
			if dx*dx+dy*dy <= 1 {
				r.set(x, y, c)
			}
		}
	}
}

func (r *Raster) StrokeCircle(center r2.Vec, radius, _ float64, c color.NRGBA) {
	cx, cy := r.toDots(center)
	rx, ry := radius*dotsX/r.cellW, radius*dotsY/r.cellH
	steps := max(8, int(math.Ceil(2*math.Pi*max(rx, ry))))
	for i := 0; i < steps; i++ {
		t := 2 * math.Pi * float64(i) / float64(steps)
		r.set(int(math.Floor(cx+rx*math.Cos(t))), int(math.Floor(cy+ry*math.Sin(t))), c)
	}
}

func (r *Raster) StrokeLine(a, b r2.Vec, _ float64, c color.NRGBA) {
	ax, ay := r.toDots(a)
	bx, by := r.toDots(b)
	steps := int(math.Ceil(max(math.Abs(bx-ax), math.Abs(by-ay))))
	if steps == 0 {
		r.set(int(math.Floor(ax)), int(math.Floor(ay)), c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		r.set(int(math.Floor(ax+(bx-ax)*t)), int(math.Floor(ay+(by-ay)*t)), c)
	}
}

// toDots converts surface pixels to dot coordinates.
func (r *Raster) toDots(p r2.Vec) (float64, float64) {
	return p.X * dotsX / r.cellW, p.Y * dotsY / r.cellH
}

func (r *Raster) set(x, y int, c color.NRGBA) {
	if x < 0 || y < 0 || x >= r.cols*dotsX || y >= r.rows*dotsY {
		return
	}
	cl := &r.cells[(y/dotsY)*r.cols+x/dotsX]
	cl.dots |= brailleBits[x%dotsX][y%dotsY]
	if a := float64(c.A) / 255; a > cl.alpha {
		cl.alpha = a
		cl.ink = c
	}
}

// Cell returns the braille rune and foreground color of a cell. Empty cells
// are a space in the background color.
func (r *Raster) Cell(col, row int) (rune, color.NRGBA) {
	if col < 0 || row < 0 || col >= r.cols || row >= r.rows {
		return ' ', r.bg
	}
	cl := r.cells[row*r.cols+col]
	if cl.dots == 0 {
		return ' ', r.bg
	}
	return brailleBase + cl.dots, blend(r.bg, cl.ink, cl.alpha)
}

// Flush writes the grid to screen. It does not call Show.
func (r *Raster) Flush(screen tcell.Screen) {
	bg := tcellColor(r.bg)
	for row := 0; row < r.rows; row++ {
		for col := 0; col < r.cols; col++ {
			ch, fg := r.Cell(col, row)
			style := tcell.StyleDefault.Background(bg).Foreground(tcellColor(fg))
			screen.SetContent(col, row, ch, nil, style)
		}
	}
}

// blend mixes ink over bg by alpha in RGB space.
func blend(bg, ink color.NRGBA, alpha float64) color.NRGBA {
	b := colorful.Color{R: float64(bg.R) / 255, G: float64(bg.G) / 255, B: float64(bg.B) / 255}
	f := colorful.Color{R: float64(ink.R) / 255, G: float64(ink.G) / 255, B: float64(ink.B) / 255}
	red, green, blue := b.BlendRgb(f, alpha).Clamped().RGB255()
	return color.NRGBA{R: red, G: green, B: blue, A: 255}
}

func tcellColor(c color.NRGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
