package renderer

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"
)

// OpKind identifies a recorded draw operation.
type OpKind uint8

const (
	OpClear OpKind = iota
	OpFillCircle
	OpStrokeCircle
	OpStrokeLine
)

func (k OpKind) String() string {
	switch k {
	case OpClear:
		return "clear"
	case OpFillCircle:
		return "fill_circle"
	case OpStrokeCircle:
		return "stroke_circle"
	case OpStrokeLine:
		return "stroke_line"
	}
	return "unknown"
}

// Op is one recorded draw call. Lines use A and B, circles use A and Radius.
type Op struct {
	Kind   OpKind
	A, B   r2.Vec
	Radius float64
	Width  float64
	Color  color.NRGBA
}

// Recorder is a Canvas that keeps the draw calls of the current frame and
// running totals across all frames. A Clear starts a new frame.
type Recorder struct {
	frame  []Op
	counts [4]int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Clear(bg color.NRGBA) {
	r.frame = r.frame[:0]
	r.record(Op{Kind: OpClear, Color: bg})
}

func (r *Recorder) FillCircle(center r2.Vec, radius float64, c color.NRGBA) {
	r.record(Op{Kind: OpFillCircle, A: center, Radius: radius, Color: c})
}

func (r *Recorder) StrokeCircle(center r2.Vec, radius, width float64, c color.NRGBA) {
	r.record(Op{Kind: OpStrokeCircle, A: center, Radius: radius, Width: width, Color: c})
}

func (r *Recorder) StrokeLine(a, b r2.Vec, width float64, c color.NRGBA) {
	r.record(Op{Kind: OpStrokeLine, A: a, B: b, Width: width, Color: c})
}

func (r *Recorder) record(op Op) {
	r.frame = append(r.frame, op)
	r.counts[op.Kind]++
}

// Frame returns a copy of the calls since the last Clear.
func (r *Recorder) Frame() []Op {
	return append([]Op(nil), r.frame...)
}

// Count returns the total number of calls of kind k.
func (r *Recorder) Count(k OpKind) int {
	return r.counts[k]
}

// DrawCalls returns the total number of calls of every kind.
func (r *Recorder) DrawCalls() int {
	total := 0
	for _, n := range r.counts {
		total += n
	}
	return total
}

// Replay issues the current frame's calls on c.
func (r *Recorder) Replay(c Canvas) {
	for _, op := range r.frame {
		Apply(c, op)
	}
}

// Apply issues a single recorded call on c.
func Apply(c Canvas, op Op) {
	switch op.Kind {
	case OpClear:
		c.Clear(op.Color)
	case OpFillCircle:
		c.FillCircle(op.A, op.Radius, op.Color)
	case OpStrokeCircle:
		c.StrokeCircle(op.A, op.Radius, op.Width, op.Color)
	case OpStrokeLine:
		c.StrokeLine(op.A, op.B, op.Width, op.Color)
	}
}
