// Package wire encodes draw lists for the browser client and decodes the
// pointer and viewport events it sends back.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/particlefield/renderer"
)

// Frame layout, little-endian:
//
//	opcode  u8      OpCodeFrame
//	clear   u8 x4   r g b a
//	count   u16     number of ops
//	ops     ...     kind u8 followed by its payload
//
// Payloads are float32 fields followed by r g b a:
//
//	fill circle    x y r
//	stroke circle  x y r width
//	stroke line    x0 y0 x1 y1 width
const (
	OpCodeFrame byte = 0x01

	kindFillCircle   byte = 1
	kindStrokeCircle byte = 2
	kindStrokeLine   byte = 3

	headerSize = 1 + 4 + 2
	maxOps     = math.MaxUint16
)

var (
	ErrShortFrame = errors.New("wire: short frame")
	ErrBadOpcode  = errors.New("wire: unknown opcode")
)

// Encoder is a Canvas that serializes draw calls into a frame. Clear starts
// a new frame; calls past the op limit are dropped and counted.
type Encoder struct {
	buf     []byte
	ops     int
	dropped int
}

// NewEncoder creates an encoder holding an empty frame.
func NewEncoder() *Encoder {
	e := &Encoder{}
	e.Clear(color.NRGBA{})
	return e
}

func (e *Encoder) Clear(bg color.NRGBA) {
	e.buf = append(e.buf[:0], OpCodeFrame, bg.R, bg.G, bg.B, bg.A, 0, 0)
	e.ops = 0
	e.dropped = 0
}

func (e *Encoder) FillCircle(center r2.Vec, radius float64, c color.NRGBA) {
	if !e.begin(kindFillCircle) {
		return
	}
	e.floats(center.X, center.Y, radius)
	e.color(c)
}

func (e *Encoder) StrokeCircle(center r2.Vec, radius, width float64, c color.NRGBA) {
	if !e.begin(kindStrokeCircle) {
		return
	}
	e.floats(center.X, center.Y, radius, width)
	e.color(c)
}

func (e *Encoder) StrokeLine(a, b r2.Vec, width float64, c color.NRGBA) {
	if !e.begin(kindStrokeLine) {
		return
	}
	e.floats(a.X, a.Y, b.X, b.Y, width)
	e.color(c)
}

func (e *Encoder) begin(kind byte) bool {
	if e.ops == maxOps {
		e.dropped++
		return false
	}
	e.ops++
	e.buf = append(e.buf, kind)
	return true
}

func (e *Encoder) floats(vs ...float64) {
	for _, v := range vs {
		e.buf = binary.LittleEndian.AppendUint32(e.buf, math.Float32bits(float32(v)))
	}
}

func (e *Encoder) color(c color.NRGBA) {
	e.buf = append(e.buf, c.R, c.G, c.B, c.A)
}

// Bytes returns the encoded frame. The slice is reused by the next Clear.
func (e *Encoder) Bytes() []byte {
	binary.LittleEndian.PutUint16(e.buf[5:7], uint16(e.ops))
	return e.buf
}

// Ops returns the number of encoded draw calls.
func (e *Encoder) Ops() int {
	return e.ops
}

// Dropped returns the number of calls discarded since the last Clear.
func (e *Encoder) Dropped() int {
	return e.dropped
}

// Frame is a decoded draw list.
type Frame struct {
	Clear color.NRGBA
	Ops   []renderer.Op
}

// Replay issues the frame on c.
func (f Frame) Replay(c renderer.Canvas) {
	c.Clear(f.Clear)
	for _, op := range f.Ops {
		renderer.Apply(c, op)
	}
}

// Decode parses an encoded frame.
func Decode(data []byte) (Frame, error) {
	if len(data) < headerSize {
		return Frame{}, ErrShortFrame
	}
	if data[0] != OpCodeFrame {
		return Frame{}, fmt.Errorf("%w: 0x%02x", ErrBadOpcode, data[0])
	}
	f := Frame{Clear: color.NRGBA{R: data[1], G: data[2], B: data[3], A: data[4]}}
	n := int(binary.LittleEndian.Uint16(data[5:7]))
	f.Ops = make([]renderer.Op, 0, n)

	r := reader{data: data[headerSize:]}
	for i := 0; i < n; i++ {
		kind := r.u8()
		var op renderer.Op
		switch kind {
		case kindFillCircle:
			op.Kind = renderer.OpFillCircle
			op.A = r2.Vec{X: r.f32(), Y: r.f32()}
			op.Radius = r.f32()
		case kindStrokeCircle:
			op.Kind = renderer.OpStrokeCircle
			op.A = r2.Vec{X: r.f32(), Y: r.f32()}
			op.Radius = r.f32()
			op.Width = r.f32()
		case kindStrokeLine:
			op.Kind = renderer.OpStrokeLine
			op.A = r2.Vec{X: r.f32(), Y: r.f32()}
			op.B = r2.Vec{X: r.f32(), Y: r.f32()}
			op.Width = r.f32()
		default:
			if r.short {
				return Frame{}, ErrShortFrame
			}
			return Frame{}, fmt.Errorf("wire: op %d has unknown kind %d", i, kind)
		}
		op.Color = color.NRGBA{R: r.u8(), G: r.u8(), B: r.u8(), A: r.u8()}
		if r.short {
			return Frame{}, fmt.Errorf("%w: op %d of %d truncated", ErrShortFrame, i, n)
		}
		f.Ops = append(f.Ops, op)
	}
	return f, nil
}

// reader consumes a byte slice and records whether it ran out.
type reader struct {
	data  []byte
	short bool
}

func (r *reader) u8() byte {
	if len(r.data) < 1 {
		r.short = true
		return 0
	}
	b := r.data[0]
	r.data = r.data[1:]
	return b
}

func (r *reader) f32() float64 {
	if len(r.data) < 4 {
		r.short = true
		r.data = nil
		return 0
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(r.data))
	r.data = r.data[4:]
	return float64(v)
}
