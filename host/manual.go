package host

import (
	"context"

	"github.com/pthm-cable/particlefield/field"
	"github.com/pthm-cable/particlefield/renderer"
)

// MemSurface is an in-memory surface drawing into a Recorder.
type MemSurface struct {
	w, h     int
	rec      *renderer.Recorder
	noCanvas bool
}

// NewMemSurface creates a w×h surface with a recording canvas.
func NewMemSurface(w, h int) *MemSurface {
	return &MemSurface{w: w, h: h, rec: renderer.NewRecorder()}
}

func (s *MemSurface) Size() (int, int) { return s.w, s.h }

func (s *MemSurface) Resize(w, h int) { s.w, s.h = w, h }

func (s *MemSurface) Canvas() renderer.Canvas {
	if s.noCanvas {
		return nil
	}
	return s.rec
}

// Recorder returns the canvas recording the surface's draw calls.
func (s *MemSurface) Recorder() *renderer.Recorder {
	return s.rec
}

// Manual is a host driven by explicit calls instead of a display. Headless
// runs and tests use it.
type Manual struct {
	*Loop
	surface *MemSurface
}

// ManualOption configures a Manual host.
type ManualOption func(*Manual)

// WithoutSurface makes Surface return nil.
func WithoutSurface() ManualOption {
	return func(m *Manual) { m.surface = nil }
}

// WithoutCanvas gives the surface no 2D canvas.
func WithoutCanvas() ManualOption {
	return func(m *Manual) {
		if m.surface != nil {
			m.surface.noCanvas = true
		}
	}
}

// NewManual creates a manual host with a w×h recording surface.
func NewManual(w, h int, opts ...ManualOption) *Manual {
	m := &Manual{Loop: NewLoop(), surface: NewMemSurface(w, h)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Surface implements field.Host.
func (m *Manual) Surface() field.Surface {
	if m.surface == nil {
		return nil
	}
	return m.surface
}

// Recorder returns the surface recorder, or nil without a surface.
func (m *Manual) Recorder() *renderer.Recorder {
	if m.surface == nil {
		return nil
	}
	return m.surface.rec
}

// Move dispatches a pointer move.
func (m *Manual) Move(x, y float64) {
	m.Dispatch(field.Event{Kind: field.EventMove, X: x, Y: y})
}

// Leave dispatches a pointer leave.
func (m *Manual) Leave() {
	m.Dispatch(field.Event{Kind: field.EventLeave})
}

// Resize dispatches a viewport resize.
func (m *Manual) Resize(w, h int) {
	m.Dispatch(field.Event{Kind: field.EventResize, Width: w, Height: h})
}

// Run runs up to n frames, or until ctx is done or no callback is pending.
// before, if set, is called ahead of each frame with the frame index.
// It returns the number of frames run.
func (m *Manual) Run(ctx context.Context, n int, before func(i int)) int {
	for i := 0; i < n; i++ {
		if ctx.Err() != nil || m.PendingFrames() == 0 {
			return i
		}
		if before != nil {
			before(i)
		}
		m.RunFrame()
	}
	return n
}
