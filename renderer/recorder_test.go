package renderer

import (
	"image/color"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/particlefield/config"
)

func TestRecorderFramesAndTotals(t *testing.T) {
	r := NewRecorder()
	bg := color.NRGBA{R: 17, G: 24, B: 39, A: 255}
	fg := color.NRGBA{R: 148, G: 85, B: 255, A: 204}

	r.Clear(bg)
	r.FillCircle(r2.Vec{X: 1, Y: 2}, 3, fg)
	r.StrokeLine(r2.Vec{}, r2.Vec{X: 4, Y: 4}, 1, fg)

	r.Clear(bg)
	r.FillCircle(r2.Vec{X: 5, Y: 5}, 2, fg)

	frame := r.Frame()
	if len(frame) != 2 {
		t.Fatalf("frame has %d ops, want 2", len(frame))
	}
	if frame[0].Kind != OpClear || frame[1].Kind != OpFillCircle {
		t.Errorf("frame kinds = %v, %v", frame[0].Kind, frame[1].Kind)
	}
	if frame[1].A != (r2.Vec{X: 5, Y: 5}) || frame[1].Radius != 2 {
		t.Errorf("circle op = %+v", frame[1])
	}

	tests := []struct {
		kind OpKind
		want int
	}{
		{OpClear, 2},
		{OpFillCircle, 2},
		{OpStrokeLine, 1},
		{OpStrokeCircle, 0},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := r.Count(tt.kind); got != tt.want {
				t.Errorf("Count(%v) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
	if got := r.DrawCalls(); got != 5 {
		t.Errorf("DrawCalls = %d, want 5", got)
	}
}

func TestReplay(t *testing.T) {
	src := NewRecorder()
	src.Clear(color.NRGBA{A: 255})
	src.StrokeCircle(r2.Vec{X: 3, Y: 3}, 10, 2, color.NRGBA{B: 255, A: 255})
	src.StrokeLine(r2.Vec{X: 1}, r2.Vec{Y: 1}, 1, color.NRGBA{G: 255, A: 128})

	dst := NewRecorder()
	src.Replay(dst)

	want, got := src.Frame(), dst.Frame()
	if len(got) != len(want) {
		t.Fatalf("replayed %d ops, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestWithAlpha(t *testing.T) {
	c := color.NRGBA{R: 148, G: 85, B: 255, A: 255}
	tests := []struct {
		a    float64
		want uint8
	}{
		{0, 0},
		{0.5, 128},
		{1, 255},
		{-1, 0},
		{2, 255},
	}
	for _, tt := range tests {
		got := WithAlpha(c, tt.a)
		if got.A != tt.want || got.R != c.R || got.G != c.G || got.B != c.B {
			t.Errorf("WithAlpha(%v) = %+v, want alpha %d", tt.a, got, tt.want)
		}
	}
}

func TestCursorScalesWhilePressed(t *testing.T) {
	cfg := config.Default()
	cfg.Cursor.Enabled = true
	cur := NewCursor(cfg)
	if cur == nil {
		t.Fatal("NewCursor returned nil for enabled overlay")
	}

	at := r2.Vec{X: 50, Y: 60}
	tests := []struct {
		name     string
		pressed  bool
		wantDot  float64
		wantRing float64
	}{
		{"released", false, cur.DotRadius, cur.RingRadius},
		{"pressed", true, cur.DotRadius * cur.PressedDotScale, cur.RingRadius * cur.PressedRingScale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecorder()
			r.Clear(color.NRGBA{})
			cur.Draw(r, at, tt.pressed)
			ops := r.Frame()[1:]
			if len(ops) != 2 {
				t.Fatalf("cursor drew %d ops, want 2", len(ops))
			}
			if ops[0].Kind != OpStrokeCircle || ops[0].Radius != tt.wantRing || ops[0].A != at {
				t.Errorf("ring = %+v, want radius %v at %v", ops[0], tt.wantRing, at)
			}
			if ops[1].Kind != OpFillCircle || ops[1].Radius != tt.wantDot {
				t.Errorf("dot = %+v, want radius %v", ops[1], tt.wantDot)
			}
		})
	}
}

func TestNewCursorDisabled(t *testing.T) {
	if cur := NewCursor(config.Default()); cur != nil {
		t.Errorf("NewCursor = %+v, want nil when disabled", cur)
	}
}
