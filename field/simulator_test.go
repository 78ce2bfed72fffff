package field_test

import (
	"errors"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/field"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/renderer"
	"github.com/pthm-cable/particlefield/systems"
	"github.com/pthm-cable/particlefield/telemetry"
)

func newSim(seed int64, opts field.Options) *field.Simulator {
	return field.NewSimulator(systems.DefaultParams(), rand.New(rand.NewSource(seed)), opts)
}

func mount(t *testing.T, sim *field.Simulator, h *host.Manual) {
	t.Helper()
	if err := sim.Mount(h); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	t.Cleanup(sim.Detach)
}

func TestMountWithoutSurface(t *testing.T) {
	tests := []struct {
		name string
		opt  host.ManualOption
	}{
		{"no surface", host.WithoutSurface()},
		{"no canvas", host.WithoutCanvas()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := host.NewManual(800, 600, tt.opt)
			sim := newSim(1, field.Options{})

			err := sim.Mount(h)
			if !errors.Is(err, field.ErrNoSurface) {
				t.Fatalf("Mount = %v, want ErrNoSurface", err)
			}
			if sim.Mounted() {
				t.Error("simulator reports mounted after failure")
			}
			if h.Listeners() != 0 || h.PendingFrames() != 0 {
				t.Errorf("failed mount left %d listeners and %d frames", h.Listeners(), h.PendingFrames())
			}
			if sim.Len() != 0 {
				t.Errorf("failed mount generated %d particles", sim.Len())
			}
			// Detach after a failed mount is a no-op.
			sim.Detach()
		})
	}
}

func TestMountTwice(t *testing.T) {
	h := host.NewManual(800, 600)
	sim := newSim(1, field.Options{})
	mount(t, sim, h)
	if err := sim.Mount(h); !errors.Is(err, field.ErrMounted) {
		t.Errorf("second Mount = %v, want ErrMounted", err)
	}
}

func TestCountFollowsSurface(t *testing.T) {
	tests := []struct {
		w, h int
		want int
	}{
		{800, 600, 60},
		{2000, 2000, 100},
		{80, 99, 0},
	}
	for _, tt := range tests {
		h := host.NewManual(tt.w, tt.h)
		sim := newSim(3, field.Options{})
		mount(t, sim, h)
		if sim.Len() != tt.want {
			t.Errorf("%dx%d: %d particles, want %d", tt.w, tt.h, sim.Len(), tt.want)
		}

		h.RunFrame()
		if got := h.Recorder().Count(renderer.OpFillCircle); got != tt.want {
			t.Errorf("%dx%d: first frame drew %d circles, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestResizeRegenerates(t *testing.T) {
	h := host.NewManual(800, 600)
	sim := newSim(5, field.Options{})
	mount(t, sim, h)
	h.Run(t.Context(), 10, nil)

	old := sim.Entities()
	if len(old) != 60 {
		t.Fatalf("got %d particles before resize, want 60", len(old))
	}

	h.Resize(2000, 2000)

	for _, e := range old {
		if sim.Alive(e) {
			t.Fatalf("entity %v survived the resize", e)
		}
	}
	if sim.Len() != 100 {
		t.Errorf("got %d particles after resize, want 100", sim.Len())
	}
	if w, hh := h.Surface().Size(); w != 2000 || hh != 2000 {
		t.Errorf("surface = %dx%d, want 2000x2000", w, hh)
	}
	for i, p := range sim.Particles() {
		if p.Pos != p.Base {
			t.Fatalf("particle %d not at rest on its base after regeneration", i)
		}
		if p.Base.X < 0 || p.Base.X > 2000 || p.Base.Y < 0 || p.Base.Y > 2000 {
			t.Fatalf("particle %d spawned outside the new surface: %v", i, p.Base)
		}
	}

	// The next frame draws the new generation only.
	h.RunFrame()
	circles := 0
	for _, op := range h.Recorder().Frame() {
		if op.Kind == renderer.OpFillCircle {
			circles++
		}
	}
	if circles != 100 {
		t.Errorf("frame after resize drew %d circles, want 100", circles)
	}
}

func TestDetachStopsEverything(t *testing.T) {
	h := host.NewManual(800, 600)
	sim := newSim(7, field.Options{})
	if err := sim.Mount(h); err != nil {
		t.Fatal(err)
	}
	if n := h.Run(t.Context(), 5, nil); n != 5 {
		t.Fatalf("ran %d frames before detach, want 5", n)
	}

	sim.Detach()
	sim.Detach()

	rec := h.Recorder()
	calls := rec.DrawCalls()
	ticks := sim.Tick()

	h.RunFrame()
	h.Move(400, 300)
	h.Resize(1024, 768)
	h.RunFrame()

	if got := rec.DrawCalls(); got != calls {
		t.Errorf("draw calls after detach = %d, want %d", got, calls)
	}
	if sim.Tick() != ticks {
		t.Errorf("ticks advanced after detach: %d -> %d", ticks, sim.Tick())
	}
	if h.Listeners() != 0 {
		t.Errorf("%d listeners left after detach", h.Listeners())
	}
	if h.PendingFrames() != 0 {
		t.Errorf("%d frames pending after detach", h.PendingFrames())
	}
	if sim.Pointer().Present {
		t.Error("pointer event reached a detached simulator")
	}
}

func TestRemountAfterDetach(t *testing.T) {
	h := host.NewManual(800, 600)
	sim := newSim(7, field.Options{})
	mount(t, sim, h)
	h.Move(10, 10)
	sim.Detach()

	mount(t, sim, h)
	if sim.Pointer().Present {
		t.Error("pointer state carried over into a new mount")
	}
	if h.Listeners() != 1 || h.PendingFrames() != 1 {
		t.Errorf("remount has %d listeners and %d frames, want 1 and 1", h.Listeners(), h.PendingFrames())
	}
}

func TestPointerMoveAndLeave(t *testing.T) {
	h := host.NewManual(800, 600)
	sim := newSim(9, field.Options{})
	mount(t, sim, h)

	h.Move(120, 80)
	if p := sim.Pointer(); !p.Present || p.At != (r2.Vec{X: 120, Y: 80}) {
		t.Fatalf("pointer after move = %+v", p)
	}
	h.Leave()
	if p := sim.Pointer(); p.Present {
		t.Fatalf("pointer after leave = %+v, want absent", p)
	}
}

func TestPointerRepelsOnNextFrame(t *testing.T) {
	h := host.NewManual(800, 600)
	sim := newSim(11, field.Options{})
	mount(t, sim, h)
	prm := sim.Params()

	before := sim.Particles()
	target := before[0]
	at := r2.Add(target.Pos, r2.Vec{X: 5, Y: 0})
	h.Move(at.X, at.Y)

	h.RunFrame()

	bounds := r2.Vec{X: 800, Y: 600}
	ptr := systems.Pointer{At: at, Present: true}
	after := sim.Particles()
	for i := range before {
		want := systems.Step(before[i], ptr, bounds, prm)
		if after[i] != want {
			t.Fatalf("particle %d = %+v, want %+v", i, after[i], want)
		}
	}
	if after[0].Pos.X >= before[0].Pos.X {
		t.Errorf("particle under the pointer moved from x=%v to x=%v, want left", before[0].Pos.X, after[0].Pos.X)
	}
}

func TestFrameDrawOrder(t *testing.T) {
	h := host.NewManual(800, 600)
	sim := newSim(13, field.Options{})
	mount(t, sim, h)
	h.RunFrame()

	ops := h.Recorder().Frame()
	if len(ops) == 0 || ops[0].Kind != renderer.OpClear {
		t.Fatal("frame does not start with a clear")
	}
	prm := sim.Params()
	if ops[0].Color != prm.Background {
		t.Errorf("clear color = %v, want %v", ops[0].Color, prm.Background)
	}

	var centers []r2.Vec
	lines := 0
	for _, op := range ops[1:] {
		switch op.Kind {
		case renderer.OpFillCircle:
			if lines > 0 {
				t.Fatal("circle drawn after connection lines")
			}
			centers = append(centers, op.A)
		case renderer.OpStrokeLine:
			lines++
			if op.Width != prm.LinkWidth {
				t.Errorf("line width = %v, want %v", op.Width, prm.LinkWidth)
			}
			if op.Color.R != prm.Color.R || op.Color.G != prm.Color.G || op.Color.B != prm.Color.B {
				t.Errorf("line hue = %v, want particle hue %v", op.Color, prm.Color)
			}
		}
	}
	want := len(systems.Connect(nil, centers, 800, prm))
	if lines != want {
		t.Errorf("drew %d lines, want %d", lines, want)
	}
	if sim.Links() != want {
		t.Errorf("Links() = %d, want %d", sim.Links(), want)
	}
}

func TestObserverAndPerf(t *testing.T) {
	var frames []telemetry.Frame
	perf := telemetry.NewPerfCollector(10)
	h := host.NewManual(800, 600)
	sim := newSim(15, field.Options{
		Perf:     perf,
		Observer: func(f telemetry.Frame) { frames = append(frames, f) },
	})
	mount(t, sim, h)
	h.Run(t.Context(), 3, nil)

	if len(frames) != 3 {
		t.Fatalf("observer saw %d frames, want 3", len(frames))
	}
	if !frames[0].Regenerated || frames[1].Regenerated {
		t.Errorf("regenerated flags = %v, %v, want true, false", frames[0].Regenerated, frames[1].Regenerated)
	}
	if frames[2].Tick != 3 || frames[2].Particles != 60 || frames[2].PairChecks != 1770 {
		t.Errorf("last frame = %+v", frames[2])
	}
	if _, ok := perf.Stats().PhaseAvg[telemetry.PhaseConnect]; !ok {
		t.Error("connect phase not timed")
	}
}

func TestCursorOverlay(t *testing.T) {
	cfg := config.Default()
	cfg.Cursor.Enabled = true
	h := host.NewManual(800, 600)
	sim := newSim(17, field.Options{Cursor: renderer.NewCursor(cfg)})
	mount(t, sim, h)

	h.RunFrame()
	if n := h.Recorder().Count(renderer.OpStrokeCircle); n != 0 {
		t.Errorf("cursor drawn %d times without a pointer", n)
	}

	h.Move(300, 200)
	h.RunFrame()
	ops := h.Recorder().Frame()
	last := ops[len(ops)-1]
	if last.Kind != renderer.OpFillCircle || last.A != (r2.Vec{X: 300, Y: 200}) {
		t.Errorf("last op = %+v, want the cursor dot at the pointer", last)
	}
}

func TestSeedDeterminism(t *testing.T) {
	a, b := newSim(21, field.Options{}), newSim(21, field.Options{})
	ha, hb := host.NewManual(1024, 768), host.NewManual(1024, 768)
	mount(t, a, ha)
	mount(t, b, hb)
	ha.Run(t.Context(), 30, nil)
	hb.Run(t.Context(), 30, nil)

	pa, pb := a.Particles(), b.Particles()
	if len(pa) != len(pb) {
		t.Fatalf("lengths differ: %d vs %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("particle %d differs: %+v vs %+v", i, pa[i], pb[i])
		}
	}
}
