package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/particlefield/config"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	// Unsorted on purpose; Summarize must not depend on input order.
	values := []float64{9, 2, 4, 4, 5, 5, 7, 4}
	mean, std, p90 := Summarize(values)

	if math.Abs(mean-5) > 1e-9 {
		t.Errorf("mean = %v, want 5", mean)
	}
	// Population std of this set is exactly 2.
	if math.Abs(std-2) > 1e-9 {
		t.Errorf("std = %v, want 2", std)
	}
	if math.Abs(p90-7.6) > 1e-9 {
		t.Errorf("p90 = %v, want 7.6", p90)
	}
	if values[0] != 9 {
		t.Error("Summarize reordered its input")
	}
}

func TestSummarizeEdgeCases(t *testing.T) {
	if m, s, p := Summarize(nil); m != 0 || s != 0 || p != 0 {
		t.Errorf("empty = %v/%v/%v, want zeros", m, s, p)
	}
	if m, s, p := Summarize([]float64{3}); m != 3 || s != 0 || p != 3 {
		t.Errorf("single = %v/%v/%v, want 3/0/3", m, s, p)
	}
}

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(4)
	frames := []Frame{
		{Tick: 1, Particles: 60, PairChecks: 1770, Links: 10, Displacement: 1, MaxDisplacement: 3, Regenerated: true},
		{Tick: 2, Particles: 60, PairChecks: 1770, Links: 20, Displacement: 2, MaxDisplacement: 9, PointerActive: true},
		{Tick: 3, Particles: 60, PairChecks: 1770, Links: 30, Displacement: 3, MaxDisplacement: 4, PointerActive: true},
	}
	for _, f := range frames {
		c.Record(f)
		if c.ShouldFlush() {
			t.Fatalf("ShouldFlush true after tick %d of a 4 frame window", f.Tick)
		}
	}
	c.Record(Frame{Tick: 4, Particles: 12, PairChecks: 66, Links: 40, Displacement: 4, MaxDisplacement: 1, Regenerated: true})
	if !c.ShouldFlush() {
		t.Fatal("ShouldFlush false after a full window")
	}

	s := c.Flush()
	if s.WindowStartTick != 1 || s.WindowEndTick != 4 || s.Frames != 4 {
		t.Errorf("window = [%d, %d] frames %d, want [1, 4] frames 4", s.WindowStartTick, s.WindowEndTick, s.Frames)
	}
	if s.Particles != 12 || s.PairChecks != 66 {
		t.Errorf("end of window size = %d/%d, want 12/66", s.Particles, s.PairChecks)
	}
	if s.LinksMean != 25 || s.LinksMax != 40 {
		t.Errorf("links mean/max = %v/%d, want 25/40", s.LinksMean, s.LinksMax)
	}
	if s.DisplacementMean != 2.5 || s.DisplacementMax != 9 {
		t.Errorf("displacement mean/max = %v/%v, want 2.5/9", s.DisplacementMean, s.DisplacementMax)
	}
	if s.Regenerations != 2 {
		t.Errorf("regenerations = %d, want 2", s.Regenerations)
	}
	if s.PointerActive != 0.5 {
		t.Errorf("pointer active = %v, want 0.5", s.PointerActive)
	}

	// Counters reset for the next window.
	c.Record(Frame{Tick: 5, Links: 1})
	next := c.Flush()
	if next.WindowStartTick != 5 || next.Frames != 1 || next.Regenerations != 0 || next.LinksMax != 1 {
		t.Errorf("next window = %+v, want a fresh window starting at 5", next)
	}
}

func TestOutputManager(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := range 2 {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: uint64(120 * (i + 1)), Particles: 60}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	if err := om.WritePerf(PerfStats{}, 120); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("telemetry.csv has %d lines, want header + 2 rows:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "window_end,frames,particles") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "240,") {
		t.Errorf("second row = %q, want window_end 240", lines[2])
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load back: %v", err)
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// Methods are nil-safe.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}
