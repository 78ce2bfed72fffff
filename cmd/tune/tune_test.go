package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	cfg := config.Default()
	pv := NewParamVector(cfg)

	def := pv.DefaultVector()
	want := []float64{cfg.Field.LinkDivisor, cfg.Field.PointerRadius, cfg.Field.Easing, cfg.Field.AreaPerParticle}
	for i := range want {
		if def[i] != want[i] {
			t.Errorf("default[%d] = %v, want %v", i, def[i], want[i])
		}
	}
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("round trip[%d] = %v, want %v", i, back[i], def[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	cfg := config.Default()
	pv := NewParamVector(cfg)
	pv.ApplyToConfig(cfg, []float64{100, -5, 0.3, 5000})

	if cfg.Field.LinkDivisor != 20 || cfg.Field.PointerRadius != 20 {
		t.Errorf("out-of-range values not clamped: %+v", cfg.Field)
	}
	if cfg.Field.Easing != 0.3 || cfg.Field.AreaPerParticle != 5000 {
		t.Errorf("in-range values changed: %+v", cfg.Field)
	}
}

func TestSummarizeWeightsByFrames(t *testing.T) {
	m := summarize([]telemetry.WindowStats{
		{Frames: 100, Particles: 50, LinksMean: 100, DisplacementMean: 2},
		{Frames: 50, Particles: 50, LinksMean: 25, DisplacementMean: 8},
	})
	// (100*2 + 50*0.5) / 150 links per particle, (100*2 + 50*8) / 150 pixels
	if math.Abs(m.LinksPerParticle-1.5) > 1e-9 {
		t.Errorf("links per particle = %v, want 1.5", m.LinksPerParticle)
	}
	if math.Abs(m.Displacement-4) > 1e-9 {
		t.Errorf("displacement = %v, want 4", m.Displacement)
	}
	if m.Particles != 50 {
		t.Errorf("particles = %v, want 50", m.Particles)
	}
	if got := summarize(nil); got != (Measure{}) {
		t.Errorf("empty summary = %+v", got)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	cfg := config.Default()
	cfg.Screen.Width, cfg.Screen.Height = 400, 300
	cfg.Telemetry.StatsWindow = 30
	pv := NewParamVector(cfg)
	fe := NewFitnessEvaluator(pv, 90, []int64{1, 2}, cfg, Targets{LinksPerParticle: 1, Displacement: 1})

	x := pv.DefaultVector()
	a := fe.Evaluate(x)
	first := fe.Last()
	b := fe.Evaluate(x)
	if a != b {
		t.Errorf("fitness %v then %v for the same parameters", a, b)
	}
	if first.Particles != 15 {
		t.Errorf("particles = %v, want 15 on 400x300", first.Particles)
	}
	if math.IsInf(a, 0) || math.IsNaN(a) || a < 0 {
		t.Errorf("fitness = %v", a)
	}
	// The base config is never modified.
	if cfg.Field.LinkDivisor != config.Default().Field.LinkDivisor {
		t.Error("Evaluate mutated the base config")
	}
}

func TestScore(t *testing.T) {
	fe := &FitnessEvaluator{targets: Targets{LinksPerParticle: 2, Displacement: 4, Particles: 10}}
	if s := fe.score(Measure{LinksPerParticle: 2, Displacement: 4, Particles: 10}); s != 0 {
		t.Errorf("perfect score = %v, want 0", s)
	}
	if s := fe.score(Measure{LinksPerParticle: 3, Displacement: 4, Particles: 10}); math.Abs(s-0.25) > 1e-12 {
		t.Errorf("score = %v, want 0.25", s)
	}
}
