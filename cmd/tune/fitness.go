package main

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/game"
	"github.com/pthm-cable/particlefield/host"
	"github.com/pthm-cable/particlefield/telemetry"
)

// Targets are the field characteristics the tuner aims for.
type Targets struct {
	LinksPerParticle float64 // mean links per particle
	Displacement     float64 // mean distance a particle is pushed from its base
	Particles        int     // particle count on the evaluation surface
}

// Measure summarizes one or more runs.
type Measure struct {
	LinksPerParticle float64
	Displacement     float64
	Particles        float64
}

// FitnessEvaluator runs headless fields and scores them against Targets.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   uint64
	seeds      []int64
	baseConfig *config.Config
	targets    Targets

	mu   sync.Mutex
	last Measure // from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks uint64, seeds []int64, baseCfg *config.Config, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		targets:    targets,
	}
}

// Last returns the measurements from the most recent evaluation.
func (fe *FitnessEvaluator) Last() Measure {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Evaluate computes fitness for a raw parameter vector (lower = better):
// the sum of squared relative errors against the targets.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	measures := make([]Measure, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			measures[idx] = fe.runField(x, s)
		}(i, seed)
	}
	wg.Wait()

	var avg Measure
	for _, m := range measures {
		avg.LinksPerParticle += m.LinksPerParticle
		avg.Displacement += m.Displacement
		avg.Particles += m.Particles
	}
	n := float64(len(measures))
	avg.LinksPerParticle /= n
	avg.Displacement /= n
	avg.Particles /= n

	fe.mu.Lock()
	fe.last = avg
	fe.mu.Unlock()

	return fe.score(avg)
}

func (fe *FitnessEvaluator) score(m Measure) float64 {
	t := fe.targets
	fitness := relErr(m.LinksPerParticle, t.LinksPerParticle) + relErr(m.Displacement, t.Displacement)
	if t.Particles > 0 {
		fitness += relErr(m.Particles, float64(t.Particles))
	}
	return fitness
}

func relErr(got, want float64) float64 {
	if want == 0 {
		return got * got
	}
	d := (got - want) / want
	return d * d
}

// runField runs one headless field with an orbiting pointer and averages
// its stats windows.
func (fe *FitnessEvaluator) runField(x []float64, seed int64) Measure {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	var windows []telemetry.WindowStats
	g, err := game.NewGameWithOptions(cfg, game.Options{
		Seed:          seed,
		MaxTicks:      fe.maxTicks,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		return Measure{LinksPerParticle: math.Inf(1)}
	}

	m := host.NewManual(cfg.Screen.Width, cfg.Screen.Height)
	if err := g.Mount(m); err != nil {
		g.Unload()
		return Measure{LinksPerParticle: math.Inf(1)}
	}
	o := host.NewOrbit()
	m.Run(context.Background(), int(fe.maxTicks), func(i int) {
		o.Drive(m.Loop, i, cfg.Screen.Width, cfg.Screen.Height)
	})
	g.Unload()

	return summarize(windows)
}

// summarize averages window stats weighted by frame count.
func summarize(windows []telemetry.WindowStats) Measure {
	var m Measure
	frames := 0
	for _, w := range windows {
		f := float64(w.Frames)
		if w.Particles > 0 {
			m.LinksPerParticle += f * w.LinksMean / float64(w.Particles)
		}
		m.Displacement += f * w.DisplacementMean
		m.Particles += f * float64(w.Particles)
		frames += w.Frames
	}
	if frames == 0 {
		return m
	}
	m.LinksPerParticle /= float64(frames)
	m.Displacement /= float64(frames)
	m.Particles /= float64(frames)
	return m
}

func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
