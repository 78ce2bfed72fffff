// Package game wires a particle field to its configuration, telemetry and
// output so every backend runs the same session.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/particlefield/config"
	"github.com/pthm-cable/particlefield/field"
	"github.com/pthm-cable/particlefield/renderer"
	"github.com/pthm-cable/particlefield/systems"
	"github.com/pthm-cable/particlefield/telemetry"
)

// Options configures a session.
type Options struct {
	Seed          int64
	LogStats      bool
	OutputDir     string
	MaxTicks      uint64 // 0 = unlimited
	Cursor        bool   // force the cursor overlay on
	StatsCallback func(telemetry.WindowStats)
	Logger        *slog.Logger
}

// Game is one running particle field session.
type Game struct {
	cfg *config.Config
	sim *field.Simulator
	log *slog.Logger

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)

	maxTicks uint64
	tick     uint64
}

// NewGameWithOptions builds a session from cfg. The output directory, if
// set, is created and receives a config snapshot immediately.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("setting up output: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	g := &Game{
		cfg:           cfg,
		log:           log,
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		outputManager: om,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
		maxTicks:      opts.MaxTicks,
	}

	cursorCfg := *cfg
	if opts.Cursor {
		cursorCfg.Cursor.Enabled = true
	}
	g.sim = field.NewSimulator(
		systems.ParamsFromConfig(cfg),
		rand.New(rand.NewSource(opts.Seed)),
		field.Options{
			Cursor:   renderer.NewCursor(&cursorCfg),
			Perf:     g.perfCollector,
			Observer: g.observe,
			Logger:   log,
		},
	)
	return g, nil
}

// Mount attaches the field to h. A host without a drawing surface is not
// fatal: the failure is logged and the session simply draws nothing.
func (g *Game) Mount(h field.Host) error {
	if err := g.sim.Mount(h); err != nil {
		g.log.Warn("particle field disabled", "error", err)
		return err
	}
	return nil
}

// Detach stops the field.
func (g *Game) Detach() {
	g.sim.Detach()
}

// Done reports whether the tick limit has been reached.
func (g *Game) Done() bool {
	return g.maxTicks > 0 && g.tick >= g.maxTicks
}

// MaxTicks returns the frame limit, 0 for unlimited.
func (g *Game) MaxTicks() uint64 {
	return g.maxTicks
}

// Simulator returns the underlying field.
func (g *Game) Simulator() *field.Simulator {
	return g.sim
}

// Config returns the session configuration.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Perf returns the frame timing statistics of the current window.
func (g *Game) Perf() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// Tick returns the number of frames drawn.
func (g *Game) Tick() uint64 {
	return g.tick
}

// Unload detaches the field, flushes a partial stats window and closes
// output files.
func (g *Game) Unload() {
	g.sim.Detach()
	if g.collector.Frames() > 0 {
		g.emit(g.collector.Flush())
	}
	if err := g.outputManager.Close(); err != nil {
		g.log.Error("failed to close output", "error", err)
	}
}
