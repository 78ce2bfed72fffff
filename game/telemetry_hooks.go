package game

import (
	"github.com/pthm-cable/particlefield/telemetry"
)

// observe receives every drawn frame from the field.
func (g *Game) observe(f telemetry.Frame) {
	g.tick = f.Tick
	g.collector.Record(f)
	if g.collector.ShouldFlush() {
		g.emit(g.collector.Flush())
	}
	if g.maxTicks > 0 && g.tick == g.maxTicks {
		g.log.Info("max ticks reached", "tick", g.tick)
	}
}

// emit hands a finished stats window to the callback, the log and the CSV
// output.
func (g *Game) emit(stats telemetry.WindowStats) {
	perfStats := g.perfCollector.Stats()

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats(g.log)
		perfStats.LogStats(g.log)
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			g.log.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			g.log.Error("failed to write perf", "error", err)
		}
	}
}
