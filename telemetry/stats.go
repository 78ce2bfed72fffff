package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of frames.
type WindowStats struct {
	WindowStartTick uint64 `csv:"-"`
	WindowEndTick   uint64 `csv:"window_end"`
	Frames          int    `csv:"frames"`

	// Field size at window end
	Particles  int `csv:"particles"`
	PairChecks int `csv:"pair_checks"`

	// Connection lines per frame
	LinksMean float64 `csv:"links_mean"`
	LinksStd  float64 `csv:"links_std"`
	LinksMax  int     `csv:"links_max"`

	// Mean distance from base per frame, in pixels
	DisplacementMean float64 `csv:"displacement_mean"`
	DisplacementStd  float64 `csv:"displacement_std"`
	DisplacementP90  float64 `csv:"displacement_p90"`
	DisplacementMax  float64 `csv:"displacement_max"` // largest single particle

	Regenerations int     `csv:"regenerations"`
	PointerActive float64 `csv:"pointer_active"` // Fraction of frames with a pointer present
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summarize returns the mean, population standard deviation and 90th
// percentile of values.
func Summarize(values []float64) (mean, std, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	p90 = Percentile(sorted, 0.90)
	return mean, std, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartTick),
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Int("frames", s.Frames),
		slog.Int("particles", s.Particles),
		slog.Int("pair_checks", s.PairChecks),
		slog.Float64("links_mean", s.LinksMean),
		slog.Float64("links_std", s.LinksStd),
		slog.Int("links_max", s.LinksMax),
		slog.Float64("displacement_mean", s.DisplacementMean),
		slog.Float64("displacement_std", s.DisplacementStd),
		slog.Float64("displacement_p90", s.DisplacementP90),
		slog.Float64("displacement_max", s.DisplacementMax),
		slog.Int("regenerations", s.Regenerations),
		slog.Float64("pointer_active", s.PointerActive),
	)
}

// LogStats logs the window stats to log.
func (s WindowStats) LogStats(log *slog.Logger) {
	log.Info("stats",
		"window_end", s.WindowEndTick,
		"particles", s.Particles,
		"links_mean", s.LinksMean,
		"links_max", s.LinksMax,
		"displacement_mean", s.DisplacementMean,
		"displacement_p90", s.DisplacementP90,
		"displacement_max", s.DisplacementMax,
		"regenerations", s.Regenerations,
		"pointer_active", s.PointerActive,
	)
}
