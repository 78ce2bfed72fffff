package telemetry

// Frame is the per-tick report a running field hands to the collector.
type Frame struct {
	Tick            uint64
	Particles       int
	Links           int
	PairChecks      int
	Displacement    float64 // mean |pos - base| over all particles
	MaxDisplacement float64
	Regenerated     bool // particles were regenerated since the previous frame
	PointerActive   bool
}

// Collector accumulates frames within windows and produces WindowStats.
type Collector struct {
	windowFrames int

	// Current window tracking
	windowStartTick uint64
	lastTick        uint64
	frames          int
	particles       int
	pairChecks      int
	links           []float64
	linksMax        int
	displacement    []float64
	displacementMax float64
	regenerations   int
	pointerFrames   int
}

// NewCollector creates a new stats collector.
// windowFrames: how many frames each stats window covers.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{
		windowFrames: windowFrames,
		links:        make([]float64, 0, windowFrames),
		displacement: make([]float64, 0, windowFrames),
	}
}

// Record adds a frame to the current window.
func (c *Collector) Record(f Frame) {
	if c.frames == 0 {
		c.windowStartTick = f.Tick
	}
	c.frames++
	c.lastTick = f.Tick
	c.particles = f.Particles
	c.pairChecks = f.PairChecks
	c.links = append(c.links, float64(f.Links))
	c.linksMax = max(c.linksMax, f.Links)
	c.displacement = append(c.displacement, f.Displacement)
	c.displacementMax = max(c.displacementMax, f.MaxDisplacement)
	if f.Regenerated {
		c.regenerations++
	}
	if f.PointerActive {
		c.pointerFrames++
	}
}

// ShouldFlush returns true once the current window holds enough frames.
func (c *Collector) ShouldFlush() bool {
	return c.frames >= c.windowFrames
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush() WindowStats {
	linksMean, linksStd, _ := Summarize(c.links)
	dispMean, dispStd, dispP90 := Summarize(c.displacement)

	var pointerActive float64
	if c.frames > 0 {
		pointerActive = float64(c.pointerFrames) / float64(c.frames)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   c.lastTick,
		Frames:          c.frames,

		Particles:  c.particles,
		PairChecks: c.pairChecks,

		LinksMean: linksMean,
		LinksStd:  linksStd,
		LinksMax:  c.linksMax,

		DisplacementMean: dispMean,
		DisplacementStd:  dispStd,
		DisplacementP90:  dispP90,
		DisplacementMax:  c.displacementMax,

		Regenerations: c.regenerations,
		PointerActive: pointerActive,
	}

	// Reset for next window
	c.frames = 0
	c.links = c.links[:0]
	c.linksMax = 0
	c.displacement = c.displacement[:0]
	c.displacementMax = 0
	c.regenerations = 0
	c.pointerFrames = 0

	return stats
}

// Frames returns the number of frames in the current window.
func (c *Collector) Frames() int {
	return c.frames
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int {
	return c.windowFrames
}
