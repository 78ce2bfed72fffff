package field

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/particlefield/renderer"
	"github.com/pthm-cable/particlefield/systems"
	"github.com/pthm-cable/particlefield/telemetry"
)

// Options are the optional collaborators of a Simulator.
type Options struct {
	Cursor   *renderer.Cursor         // overlay drawn on top of the field
	Perf     *telemetry.PerfCollector // phase timing
	Observer func(telemetry.Frame)    // called after every frame
	Logger   *slog.Logger
}

// Simulator is the particle field. It owns the particle set and the pointer
// state for as long as it is mounted on a host.
type Simulator struct {
	prm  systems.Params
	rng  *rand.Rand
	opts Options
	log  *slog.Logger

	store *systems.Store

	// Valid between Mount and Detach
	host      Host
	surface   Surface
	canvas    renderer.Canvas
	remove    func()
	frame     FrameID
	scheduled bool

	width, height int
	pointer       systems.Pointer
	pressed       bool
	regenerated   bool
	tick          uint64

	// Per-frame scratch
	pos   []r2.Vec
	links []systems.Link
}

// NewSimulator creates an unmounted simulator drawing particles from rng.
func NewSimulator(prm systems.Params, rng *rand.Rand, opts Options) *Simulator {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Simulator{
		prm:   prm,
		rng:   rng,
		opts:  opts,
		log:   log,
		store: systems.NewStore(),
	}
}

// Mount attaches the simulator to h: it generates the particles, subscribes
// to host events and schedules the first frame. If the host has no surface
// or canvas it returns ErrNoSurface and does nothing else.
func (s *Simulator) Mount(h Host) error {
	if s.host != nil {
		return ErrMounted
	}
	surf := h.Surface()
	if surf == nil {
		return ErrNoSurface
	}
	cv := surf.Canvas()
	if cv == nil {
		return ErrNoSurface
	}

	s.host, s.surface, s.canvas = h, surf, cv
	s.pointer = systems.Pointer{}
	s.pressed = false
	s.init()
	s.remove = h.Listen(s.handle)
	s.schedule()
	return nil
}

// Detach cancels the pending frame, removes the event subscription and
// releases the surface. It is safe to call more than once.
func (s *Simulator) Detach() {
	if s.host == nil {
		return
	}
	if s.scheduled {
		s.host.CancelFrame(s.frame)
		s.scheduled = false
	}
	if s.remove != nil {
		s.remove()
		s.remove = nil
	}
	s.host, s.surface, s.canvas = nil, nil, nil
	s.log.Debug("field detached", "ticks", s.tick)
}

// Mounted reports whether the simulator is attached to a host.
func (s *Simulator) Mounted() bool {
	return s.host != nil
}

// SetParams replaces the tunables and regenerates the field if mounted.
func (s *Simulator) SetParams(prm systems.Params) {
	s.prm = prm
	if s.surface != nil {
		s.init()
	}
}

// Params returns the current tunables.
func (s *Simulator) Params() systems.Params {
	return s.prm
}

// Regenerate discards the particles and creates a new set for the current
// surface size.
func (s *Simulator) Regenerate() {
	if s.surface != nil {
		s.init()
	}
}

func (s *Simulator) schedule() {
	s.frame = s.host.RequestFrame(s.onFrame)
	s.scheduled = true
}

func (s *Simulator) onFrame() {
	s.scheduled = false
	if s.canvas == nil {
		return
	}
	s.step()
	s.schedule()
}

func (s *Simulator) handle(ev Event) {
	if s.surface == nil {
		return
	}
	switch ev.Kind {
	case EventMove:
		s.pointer = systems.Pointer{At: r2.Vec{X: ev.X, Y: ev.Y}, Present: true}
	case EventLeave:
		s.pointer = systems.Pointer{}
		s.pressed = false
	case EventDown:
		s.pointer = systems.Pointer{At: r2.Vec{X: ev.X, Y: ev.Y}, Present: true}
		s.pressed = true
	case EventUp:
		s.pressed = false
	case EventResize:
		s.surface.Resize(ev.Width, ev.Height)
		s.init()
	}
}

// init replaces the whole particle set for the current surface size.
// It is recorded as its own perf sample.
func (s *Simulator) init() {
	if perf := s.opts.Perf; perf != nil {
		perf.StartTick()
		perf.StartPhase(telemetry.PhaseInit)
		defer perf.EndTick()
	}

	s.width, s.height = s.surface.Size()
	s.store.Replace(systems.Spawn(s.rng, s.width, s.height, s.prm))
	s.links = s.links[:0]
	s.regenerated = true

	s.log.Debug("field regenerated",
		"width", s.width,
		"height", s.height,
		"particles", s.store.Len(),
		"epoch", s.store.Epoch(),
	)
}

// step advances and draws one frame: every particle first, then the
// connection lines, then the cursor overlay.
func (s *Simulator) step() {
	perf := s.opts.Perf
	if perf != nil {
		perf.StartTick()
		perf.StartPhase(telemetry.PhaseUpdate)
	}

	cv := s.canvas
	cv.Clear(s.prm.Background)
	bounds := r2.Vec{X: float64(s.width), Y: float64(s.height)}

	s.pos = s.pos[:0]
	var dispSum, dispMax float64
	s.store.Update(func(p systems.Particle) systems.Particle {
		p = systems.Step(p, s.pointer, bounds, s.prm)
		cv.FillCircle(p.Pos, p.Size, p.Color)
		s.pos = append(s.pos, p.Pos)

		d := r2.Norm(r2.Sub(p.Pos, p.Base))
		dispSum += d
		dispMax = max(dispMax, d)
		return p
	})

	if perf != nil {
		perf.StartPhase(telemetry.PhaseConnect)
	}
	s.links = systems.Connect(s.links[:0], s.pos, bounds.X, s.prm)
	for _, l := range s.links {
		cv.StrokeLine(s.pos[l.A], s.pos[l.B], s.prm.LinkWidth, renderer.WithAlpha(s.prm.Color, l.Alpha))
	}

	if s.opts.Cursor != nil && s.pointer.Present {
		if perf != nil {
			perf.StartPhase(telemetry.PhaseOverlay)
		}
		s.opts.Cursor.Draw(cv, s.pointer.At, s.pressed)
	}

	s.tick++
	if s.opts.Observer != nil {
		if perf != nil {
			perf.StartPhase(telemetry.PhaseTelemetry)
		}
		var dispMean float64
		if n := len(s.pos); n > 0 {
			dispMean = dispSum / float64(n)
		}
		s.opts.Observer(telemetry.Frame{
			Tick:            s.tick,
			Particles:       len(s.pos),
			Links:           len(s.links),
			PairChecks:      systems.PairChecks(len(s.pos)),
			Displacement:    dispMean,
			MaxDisplacement: dispMax,
			Regenerated:     s.regenerated,
			PointerActive:   s.pointer.Present,
		})
	}
	s.regenerated = false

	if perf != nil {
		perf.EndTick()
		perf.RecordFrame()
	}
}

// Tick returns the number of frames drawn so far.
func (s *Simulator) Tick() uint64 {
	return s.tick
}

// Len returns the number of live particles.
func (s *Simulator) Len() int {
	return s.store.Len()
}

// Particles returns a copy of the live particles in creation order.
func (s *Simulator) Particles() []systems.Particle {
	return s.store.Snapshot()
}

// Entities returns the entities of the current particle set.
func (s *Simulator) Entities() []ecs.Entity {
	return s.store.Entities()
}

// Alive reports whether e belongs to the current particle set.
func (s *Simulator) Alive(e ecs.Entity) bool {
	return s.store.Alive(e)
}

// Pointer returns the pointer state the next frame will use.
func (s *Simulator) Pointer() systems.Pointer {
	return s.pointer
}

// Links returns the number of links drawn in the last frame.
func (s *Simulator) Links() int {
	return len(s.links)
}
