package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/particlefield/components"
)

// Store keeps the live particle set as ECS entities. The whole set belongs to
// one epoch and is only ever replaced as a unit.
type Store struct {
	world *ecs.World

	mapper *ecs.Map6[
		components.Position,
		components.Base,
		components.Drift,
		components.Body,
		components.Tint,
		components.Epoch,
	]
	filter *ecs.Filter6[
		components.Position,
		components.Base,
		components.Drift,
		components.Body,
		components.Tint,
		components.Epoch,
	]

	entities []ecs.Entity // creation order
	epoch    uint32
}

// NewStore creates an empty particle store.
func NewStore() *Store {
	world := ecs.NewWorld()
	return &Store{
		world: world,
		mapper: ecs.NewMap6[
			components.Position,
			components.Base,
			components.Drift,
			components.Body,
			components.Tint,
			components.Epoch,
		](world),
		filter: ecs.NewFilter6[
			components.Position,
			components.Base,
			components.Drift,
			components.Body,
			components.Tint,
			components.Epoch,
		](world),
	}
}

// Replace removes every particle and creates the given batch as a new epoch.
// It must not be called while Each is iterating.
func (s *Store) Replace(particles []Particle) {
	for _, e := range s.entities {
		s.world.RemoveEntity(e)
	}
	s.entities = s.entities[:0]
	s.epoch++

	epoch := components.Epoch{N: s.epoch}
	for i := range particles {
		p := &particles[i]
		pos := components.Position(p.Pos)
		base := components.Base(p.Base)
		drift := components.Drift(p.Speed)
		body := components.Body{Size: p.Size, Density: p.Density}
		tint := components.Tint{Color: p.Color}
		e := s.mapper.NewEntity(&pos, &base, &drift, &body, &tint, &epoch)
		s.entities = append(s.entities, e)
	}
}

// Update runs fn over every particle and writes back the returned state.
// Size, density and color are not written back.
func (s *Store) Update(fn func(Particle) Particle) {
	query := s.filter.Query()
	for query.Next() {
		pos, base, drift, body, tint, _ := query.Get()
		next := fn(Particle{
			Pos:     r2.Vec(*pos),
			Base:    r2.Vec(*base),
			Speed:   r2.Vec(*drift),
			Size:    body.Size,
			Density: body.Density,
			Color:   tint.Color,
		})
		*pos = components.Position(next.Pos)
		*base = components.Base(next.Base)
		*drift = components.Drift(next.Speed)
	}
}

// Snapshot returns a copy of the particles in creation order.
func (s *Store) Snapshot() []Particle {
	out := make([]Particle, 0, len(s.entities))
	for _, e := range s.entities {
		pos, base, drift, body, tint, _ := s.mapper.Get(e)
		out = append(out, Particle{
			Pos:     r2.Vec(*pos),
			Base:    r2.Vec(*base),
			Speed:   r2.Vec(*drift),
			Size:    body.Size,
			Density: body.Density,
			Color:   tint.Color,
		})
	}
	return out
}

// Entities returns the entities of the current epoch in creation order.
func (s *Store) Entities() []ecs.Entity {
	return append([]ecs.Entity(nil), s.entities...)
}

// Alive reports whether e is a particle of the current epoch.
func (s *Store) Alive(e ecs.Entity) bool {
	if !s.world.Alive(e) || !s.mapper.HasAll(e) {
		return false
	}
	_, _, _, _, _, epoch := s.mapper.Get(e)
	return epoch.N == s.epoch
}

// Len returns the number of live particles.
func (s *Store) Len() int {
	return len(s.entities)
}

// Epoch returns the number of times the set has been replaced.
func (s *Store) Epoch() uint32 {
	return s.epoch
}
