package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/particlefield/config"
)

// Count is the number of particles for a w×h surface:
// floor(w*h / AreaPerParticle), capped at MaxParticles and config.ParticleCap.
func Count(w, h int, prm Params) int {
	if w <= 0 || h <= 0 || prm.AreaPerParticle <= 0 {
		return 0
	}
	n := int(math.Floor(float64(w) * float64(h) / prm.AreaPerParticle))
	return max(0, min(n, prm.MaxParticles, config.ParticleCap))
}

// Spawn creates a fresh batch of particles for a w×h surface. Each particle
// starts at rest on its base position.
func Spawn(rng *rand.Rand, w, h int, prm Params) []Particle {
	n := Count(w, h, prm)
	particles := make([]Particle, 0, n)
	for i := 0; i < n; i++ {
		size := uniform(rng, prm.SizeMin, prm.SizeMax)
		// Keep the whole disc on the surface; tiny surfaces clamp to the origin.
		x := rng.Float64() * max(0, float64(w)-size*2)
		y := rng.Float64() * max(0, float64(h)-size*2)
		density := uniform(rng, prm.DensityMin, prm.DensityMax)
		speed := r2.Vec{
			X: uniform(rng, -prm.SpeedMax, prm.SpeedMax),
			Y: uniform(rng, -prm.SpeedMax, prm.SpeedMax),
		}

		at := r2.Vec{X: x, Y: y}
		particles = append(particles, Particle{
			Pos:     at,
			Base:    at,
			Speed:   speed,
			Size:    size,
			Density: density,
			Color:   prm.Color,
		})
	}
	return particles
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
