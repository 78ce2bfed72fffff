// Package systems holds the particle field simulation: per-tick transitions,
// the spawn law, the connection pass and the ECS-backed particle store.
package systems

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/particlefield/config"
)

// Particle is one animated point of the field.
type Particle struct {
	Pos     r2.Vec // rendered position
	Base    r2.Vec // unforced drift position
	Speed   r2.Vec // drift per frame
	Size    float64
	Density float64
	Color   color.NRGBA
}

// Pointer is the shared pointer state. Present is false until the first move
// and after the pointer leaves the surface.
type Pointer struct {
	At      r2.Vec
	Present bool
}

// Params are the tunables of the simulation.
type Params struct {
	AreaPerParticle float64
	MaxParticles    int
	SizeMin         float64
	SizeMax         float64
	SpeedMax        float64
	DensityMin      float64
	DensityMax      float64
	PointerRadius   float64
	Easing          float64
	LinkDivisor     float64
	LinkAlpha       float64
	LinkWidth       float64
	Color           color.NRGBA
	Background      color.NRGBA
}

// ParamsFromConfig builds Params from a loaded config.
func ParamsFromConfig(cfg *config.Config) Params {
	f := cfg.Field
	return Params{
		AreaPerParticle: f.AreaPerParticle,
		MaxParticles:    f.MaxParticles,
		SizeMin:         f.SizeMin,
		SizeMax:         f.SizeMax,
		SpeedMax:        f.SpeedMax,
		DensityMin:      f.DensityMin,
		DensityMax:      f.DensityMax,
		PointerRadius:   f.PointerRadius,
		Easing:          f.Easing,
		LinkDivisor:     f.LinkDivisor,
		LinkAlpha:       f.LinkAlpha,
		LinkWidth:       f.LinkWidth,
		Color:           cfg.Derived.ParticleColor,
		Background:      cfg.Derived.BackgroundColor,
	}
}

// DefaultParams returns Params built from the embedded defaults.
func DefaultParams() Params {
	return ParamsFromConfig(config.Default())
}

// Step advances one particle by one frame: drift and reflect the base, then
// ease the rendered position toward the (possibly repelled) target.
func Step(p Particle, ptr Pointer, bounds r2.Vec, prm Params) Particle {
	p.Base, p.Speed = Drift(p.Base, p.Speed, bounds)
	p.Pos = Ease(p.Pos, Target(p, ptr, prm), prm.Easing)
	return p
}

// Drift moves base by speed and negates each speed component whose base
// coordinate has left [0, bounds]. The base may overshoot by one frame.
func Drift(base, speed, bounds r2.Vec) (r2.Vec, r2.Vec) {
	base = r2.Add(base, speed)
	if base.X < 0 || base.X > bounds.X {
		speed.X = -speed.X
	}
	if base.Y < 0 || base.Y > bounds.Y {
		speed.Y = -speed.Y
	}
	return base, speed
}

// Target is where the particle wants to be this frame. Without a nearby
// pointer that is its base; within the radius it is pushed away from the
// pointer by force*density, where force falls linearly from 1 at the pointer
// to 0 at the radius.
func Target(p Particle, ptr Pointer, prm Params) r2.Vec {
	if !ptr.Present {
		return p.Base
	}
	d := r2.Sub(ptr.At, p.Pos)
	dist := r2.Norm(d)
	// A particle exactly under the pointer has no direction to flee in.
	if dist >= prm.PointerRadius || dist == 0 {
		return p.Base
	}
	dir := r2.Scale(1/dist, d)
	force := (prm.PointerRadius - dist) / prm.PointerRadius
	return r2.Sub(p.Pos, r2.Scale(force*p.Density, dir))
}

// Ease closes fraction k of the gap between pos and target.
func Ease(pos, target r2.Vec, k float64) r2.Vec {
	return r2.Add(pos, r2.Scale(k, r2.Sub(target, pos)))
}
