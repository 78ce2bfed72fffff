// Package components defines the ECS components of a field particle.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Position is the rendered position of a particle, eased every frame.
type Position r2.Vec

// Base is the unforced drift position, independent of pointer repulsion.
type Base r2.Vec

// Drift is the per-frame velocity applied to Base. Only its sign changes.
type Drift r2.Vec
