package components

import "image/color"

// Body holds the immutable shape of a particle.
type Body struct {
	Size    float64 // render radius
	Density float64 // repulsion strength multiplier
}

// Tint is the fill color of a particle.
type Tint struct {
	Color color.NRGBA
}

// Epoch records which initialization a particle was created in.
type Epoch struct {
	N uint32
}
