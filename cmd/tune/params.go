package main

import (
	"github.com/pthm-cable/particlefield/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters with
// defaults taken from cfg.
func NewParamVector(cfg *config.Config) *ParamVector {
	f := cfg.Field
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "link_divisor", Path: "field.link_divisor", Min: 2, Max: 20, Default: f.LinkDivisor},
			{Name: "pointer_radius", Path: "field.pointer_radius", Min: 20, Max: 400, Default: f.PointerRadius},
			{Name: "easing", Path: "field.easing", Min: 0.02, Max: 0.5, Default: f.Easing},
			{Name: "area_per_particle", Path: "field.area_per_particle", Min: 2000, Max: 30000, Default: f.AreaPerParticle},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = max(spec.Min, min(v[i], spec.Max))
	}
	return clamped
}

// ApplyToConfig applies clamped parameter values to cfg. Order must match
// Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Field.LinkDivisor = c[0]
	cfg.Field.PointerRadius = c[1]
	cfg.Field.Easing = c[2]
	cfg.Field.AreaPerParticle = c[3]
}
