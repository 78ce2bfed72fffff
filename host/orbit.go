package host

import (
	"math"

	"github.com/pthm-cable/particlefield/field"
)

// Orbit is a scripted pointer that sweeps a Lissajous figure across the
// surface and leaves it for the last Away frames of every Period.
type Orbit struct {
	Period int     // frames per sweep
	Away   int     // frames per sweep spent off the surface
	Reach  float64 // fraction of the half-extent covered, in (0, 1]

	present bool
}

// NewOrbit returns an orbit with a ten second sweep at 60 fps.
func NewOrbit() *Orbit {
	return &Orbit{Period: 600, Away: 120, Reach: 0.8}
}

// At returns the pointer position at frame i of a w×h surface, and whether
// the pointer is on the surface at all.
func (o *Orbit) At(i, w, h int) (x, y float64, on bool) {
	period := max(o.Period, 1)
	phase := i % period
	if phase >= period-o.Away {
		return 0, 0, false
	}
	t := 2 * math.Pi * float64(phase) / float64(period)
	cx, cy := float64(w)/2, float64(h)/2
	x = cx + cx*o.Reach*math.Sin(t)
	y = cy + cy*o.Reach*math.Sin(2*t+math.Pi/2)
	return x, y, true
}

// Drive dispatches the pointer event for frame i on l: a move while on the
// surface and a single leave when it goes off.
func (o *Orbit) Drive(l *Loop, i, w, h int) {
	x, y, on := o.At(i, w, h)
	switch {
	case on:
		o.present = true
		l.Dispatch(field.Event{Kind: field.EventMove, X: x, Y: y})
	case o.present:
		o.present = false
		l.Dispatch(field.Event{Kind: field.EventLeave})
	}
}
