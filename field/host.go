// Package field runs the particle field on a host surface: it mounts onto a
// Host, regenerates particles on resize, follows the pointer and redraws the
// field once per host frame until detached.
package field

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/particlefield/renderer"
)

// ErrNoSurface is returned by Mount when the host has no drawing surface or
// the surface has no 2D canvas.
var ErrNoSurface = errors.New("field: no drawing surface")

// ErrMounted is returned by Mount on a simulator that is already attached.
var ErrMounted = errors.New("field: already mounted")

// FrameID identifies a requested frame callback.
type FrameID uint64

// EventKind is the type of a host event.
type EventKind uint8

const (
	EventMove EventKind = iota + 1
	EventLeave
	EventDown
	EventUp
	EventResize
)

func (k EventKind) String() string {
	switch k {
	case EventMove:
		return "move"
	case EventLeave:
		return "leave"
	case EventDown:
		return "down"
	case EventUp:
		return "up"
	case EventResize:
		return "resize"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is a pointer or viewport event. Move, Down and Up carry the pointer
// position in surface pixels; Resize carries the new viewport size.
type Event struct {
	Kind   EventKind
	X, Y   float64
	Width  int
	Height int
}

// Surface is a drawing surface owned by the host.
type Surface interface {
	Size() (w, h int)
	Resize(w, h int)
	// Canvas returns the 2D drawing context, or nil if there is none.
	Canvas() renderer.Canvas
}

// Host is the environment the field runs in. All callbacks are invoked on
// the host's single event goroutine, never concurrently.
type Host interface {
	// Surface returns the drawing surface, or nil if there is none.
	Surface() Surface
	// RequestFrame schedules fn to run once on the next display frame.
	RequestFrame(fn func()) FrameID
	// CancelFrame drops a pending frame callback. Unknown ids are ignored.
	CancelFrame(id FrameID)
	// Listen subscribes fn to host events. The returned func removes the
	// subscription and may be called any number of times.
	Listen(fn func(Event)) (remove func())
}
