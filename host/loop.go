// Package host provides the frame queue and listener registry shared by all
// backends, plus an in-memory host for headless runs and tests.
package host

import (
	"github.com/pthm-cable/particlefield/field"
)

// Loop is a frame callback queue and event listener registry. It is not
// safe for concurrent use; a backend owns it from one goroutine and calls
// Dispatch between frames and RunFrame once per display frame.
type Loop struct {
	nextFrame field.FrameID
	pending   map[field.FrameID]func()
	order     []field.FrameID

	nextListener int
	listeners    []*listener
}

type listener struct {
	id int
	fn func(field.Event) // nil once removed
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{pending: make(map[field.FrameID]func())}
}

// RequestFrame queues fn for the next RunFrame.
func (l *Loop) RequestFrame(fn func()) field.FrameID {
	l.nextFrame++
	id := l.nextFrame
	l.pending[id] = fn
	l.order = append(l.order, id)
	return id
}

// CancelFrame drops a queued callback. Unknown or already run ids are ignored.
func (l *Loop) CancelFrame(id field.FrameID) {
	delete(l.pending, id)
}

// RunFrame runs the callbacks queued before it was called, in request
// order, and returns how many ran. Callbacks queued while it runs wait for
// the next call.
func (l *Loop) RunFrame() int {
	batch := l.order
	l.order = nil
	ran := 0
	for _, id := range batch {
		fn, ok := l.pending[id]
		if !ok {
			continue
		}
		delete(l.pending, id)
		fn()
		ran++
	}
	return ran
}

// PendingFrames returns the number of queued callbacks.
func (l *Loop) PendingFrames() int {
	return len(l.pending)
}

// Listen registers fn for every dispatched event.
func (l *Loop) Listen(fn func(field.Event)) (remove func()) {
	l.nextListener++
	ln := &listener{id: l.nextListener, fn: fn}
	l.listeners = append(l.listeners, ln)
	return func() {
		if ln.fn == nil {
			return
		}
		ln.fn = nil
		for i, other := range l.listeners {
			if other == ln {
				l.listeners = append(l.listeners[:i], l.listeners[i+1:]...)
				break
			}
		}
	}
}

// Listeners returns the number of registered listeners.
func (l *Loop) Listeners() int {
	return len(l.listeners)
}

// Dispatch delivers ev to every listener registered when it was called.
// A listener removed during dispatch is not called afterwards.
func (l *Loop) Dispatch(ev field.Event) {
	snapshot := append([]*listener(nil), l.listeners...)
	for _, ln := range snapshot {
		if fn := ln.fn; fn != nil {
			fn(ev)
		}
	}
}
