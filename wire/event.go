package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pthm-cable/particlefield/field"
)

// ErrUnknownEvent is returned for a client message with an unknown type.
var ErrUnknownEvent = errors.New("wire: unknown event type")

// ClientEvent is the JSON message the browser sends for pointer and
// viewport changes.
type ClientEvent struct {
	Type string  `json:"type"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
	W    int     `json:"w,omitempty"`
	H    int     `json:"h,omitempty"`
}

// DecodeEvent parses a client message into a field event.
func DecodeEvent(data []byte) (field.Event, error) {
	var msg ClientEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return field.Event{}, fmt.Errorf("decoding client event: %w", err)
	}
	switch msg.Type {
	case "move":
		return field.Event{Kind: field.EventMove, X: msg.X, Y: msg.Y}, nil
	case "leave":
		return field.Event{Kind: field.EventLeave}, nil
	case "down":
		return field.Event{Kind: field.EventDown, X: msg.X, Y: msg.Y}, nil
	case "up":
		return field.Event{Kind: field.EventUp, X: msg.X, Y: msg.Y}, nil
	case "resize":
		if msg.W < 0 || msg.H < 0 {
			return field.Event{}, fmt.Errorf("decoding client event: negative size %dx%d", msg.W, msg.H)
		}
		return field.Event{Kind: field.EventResize, Width: msg.W, Height: msg.H}, nil
	}
	return field.Event{}, fmt.Errorf("%w %q", ErrUnknownEvent, msg.Type)
}

// EncodeEvent is the inverse of DecodeEvent, used by tooling and tests.
func EncodeEvent(ev field.Event) ([]byte, error) {
	msg := ClientEvent{Type: ev.Kind.String()}
	switch ev.Kind {
	case field.EventMove, field.EventDown, field.EventUp:
		msg.X, msg.Y = ev.X, ev.Y
	case field.EventResize:
		msg.W, msg.H = ev.Width, ev.Height
	case field.EventLeave:
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownEvent, msg.Type)
	}
	return json.Marshal(msg)
}
