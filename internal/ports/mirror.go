package ports

import "doudizhu/internal/app"

// EventMirror copies emitted room events to an external sink.
type EventMirror interface {
	// Publish forwards one event. Delivery is best effort; a returned error
	// is logged by the caller and never affects the room.
	Publish(ev app.Event) error
}
