package eventscan

import "io"

// Renderer turns a raw RTAS event into readable text. The concrete
// implementation is injected at construction time; machines without one
// fall back to a raw dump of the same bytes.
type Renderer interface {
	// Parse validates and decodes one event. A non-nil error makes the
	// decoder fall back to a raw dump.
	Parse(data []byte) (Event, error)
}

// Event is one parsed RTAS event. Release must be called once the event
// has been rendered.
type Event interface {
	Render(w io.Writer) error
	Release()
}
