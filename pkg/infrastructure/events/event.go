package events

import (
	"time"
)

// Payload is the body of a journaled event; it names its own event type
type Payload interface {
	EventType() string
}

// Event is one journal entry. Stream is the run ID for orchestrator events
// and "mandates:<carrier>" for energy mix diagnostics.
type Event struct {
	Stream     string
	Sequence   int // 1-based position within Stream, assigned by the journal
	RecordedAt time.Time
	Payload    Payload
}

// Type returns the payload's event type
func (e Event) Type() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.EventType()
}

// EventHandler receives events of the types it subscribed to
type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// Journal records run events per stream and fans them out to subscribers
type Journal interface {
	Record(stream string, payload Payload) (Event, error)
	ReadStream(stream string, fromSequence int) ([]Event, error)
	ReadAll(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

// HandlerFunc adapts a function to EventHandler for the given event types
type HandlerFunc struct {
	Types []string
	Fn    func(Event) error
}

func (h *HandlerFunc) Handle(event Event) error {
	return h.Fn(event)
}

func (h *HandlerFunc) CanHandle(eventType string) bool {
	for _, t := range h.Types {
		if t == eventType {
			return true
		}
	}
	return false
}
