package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// InMemoryJournal keeps run events in memory. Subscribers are notified
// synchronously, in subscription order, after the event is stored.
type InMemoryJournal struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	allEvents   []Event
	logger      log.Logger
	now         func() time.Time
}

func NewInMemoryJournal(logger log.Logger) *InMemoryJournal {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &InMemoryJournal{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		logger:      logger,
		now:         time.Now,
	}
}

var _ Journal = (*InMemoryJournal)(nil)

// Record stamps payload with the next sequence number of stream and stores it
func (j *InMemoryJournal) Record(stream string, payload Payload) (Event, error) {
	if payload == nil {
		return Event{}, fmt.Errorf("cannot record an empty payload on %s", stream)
	}

	j.mutex.Lock()
	event := Event{
		Stream:     stream,
		Sequence:   len(j.streams[stream]) + 1,
		RecordedAt: j.now(),
		Payload:    payload,
	}
	j.streams[stream] = append(j.streams[stream], event)
	j.allEvents = append(j.allEvents, event)
	handlers := append([]EventHandler(nil), j.subscribers[event.Type()]...)
	j.mutex.Unlock()

	for _, handler := range handlers {
		if !handler.CanHandle(event.Type()) {
			continue
		}
		if err := handler.Handle(event); err != nil {
			level.Warn(j.logger).Log("msg", "event handler failed", "event", event.Type(), "stream", stream, "err", err)
		}
	}
	return event, nil
}

// ReadStream returns the events of stream from sequence fromSequence on
func (j *InMemoryJournal) ReadStream(stream string, fromSequence int) ([]Event, error) {
	j.mutex.RLock()
	defer j.mutex.RUnlock()

	recorded := j.streams[stream]
	if fromSequence < 1 {
		fromSequence = 1
	}
	if fromSequence > len(recorded) {
		return []Event{}, nil
	}
	return append([]Event(nil), recorded[fromSequence-1:]...), nil
}

// ReadAll returns every event from the zero-based fromPosition on, across streams
func (j *InMemoryJournal) ReadAll(fromPosition int) ([]Event, error) {
	j.mutex.RLock()
	defer j.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}
	if fromPosition >= len(j.allEvents) {
		return []Event{}, nil
	}
	return append([]Event(nil), j.allEvents[fromPosition:]...), nil
}

func (j *InMemoryJournal) Subscribe(eventTypes []string, handler EventHandler) error {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	for _, eventType := range eventTypes {
		j.subscribers[eventType] = append(j.subscribers[eventType], handler)
	}
	return nil
}

func (j *InMemoryJournal) Unsubscribe(handler EventHandler) error {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	for eventType, handlers := range j.subscribers {
		kept := make([]EventHandler, 0, len(handlers))
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		j.subscribers[eventType] = kept
	}
	return nil
}

// Streams returns the number of streams recorded so far
func (j *InMemoryJournal) Streams() int {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	return len(j.streams)
}
