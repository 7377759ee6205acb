package events

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func mustRecord(t *testing.T, j *InMemoryJournal, stream string, payload Payload) Event {
	t.Helper()
	event, err := j.Record(stream, payload)
	if err != nil {
		t.Fatalf("Failed to record %T: %v", payload, err)
	}
	return event
}

func TestInMemoryJournal_SequencesPerStream(t *testing.T) {
	journal := NewInMemoryJournal(nil)
	recordedAt := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	journal.now = func() time.Time { return recordedAt }

	mustRecord(t, journal, "run-a", RunStarted{RunID: "run-a"})
	mustRecord(t, journal, "run-b", RunStarted{RunID: "run-b"})
	completed := mustRecord(t, journal, "run-a", RunCompleted{RunID: "run-a", Converged: true})

	if completed.Sequence != 2 {
		t.Errorf("Expected sequence 2, got %d", completed.Sequence)
	}
	if !completed.RecordedAt.Equal(recordedAt) {
		t.Errorf("Expected timestamp %v, got %v", recordedAt, completed.RecordedAt)
	}

	runA, err := journal.ReadStream("run-a", 0)
	if err != nil {
		t.Fatalf("Failed to read run-a: %v", err)
	}
	if len(runA) != 2 {
		t.Fatalf("Expected 2 events in run-a, got %d", len(runA))
	}
	if runA[0].Sequence != 1 || runA[1].Sequence != 2 {
		t.Errorf("Expected sequences 1 and 2, got %d and %d", runA[0].Sequence, runA[1].Sequence)
	}
	if runA[1].Type() != RunCompletedEvent {
		t.Errorf("Expected %s, got %s", RunCompletedEvent, runA[1].Type())
	}
	if payload, ok := runA[1].Payload.(RunCompleted); !ok || !payload.Converged {
		t.Errorf("Expected a converged RunCompleted payload, got %#v", runA[1].Payload)
	}

	all, err := journal.ReadAll(1)
	if err != nil {
		t.Fatalf("Failed to read all events: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 events after position 1, got %d", len(all))
	}
	if journal.Streams() != 2 {
		t.Errorf("Expected 2 streams, got %d", journal.Streams())
	}

	missing, err := journal.ReadStream("run-c", 1)
	if err != nil {
		t.Fatalf("Failed to read an unknown stream: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("Expected no events for an unknown stream, got %d", len(missing))
	}
}

func TestInMemoryJournal_RejectsEmptyPayload(t *testing.T) {
	journal := NewInMemoryJournal(nil)
	if _, err := journal.Record("run-a", nil); err == nil {
		t.Fatal("Expected error for an empty payload, got none")
	}
	if journal.Streams() != 0 {
		t.Errorf("Expected nothing recorded, got %d streams", journal.Streams())
	}
}

func TestInMemoryJournal_NotifiesSynchronously(t *testing.T) {
	journal := NewInMemoryJournal(nil)

	var seen []string
	handler := &HandlerFunc{
		Types: []string{DisciplineComputedEvent},
		Fn: func(e Event) error {
			seen = append(seen, e.Payload.(DisciplineComputed).Discipline)
			return nil
		},
	}
	if err := journal.Subscribe([]string{DisciplineComputedEvent}, handler); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	mustRecord(t, journal, "r", DisciplineComputed{Discipline: "traffic"})
	mustRecord(t, journal, "r", RunCompleted{})
	if !reflect.DeepEqual(seen, []string{"traffic"}) {
		t.Errorf("Expected [traffic], got %v", seen)
	}

	if err := journal.Unsubscribe(handler); err != nil {
		t.Fatalf("Failed to unsubscribe: %v", err)
	}
	mustRecord(t, journal, "r", DisciplineComputed{Discipline: "fleet"})
	if !reflect.DeepEqual(seen, []string{"traffic"}) {
		t.Errorf("Expected no delivery after unsubscribing, got %v", seen)
	}
}

func TestInMemoryJournal_HandlerErrorDoesNotFailRecord(t *testing.T) {
	journal := NewInMemoryJournal(nil)
	handler := &HandlerFunc{
		Types: []string{RunStartedEvent},
		Fn:    func(Event) error { return errors.New("boom") },
	}
	if err := journal.Subscribe([]string{RunStartedEvent}, handler); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if _, err := journal.Record("r", RunStarted{}); err != nil {
		t.Errorf("Expected a failing handler not to fail the record, got %v", err)
	}
}

func TestRunEventTypes_MatchPayloads(t *testing.T) {
	payloads := []Payload{RunStarted{}, DisciplineComputed{}, ComponentConverged{}, RunCompleted{}, MandateScaledDown{}}
	if len(payloads) != len(RunEventTypes) {
		t.Fatalf("Expected %d payload types, got %d", len(RunEventTypes), len(payloads))
	}
	for i, p := range payloads {
		if p.EventType() != RunEventTypes[i] {
			t.Errorf("Payload %T: expected type %s, got %s", p, RunEventTypes[i], p.EventType())
		}
	}
}
