package events

import "time"

const (
	RunStartedEvent         = "run.started"
	DisciplineComputedEvent = "discipline.computed"
	ComponentConvergedEvent = "component.converged"
	RunCompletedEvent       = "run.completed"
	MandateScaledDownEvent  = "mandate.scaled_down"
)

// RunEventTypes lists every event type emitted during a scenario run
var RunEventTypes = []string{
	RunStartedEvent,
	DisciplineComputedEvent,
	ComponentConvergedEvent,
	RunCompletedEvent,
	MandateScaledDownEvent,
}

// RunStarted opens a run's stream
type RunStarted struct {
	RunID       string `json:"run_id"`
	Disciplines int    `json:"disciplines"`
	Components  int    `json:"components"`
}

// DisciplineComputed is recorded after each discipline execution, once per sweep inside a loop
type DisciplineComputed struct {
	RunID      string        `json:"run_id"`
	Discipline string        `json:"discipline"`
	Iteration  int           `json:"iteration"`
	Duration   time.Duration `json:"duration"`
}

// ComponentConverged closes a feedback loop, converged or not
type ComponentConverged struct {
	RunID       string   `json:"run_id"`
	Disciplines []string `json:"disciplines"`
	Iterations  int      `json:"iterations"`
	Residual    float64  `json:"residual"`
	Converged   bool     `json:"converged"`
}

// RunCompleted closes a run's stream; Err is set when the run failed
type RunCompleted struct {
	RunID     string        `json:"run_id"`
	Converged bool          `json:"converged"`
	Duration  time.Duration `json:"duration"`
	Err       string        `json:"error,omitempty"`
}

// MandateScaledDown reports quantity mandates cut back to fit demand
type MandateScaledDown struct {
	Carrier string  `json:"carrier"`
	Year    int     `json:"year"`
	Ratio   float64 `json:"ratio"`
}

func (RunStarted) EventType() string         { return RunStartedEvent }
func (DisciplineComputed) EventType() string { return DisciplineComputedEvent }
func (ComponentConverged) EventType() string { return ComponentConvergedEvent }
func (RunCompleted) EventType() string       { return RunCompletedEvent }
func (MandateScaledDown) EventType() string  { return MandateScaledDownEvent }
