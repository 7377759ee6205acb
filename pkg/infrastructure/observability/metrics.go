package observability

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vsinha/aerosim/pkg/infrastructure/events"
)

// RunCollector turns the run journal into Prometheus metrics. It subscribes
// to an event store and never touches the orchestrator directly.
type RunCollector struct {
	gatherer prometheus.Gatherer

	Runs                *prometheus.CounterVec
	RunFailures         prometheus.Counter
	RunDuration         prometheus.Histogram
	DisciplineDurations *prometheus.HistogramVec
	LoopIterations      prometheus.Histogram
	MandateScaleDowns   *prometheus.CounterVec
}

// NewRunCollector registers run metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewRunCollector(reg prometheus.Registerer) (*RunCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aerosim_runs_total",
		Help: "Completed scenario runs, labeled by whether every feedback loop converged.",
	}, []string{"converged"}), "aerosim_runs_total")
	if err != nil {
		return nil, err
	}

	failures, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aerosim_run_failures_total",
		Help: "Scenario runs aborted by a discipline error.",
	}), "aerosim_run_failures_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "aerosim_run_duration_seconds",
		Help:    "Wall time of one scenario run.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}), "aerosim_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	disciplines, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aerosim_discipline_duration_seconds",
		Help:    "Wall time of one discipline computation.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"discipline"}), "aerosim_discipline_duration_seconds")
	if err != nil {
		return nil, err
	}

	iterations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "aerosim_loop_iterations",
		Help:    "Sweeps needed by a feedback loop to reach its fixed point.",
		Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100},
	}), "aerosim_loop_iterations")
	if err != nil {
		return nil, err
	}

	scaleDowns, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aerosim_mandate_scale_downs_total",
		Help: "Years in which quantity mandates exceeded the remaining demand of a carrier.",
	}, []string{"carrier"}), "aerosim_mandate_scale_downs_total")
	if err != nil {
		return nil, err
	}

	return &RunCollector{
		gatherer:            gatherer,
		Runs:                runs,
		RunFailures:         failures,
		RunDuration:         duration,
		DisciplineDurations: disciplines,
		LoopIterations:      iterations,
		MandateScaleDowns:   scaleDowns,
	}, nil
}

var _ events.EventHandler = (*RunCollector)(nil)

// Attach subscribes the collector to every run event of journal
func (c *RunCollector) Attach(journal events.Journal) error {
	return journal.Subscribe(events.RunEventTypes, c)
}

// CanHandle reports whether the collector records eventType
func (c *RunCollector) CanHandle(eventType string) bool {
	switch eventType {
	case events.RunCompletedEvent,
		events.DisciplineComputedEvent,
		events.ComponentConvergedEvent,
		events.MandateScaledDownEvent:
		return true
	default:
		return false
	}
}

// Handle records one journaled event
func (c *RunCollector) Handle(event events.Event) error {
	switch data := event.Payload.(type) {
	case events.RunCompleted:
		if data.Err != "" {
			c.RunFailures.Inc()
			return nil
		}
		c.Runs.WithLabelValues(strconv.FormatBool(data.Converged)).Inc()
		c.RunDuration.Observe(data.Duration.Seconds())
	case events.DisciplineComputed:
		c.DisciplineDurations.WithLabelValues(data.Discipline).Observe(data.Duration.Seconds())
	case events.ComponentConverged:
		c.LoopIterations.Observe(float64(data.Iterations))
	case events.MandateScaledDown:
		c.MandateScaleDowns.WithLabelValues(data.Carrier).Inc()
	default:
		return fmt.Errorf("unexpected payload %T for %s", data, event.Type())
	}
	return nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *RunCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, histogram prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(histogram); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return histogram, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
