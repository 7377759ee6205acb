package mda

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/infrastructure/events"
)

const tracerName = "github.com/vsinha/aerosim/mda"

// Config holds the orchestrator settings
type Config struct {
	// Tolerance is the maximum relative change of loop outputs between two
	// sweeps for a feedback loop to count as converged
	Tolerance float64
	// MaxIterations bounds the sweeps over one feedback loop
	MaxIterations int
	// Parallel runs independent components of the same level concurrently
	Parallel bool

	Logger log.Logger
	Tracer trace.Tracer
	Events events.Journal
}

// DefaultConfig returns the settings used when none are given
func DefaultConfig() Config {
	return Config{
		Tolerance:     1e-9,
		MaxIterations: 100,
	}
}

// RunResult is the variable store produced by one Run
type RunResult struct {
	RunID     string
	Variables map[string]entities.Value
	// Converged is false when a feedback loop hit MaxIterations
	Converged bool
	// Iterations per feedback loop, keyed by the loop's first discipline
	Iterations map[string]int
	Order      []string
	Duration   time.Duration
}

// Value returns a variable of the run
func (r *RunResult) Value(name string) (entities.Value, bool) {
	v, ok := r.Variables[name]
	return v, ok
}

// Series returns a time-series variable of the run
func (r *RunResult) Series(name string) (entities.TimeSeries, error) {
	v, ok := r.Variables[name]
	if !ok {
		return entities.TimeSeries{}, fmt.Errorf("variable not found: %s", name)
	}
	if v.Kind() != entities.KindSeries {
		return entities.TimeSeries{}, fmt.Errorf("%w: %s is a %s", ErrKindMismatch, name, v.Kind())
	}
	return v.Series(), nil
}

// Scalar returns a scalar variable of the run
func (r *RunResult) Scalar(name string) (float64, error) {
	v, ok := r.Variables[name]
	if !ok {
		return math.NaN(), fmt.Errorf("variable not found: %s", name)
	}
	if v.Kind() != entities.KindScalar {
		return math.NaN(), fmt.Errorf("%w: %s is a %s", ErrKindMismatch, name, v.Kind())
	}
	return v.Float(), nil
}

// Orchestrator executes registered disciplines over a dependency graph,
// iterating feedback loops to a fixed point
type Orchestrator struct {
	config      Config
	disciplines []Discipline
	descriptors []Descriptor
	index       map[string]int
	producers   map[string][]int
	graph       *DependencyGraph
}

// NewOrchestrator creates an orchestrator; zero config fields take defaults
func NewOrchestrator(config Config) *Orchestrator {
	defaults := DefaultConfig()
	if config.Tolerance <= 0 {
		config.Tolerance = defaults.Tolerance
	}
	if config.MaxIterations <= 0 {
		config.MaxIterations = defaults.MaxIterations
	}
	if config.Logger == nil {
		config.Logger = log.NewNopLogger()
	}
	if config.Tracer == nil {
		config.Tracer = otel.Tracer(tracerName)
	}
	return &Orchestrator{
		config:    config,
		index:     make(map[string]int),
		producers: make(map[string][]int),
	}
}

// Register adds a discipline once
func (o *Orchestrator) Register(d Discipline) error {
	desc := d.Descriptor()
	if err := desc.Validate(); err != nil {
		return err
	}
	if _, exists := o.index[desc.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateDiscipline, desc.Name)
	}

	for _, out := range desc.Outputs {
		for _, p := range o.producers[out.Name] {
			other, _ := o.descriptors[p].output(out.Name)
			if !out.Aggregate || !other.Aggregate {
				return fmt.Errorf(
					"%w: %s is produced by both %s and %s",
					ErrDuplicateOutput,
					out.Name,
					o.descriptors[p].Name,
					desc.Name,
				)
			}
			if other.Kind != out.Kind {
				return fmt.Errorf(
					"%w: aggregate %s is a %s in %s but a %s in %s",
					ErrKindMismatch,
					out.Name,
					other.Kind,
					o.descriptors[p].Name,
					out.Kind,
					desc.Name,
				)
			}
		}
	}

	i := len(o.disciplines)
	o.disciplines = append(o.disciplines, d)
	o.descriptors = append(o.descriptors, desc)
	o.index[desc.Name] = i
	for _, out := range desc.Outputs {
		o.producers[out.Name] = append(o.producers[out.Name], i)
	}
	o.graph = nil
	return nil
}

// Disciplines returns the registered discipline names in registration order
func (o *Orchestrator) Disciplines() []string {
	names := make([]string, len(o.descriptors))
	for i, d := range o.descriptors {
		names[i] = d.Name
	}
	return names
}

// Graph returns the dependency graph of the registered disciplines
func (o *Orchestrator) Graph() *DependencyGraph {
	if o.graph == nil {
		o.graph = BuildDependencyGraph(o.descriptors)
	}
	return o.graph
}

// Validate checks every input is produced or supplied with a matching kind
func (o *Orchestrator) Validate(initial map[string]entities.Value) error {
	for name, v := range initial {
		if producers := o.producers[name]; len(producers) > 0 {
			port, _ := o.descriptors[producers[0]].output(name)
			if port.Kind != v.Kind() {
				return fmt.Errorf(
					"%w: initial %s is a %s but %s produces a %s",
					ErrKindMismatch,
					name,
					v.Kind(),
					o.descriptors[producers[0]].Name,
					port.Kind,
				)
			}
		}
	}

	for _, desc := range o.descriptors {
		for _, in := range desc.Inputs {
			if producers := o.producers[in.Name]; len(producers) > 0 {
				port, _ := o.descriptors[producers[0]].output(in.Name)
				if port.Kind != in.Kind {
					return fmt.Errorf(
						"%w: %s reads %s as a %s but %s produces a %s",
						ErrKindMismatch,
						desc.Name,
						in.Name,
						in.Kind,
						o.descriptors[producers[0]].Name,
						port.Kind,
					)
				}
				continue
			}

			v, ok := initial[in.Name]
			if !ok {
				return fmt.Errorf("%w: discipline %s requires %s", ErrMissingInput, desc.Name, in.Name)
			}
			if v.Kind() != in.Kind {
				return fmt.Errorf(
					"%w: %s reads %s as a %s but a %s was supplied",
					ErrKindMismatch,
					desc.Name,
					in.Name,
					in.Kind,
					v.Kind(),
				)
			}
		}
	}
	return nil
}

// Run executes one compute pass from a fresh store seeded with initial
func (o *Orchestrator) Run(ctx context.Context, initial map[string]entities.Value) (*RunResult, error) {
	started := time.Now()
	runID := uuid.NewString()

	ctx, span := o.config.Tracer.Start(ctx, "mda.run", trace.WithAttributes(
		attribute.String("mda.run_id", runID),
		attribute.Int("mda.disciplines", len(o.disciplines)),
	))
	defer span.End()

	if err := o.Validate(initial); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	graph := o.Graph()
	o.publish(runID, events.RunStarted{
		RunID:       runID,
		Disciplines: len(o.disciplines),
		Components:  len(graph.Components()),
	})
	level.Debug(o.config.Logger).Log(
		"msg", "run started",
		"run_id", runID,
		"disciplines", len(o.disciplines),
		"components", len(graph.Components()),
	)

	r := &runner{
		o:          o,
		runID:      runID,
		store:      newStore(initial),
		converged:  true,
		iterations: make(map[string]int),
	}

	var err error
	if o.config.Parallel {
		err = r.runParallel(ctx, graph)
	} else {
		err = r.runSequential(ctx, graph)
	}

	duration := time.Since(started)
	completed := events.RunCompleted{RunID: runID, Converged: r.converged, Duration: duration}
	if err != nil {
		completed.Err = err.Error()
		o.publish(runID, completed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		level.Error(o.config.Logger).Log("msg", "run failed", "run_id", runID, "err", err)
		return nil, err
	}
	o.publish(runID, completed)
	span.SetAttributes(attribute.Bool("mda.converged", r.converged))

	return &RunResult{
		RunID:      runID,
		Variables:  r.store.snapshot(),
		Converged:  r.converged,
		Iterations: r.iterations,
		Order:      graph.Order(),
		Duration:   duration,
	}, nil
}

func (o *Orchestrator) publish(runID string, payload events.Payload) {
	if o.config.Events == nil {
		return
	}
	if _, err := o.config.Events.Record(runID, payload); err != nil {
		level.Warn(o.config.Logger).Log("msg", "failed to journal event", "event", payload.EventType(), "err", err)
	}
}

// runner holds the state of one Run
type runner struct {
	o     *Orchestrator
	runID string
	store *store

	mutex      sync.Mutex
	converged  bool
	iterations map[string]int
}

func (r *runner) runSequential(ctx context.Context, graph *DependencyGraph) error {
	for _, c := range graph.Components() {
		if err := r.runComponent(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) runParallel(ctx context.Context, graph *DependencyGraph) error {
	for _, components := range graph.Levels() {
		g, gctx := errgroup.WithContext(ctx)
		for _, c := range components {
			c := c
			g.Go(func() error {
				return r.runComponent(gctx, c)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) runComponent(ctx context.Context, c Component) error {
	if !c.Cyclic {
		return r.execute(ctx, c.Members[0], 1)
	}
	return r.runLoop(ctx, c)
}

// runLoop sweeps a feedback loop Gauss-Seidel style until the relative
// change of its outputs falls below the tolerance
func (r *runner) runLoop(ctx context.Context, c Component) error {
	cfg := r.o.config

	loopOutputs := make(map[string]Port)
	for _, m := range c.Members {
		for _, out := range r.o.descriptors[m].Outputs {
			loopOutputs[out.Name] = out
		}
	}
	order, err := r.sweepOrder(c)
	if err != nil {
		return err
	}

	residual := math.Inf(1)
	converged := false
	iteration := 0
	for iteration < cfg.MaxIterations {
		iteration++
		previous := make(map[string]entities.Value, len(loopOutputs))
		for name := range loopOutputs {
			if v, ok := r.store.get(name); ok {
				previous[name] = v
			}
		}

		for _, m := range order {
			if err := r.execute(ctx, m, iteration); err != nil {
				return err
			}
		}

		residual = 0
		for name := range loopOutputs {
			current, _ := r.store.get(name)
			prev, had := previous[name]
			residual = math.Max(residual, relativeChange(prev, current, had))
		}
		if residual <= cfg.Tolerance {
			converged = true
			break
		}
	}

	r.mutex.Lock()
	r.iterations[c.Names[0]] = iteration
	if !converged {
		r.converged = false
	}
	r.mutex.Unlock()

	r.o.publish(r.runID, events.ComponentConverged{
		RunID:       r.runID,
		Disciplines: c.Names,
		Iterations:  iteration,
		Residual:    residual,
		Converged:   converged,
	})
	if !converged {
		level.Warn(cfg.Logger).Log(
			"msg", "feedback loop did not converge",
			"run_id", r.runID,
			"disciplines", fmt.Sprint(c.Names),
			"iterations", iteration,
			"residual", residual,
		)
	}
	return nil
}

// startingValue returns the value a loop input holds before its producer
// first runs: the store, the consumer's default, the producer's default,
// or an empty dummy
func (r *runner) startingValue(in, producer Port) (entities.Value, bool) {
	if v, ok := r.store.get(in.Name); ok {
		return v, true
	}
	switch {
	case in.Default != nil:
		return *in.Default, true
	case producer.Default != nil:
		return *producer.Default, true
	case in.Kind == entities.KindDummy:
		return entities.DummyValue(), true
	}
	return entities.Value{}, false
}

// sweepOrder orders the members of a feedback loop for one Gauss-Seidel
// sweep. A loop variable with a starting value cuts its edge; the rest of
// the loop must be acyclic and runs in dependency order, registration order
// breaking ties. Starting values are seeded into the store.
func (r *runner) sweepOrder(c Component) ([]int, error) {
	producers := make(map[string][]int)
	ports := make(map[string]Port)
	for _, m := range c.Members {
		for _, out := range r.o.descriptors[m].Outputs {
			producers[out.Name] = append(producers[out.Name], m)
			ports[out.Name] = out
		}
	}

	inDegree := make(map[int]int, len(c.Members))
	successors := make(map[int][]int, len(c.Members))
	unseeded := make(map[int][]string)
	for _, m := range c.Members {
		inDegree[m] = 0
	}
	for _, m := range c.Members {
		desc := r.o.descriptors[m]
		linked := make(map[int]bool)
		for _, in := range desc.Inputs {
			from, inside := producers[in.Name]
			if !inside {
				continue
			}
			if v, ok := r.startingValue(in, ports[in.Name]); ok {
				if _, stored := r.store.get(in.Name); !stored {
					r.store.seed(in.Name, v)
				}
				continue
			}
			unseeded[m] = append(unseeded[m], in.Name)
			for _, p := range from {
				if p == m {
					return nil, fmt.Errorf(
						"%w: discipline %s needs a starting value for loop variable %s",
						ErrMissingInput,
						desc.Name,
						in.Name,
					)
				}
				if linked[p] {
					continue
				}
				linked[p] = true
				successors[p] = append(successors[p], m)
				inDegree[m]++
			}
		}
	}

	order := make([]int, 0, len(c.Members))
	ready := make([]int, 0)
	for _, m := range c.Members {
		if inDegree[m] == 0 {
			ready = append(ready, m)
		}
	}
	for len(ready) > 0 {
		sort.Ints(ready)
		m := ready[0]
		ready = ready[1:]
		order = append(order, m)
		for _, next := range successors[m] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(order) < len(c.Members) {
		for _, m := range c.Members {
			if inDegree[m] > 0 {
				return nil, fmt.Errorf(
					"%w: discipline %s needs a starting value for loop variable %s",
					ErrMissingInput,
					r.o.descriptors[m].Name,
					unseeded[m][0],
				)
			}
		}
	}
	return order, nil
}

func (r *runner) execute(ctx context.Context, idx, iteration int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d := r.o.disciplines[idx]
	desc := r.o.descriptors[idx]

	ctx, span := r.o.config.Tracer.Start(ctx, "mda.discipline", trace.WithAttributes(
		attribute.String("mda.discipline", desc.Name),
		attribute.Int("mda.iteration", iteration),
	))
	defer span.End()

	values := make(map[string]entities.Value, len(desc.Inputs))
	for _, in := range desc.Inputs {
		if v, ok := r.store.get(in.Name); ok {
			values[in.Name] = v
		} else if in.Kind == entities.KindDummy {
			values[in.Name] = entities.DummyValue()
		}
	}

	started := time.Now()
	outputs, err := d.Compute(ctx, NewInputs(values))
	if err != nil {
		err = fmt.Errorf("discipline %s: %w", desc.Name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	checked, err := checkOutputs(desc, outputs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	r.store.commit(desc.Name, desc, checked)

	elapsed := time.Since(started)
	r.o.publish(r.runID, events.DisciplineComputed{
		RunID:      r.runID,
		Discipline: desc.Name,
		Iteration:  iteration,
		Duration:   elapsed,
	})
	level.Debug(r.o.config.Logger).Log(
		"msg", "discipline computed",
		"run_id", r.runID,
		"discipline", desc.Name,
		"iteration", iteration,
		"duration", elapsed,
	)
	return nil
}

// checkOutputs validates returned outputs against the declaration and fills
// omitted dummy outputs
func checkOutputs(desc Descriptor, outputs map[string]entities.Value) (map[string]entities.Value, error) {
	for name, v := range outputs {
		port, ok := desc.output(name)
		if !ok {
			return nil, fmt.Errorf("%w: discipline %s returned %s", ErrUndeclaredOutput, desc.Name, name)
		}
		if port.Kind != v.Kind() {
			return nil, fmt.Errorf(
				"%w: discipline %s returned %s as a %s, declared %s",
				ErrKindMismatch,
				desc.Name,
				name,
				v.Kind(),
				port.Kind,
			)
		}
	}

	checked := make(map[string]entities.Value, len(desc.Outputs))
	for _, port := range desc.Outputs {
		v, ok := outputs[port.Name]
		if !ok {
			if port.Kind != entities.KindDummy {
				return nil, fmt.Errorf("%w: discipline %s did not return %s", ErrMissingOutput, desc.Name, port.Name)
			}
			v = entities.DummyValue()
		}
		checked[port.Name] = v
	}
	return checked, nil
}

// relativeChange is the largest change between two values relative to the
// previous magnitude (floored at 1)
func relativeChange(prev, current entities.Value, hadPrevious bool) float64 {
	if !hadPrevious {
		return math.Inf(1)
	}
	switch current.Kind() {
	case entities.KindScalar:
		return relativeDiff(prev.Float(), current.Float())
	case entities.KindSeries:
		a, b := prev.Series(), current.Series()
		if a.Start() != b.Start() || a.Len() != b.Len() {
			return math.Inf(1)
		}
		av, bv := a.Values(), b.Values()
		worst := 0.0
		for i := range av {
			worst = math.Max(worst, relativeDiff(av[i], bv[i]))
		}
		return worst
	case entities.KindText:
		if prev.Text() != current.Text() {
			return math.Inf(1)
		}
		return 0
	default:
		return 0
	}
}

func relativeDiff(a, b float64) float64 {
	if a == b {
		return 0
	}
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	if aNaN && bNaN {
		return 0
	}
	if aNaN || bNaN {
		return math.Inf(1)
	}
	return math.Abs(a-b) / math.Max(1, math.Abs(a))
}
