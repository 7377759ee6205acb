package mda

import (
	"context"
	"fmt"
	"math"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// Port declares one named variable read or written by a discipline
type Port struct {
	Name string
	Kind entities.ValueKind
	// Aggregate marks an output that several disciplines may contribute to;
	// contributions are summed.
	Aggregate bool
	// Default seeds the variable when it sits inside a feedback loop and has
	// not been produced yet.
	Default *entities.Value
}

// SeriesPort declares a time-series variable
func SeriesPort(name string) Port { return Port{Name: name, Kind: entities.KindSeries} }

// ScalarPort declares a scalar variable
func ScalarPort(name string) Port { return Port{Name: name, Kind: entities.KindScalar} }

// TextPort declares a text variable
func TextPort(name string) Port { return Port{Name: name, Kind: entities.KindText} }

// DummyPort declares an ordering-only coupling variable
func DummyPort(name string) Port { return Port{Name: name, Kind: entities.KindDummy} }

// AggregatePort declares a summed time-series output
func AggregatePort(name string) Port {
	return Port{Name: name, Kind: entities.KindSeries, Aggregate: true}
}

// WithDefault returns a copy of the port seeded with v
func (p Port) WithDefault(v entities.Value) Port {
	p.Default = &v
	return p
}

// Descriptor is the immutable declaration of a discipline
type Descriptor struct {
	Name    string
	Inputs  []Port
	Outputs []Port
}

// Validate checks the descriptor is well formed
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("discipline name cannot be empty")
	}
	if len(d.Outputs) == 0 {
		return fmt.Errorf("discipline %s declares no outputs", d.Name)
	}
	seen := make(map[string]bool, len(d.Inputs)+len(d.Outputs))
	for _, p := range d.Inputs {
		if p.Name == "" {
			return fmt.Errorf("discipline %s has an unnamed input", d.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("discipline %s declares input %s twice", d.Name, p.Name)
		}
		seen[p.Name] = true
	}
	outputs := make(map[string]bool, len(d.Outputs))
	for _, p := range d.Outputs {
		if p.Name == "" {
			return fmt.Errorf("discipline %s has an unnamed output", d.Name)
		}
		if outputs[p.Name] {
			return fmt.Errorf("discipline %s declares output %s twice", d.Name, p.Name)
		}
		if p.Aggregate && p.Kind != entities.KindSeries && p.Kind != entities.KindScalar {
			return fmt.Errorf("discipline %s: aggregate output %s must be numeric", d.Name, p.Name)
		}
		outputs[p.Name] = true
	}
	return nil
}

func (d Descriptor) output(name string) (Port, bool) {
	for _, p := range d.Outputs {
		if p.Name == name {
			return p, true
		}
	}
	return Port{}, false
}

// Discipline is a named unit of computation over declared variables.
// Compute must not retain or mutate its inputs.
type Discipline interface {
	Descriptor() Descriptor
	Compute(ctx context.Context, in Inputs) (map[string]entities.Value, error)
}

// FuncDiscipline adapts a function to the Discipline interface
type FuncDiscipline struct {
	Desc Descriptor
	Fn   func(ctx context.Context, in Inputs) (map[string]entities.Value, error)
}

func (f *FuncDiscipline) Descriptor() Descriptor { return f.Desc }

func (f *FuncDiscipline) Compute(ctx context.Context, in Inputs) (map[string]entities.Value, error) {
	return f.Fn(ctx, in)
}

// Inputs is the read-only view of a discipline's declared inputs
type Inputs struct {
	values map[string]entities.Value
}

// NewInputs wraps a value map; used by tests and by the orchestrator
func NewInputs(values map[string]entities.Value) Inputs {
	return Inputs{values: values}
}

// Value returns the raw value of name
func (in Inputs) Value(name string) (entities.Value, bool) {
	v, ok := in.values[name]
	return v, ok
}

// Has reports whether name was supplied
func (in Inputs) Has(name string) bool {
	_, ok := in.values[name]
	return ok
}

// Series returns a copy of the series input name (empty if absent)
func (in Inputs) Series(name string) entities.TimeSeries {
	return in.values[name].Series().Clone()
}

// Scalar returns the scalar input name (NaN if absent)
func (in Inputs) Scalar(name string) float64 {
	v, ok := in.values[name]
	if !ok {
		return math.NaN()
	}
	return v.Float()
}

// Text returns the text input name
func (in Inputs) Text(name string) string {
	return in.values[name].Text()
}
