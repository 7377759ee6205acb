package scenario

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/vsinha/aerosim/pkg/application/dto"
	"github.com/vsinha/aerosim/pkg/application/services/disciplines"
	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/domain/repositories"
)

// Process is an assembled scenario. It is set up once and computed any
// number of times; parameters may change between computations.
type Process struct {
	orchestrator *mda.Orchestrator
	paramRepo    repositories.ParameterRepository
	timeIndex    entities.TimeIndex
	bottomUp     map[string]*disciplines.BottomUpPathway
	costs        *disciplines.ScenarioCostsDiscipline
	logger       log.Logger

	// serializes Compute and SetParameter
	mutex sync.Mutex
}

// TimeIndex returns the years the scenario covers
func (p *Process) TimeIndex() entities.TimeIndex { return p.timeIndex }

// Orchestrator exposes the underlying MDA, mainly for graph inspection
func (p *Process) Orchestrator() *mda.Orchestrator { return p.orchestrator }

// Validate checks every discipline input is provided before computing
func (p *Process) Validate() error {
	return p.orchestrator.Validate(p.paramRepo.Snapshot())
}

// SetParameter replaces one input parameter for the next computation
func (p *Process) SetParameter(name string, value entities.Value) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.paramRepo.Has(name) {
		return fmt.Errorf("parameter not found: %s", name)
	}
	return p.paramRepo.Set(name, value)
}

// Compute runs every discipline on the current parameters
func (p *Process) Compute(ctx context.Context) (*dto.ScenarioResult, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	// Step 1: run the MDA from a fresh copy of the parameters
	run, err := p.orchestrator.Run(ctx, p.paramRepo.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to compute scenario: %w", err)
	}

	// Step 2: collect scalar outputs and reporting metadata
	result := &dto.ScenarioResult{
		RunID:        run.RunID,
		TimeIndex:    p.timeIndex,
		Converged:    run.Converged,
		Iterations:   run.Iterations,
		Order:        run.Order,
		Duration:     run.Duration,
		Variables:    run.Variables,
		Info:         make(map[string]entities.VariableInfo),
		FloatOutputs: make(map[string]float64),
		Vintages:     make(map[string][]dto.VintageSummary, len(p.bottomUp)),
	}
	for name, v := range run.Variables {
		if v.Kind() == entities.KindScalar {
			result.FloatOutputs[name] = v.Float()
		}
		if info, ok := p.paramRepo.Info(name); ok {
			result.Info[name] = info
		}
	}

	// Step 3: attach vintage detail and cost totals
	names := make([]string, 0, len(p.bottomUp))
	for name := range p.bottomUp {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if report := p.bottomUp[name].Report(); report != nil {
			result.Vintages[name] = summarizeVintages(report)
		}
	}
	if scenarioCosts := p.costs.Costs(); scenarioCosts != nil {
		summary := scenarioCosts.Summary
		result.Costs = &summary
		if !summary.Complete {
			level.Warn(p.logger).Log(
				"msg", "cost totals are incomplete",
				"run_id", run.RunID,
				"unpriced", fmt.Sprint(summary.Unpriced),
			)
		}
	}

	return result, nil
}

func summarizeVintages(report *disciplines.BottomUpReport) []dto.VintageSummary {
	summaries := make([]dto.VintageSummary, 0, len(report.Costs.Vintages))
	co2 := report.Emissions[disciplines.CO2]
	for i, vc := range report.Costs.Vintages {
		v := vc.Vintage
		summary := dto.VintageSummary{
			Pathway:           v.Pathway,
			CommissioningYear: v.CommissioningYear,
			EISYear:           vc.EISYear,
			Capacity:          v.Capacity,
			AnnualProduction:  v.AnnualProduction,
			Lifespan:          v.Lifespan,
			LifetimeCost:      dto.Number(vc.LifetimeCost),
		}
		if co2 != nil && i < len(co2.Vintages) {
			summary.CO2Factor = dto.Number(co2.Vintages[i].Factor.At(vc.EISYear))
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
