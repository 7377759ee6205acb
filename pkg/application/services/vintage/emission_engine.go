package vintage

import (
	"fmt"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// ResourceEmission links a consumed resource to its emission factor
type ResourceEmission struct {
	Name string
	// SpecificConsumption is resource units per MJ, read at the EIS year
	SpecificConsumption entities.TimeSeries
	// EmissionFactor is g per resource unit and varies every year
	EmissionFactor entities.TimeSeries
}

// ProcessEmission is a downstream process adding a per-MJ factor frozen at EIS
type ProcessEmission struct {
	Name           string
	EmissionFactor entities.TimeSeries
}

// TechnologyEmissions are the emission curves of one species for one pathway
type TechnologyEmissions struct {
	Species    string
	CoreFactor entities.TimeSeries // g/MJ, read at the EIS year
	Resources  []ResourceEmission
	Processes  []ProcessEmission
}

// VintageEmission is the emission factor table of one vintage
type VintageEmission struct {
	Vintage   *entities.Vintage
	EISYear   int
	Core      float64
	Processes float64
	// Factor is defined from commissioning through the last operating year
	Factor entities.TimeSeries
}

// EmissionResult aggregates the vintages of one pathway for one species
type EmissionResult struct {
	Species        string
	Vintages       []*VintageEmission
	MeanFactor     entities.TimeSeries
	MarginalFactor entities.TimeSeries
	// Total is MeanFactor times consumption, in g
	Total entities.TimeSeries
}

// EmissionEngine computes per-vintage emission factors
type EmissionEngine struct {
	timeIndex entities.TimeIndex
}

// NewEmissionEngine creates an emission engine
func NewEmissionEngine(timeIndex entities.TimeIndex) (*EmissionEngine, error) {
	if err := timeIndex.Validate(); err != nil {
		return nil, err
	}
	return &EmissionEngine{timeIndex: timeIndex}, nil
}

// Compute builds every vintage's factor and the mean, marginal and total
// emissions for consumption (MJ/yr)
func (e *EmissionEngine) Compute(
	plan *CapacityPlan,
	tech TechnologyEmissions,
	consumption entities.TimeSeries,
) (*EmissionResult, error) {
	start, end := plan.Demand.Start(), plan.Demand.End()
	result := &EmissionResult{
		Species:  tech.Species,
		Vintages: make([]*VintageEmission, 0, len(plan.Vintages)),
	}

	factors := make([]contribution, 0, len(plan.Vintages))
	for _, v := range plan.Vintages {
		ve, err := e.vintageFactor(v, tech, start, end)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tech.Species, err)
		}
		result.Vintages = append(result.Vintages, ve)
		factors = append(factors, contribution{
			commissioning: v.CommissioningYear,
			capacity:      v.Capacity,
			series:        ve.Factor,
		})
	}

	result.MeanFactor = capacityWeightedMean(factors, start, end)
	result.MarginalFactor = latest(factors, start, end)
	result.Total = weightedTotal(result.MeanFactor, consumption.Reindex(start, end, 0))
	return result, nil
}

func (e *EmissionEngine) vintageFactor(
	v *entities.Vintage,
	tech TechnologyEmissions,
	start, end int,
) (*VintageEmission, error) {
	eis := v.EISYear(e.timeIndex.ProspectionStartYear)

	core, err := valueAt(tech.CoreFactor, eis, "emission factor")
	if err != nil {
		return nil, err
	}
	ve := &VintageEmission{
		Vintage: v,
		EISYear: eis,
		Core:    core,
		Factor:  entities.NewNaNSeries(start, end),
	}
	for _, p := range tech.Processes {
		f, err := valueAt(p.EmissionFactor, eis, p.Name+" emission factor")
		if err != nil {
			return nil, err
		}
		ve.Processes += f
	}

	consumptions := make([]float64, len(tech.Resources))
	for i, r := range tech.Resources {
		sc, err := valueAt(r.SpecificConsumption, eis, r.Name+" specific consumption")
		if err != nil {
			return nil, err
		}
		consumptions[i] = sc
	}

	last := v.LastOperatingYear()
	if last > end {
		last = end
	}
	for year := v.CommissioningYear; year <= last; year++ {
		factor := ve.Core + ve.Processes
		for i, r := range tech.Resources {
			factor += consumptions[i] * r.EmissionFactor.At(year)
		}
		ve.Factor.Set(year, factor)
	}
	return ve, nil
}
