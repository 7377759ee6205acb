package disciplines

import (
	"context"
	"sync"

	"github.com/vsinha/aerosim/pkg/application/services/costs"
	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// ScenarioCostsDiscipline totals the energy expenditure of every pathway,
// compares it to buying the same energy at the baseline's cost and prices
// CO2 emissions at the carbon price
type ScenarioCostsDiscipline struct {
	timeIndex entities.TimeIndex
	pathways  []*entities.Pathway
	baseline  *entities.Pathway
	desc      mda.Descriptor

	mutex sync.RWMutex
	last  *costs.ScenarioCosts
}

// NewScenarioCostsDiscipline creates the cost aggregation over pathways
func NewScenarioCostsDiscipline(timeIndex entities.TimeIndex, pathways []*entities.Pathway, baseline *entities.Pathway) *ScenarioCostsDiscipline {
	inputs := []mda.Port{
		mda.ScalarPort(SocialDiscountRate),
		mda.SeriesPort(CarbonPrice),
		mda.SeriesPort(SpeciesEmissions(CO2)),
	}
	baselineListed := false
	for _, p := range pathways {
		inputs = append(inputs,
			mda.SeriesPort(p.Var("energy_consumption")),
			mda.SeriesPort(p.Var("mean_unit_cost")),
		)
		if p.Name == baseline.Name {
			baselineListed = true
		}
	}
	if !baselineListed {
		inputs = append(inputs, mda.SeriesPort(baseline.Var("mean_unit_cost")))
	}

	return &ScenarioCostsDiscipline{
		timeIndex: timeIndex,
		pathways:  pathways,
		baseline:  baseline,
		desc: mda.Descriptor{
			Name:   "scenario_costs",
			Inputs: inputs,
			Outputs: []mda.Port{
				mda.SeriesPort(EnergyExpenditure),
				mda.SeriesPort(DiscountedEnergyExpenditure),
				mda.SeriesPort(BAUEnergyExpenditure),
				mda.SeriesPort(ExtraEnergyExpenditure),
				mda.SeriesPort(CarbonTax),
				mda.ScalarPort(CumulativeExpenditure),
				mda.ScalarPort(CumulativeDiscounted),
				mda.ScalarPort(CumulativeExtraExpenditure),
				mda.ScalarPort(CumulativeCarbonTax),
			},
		},
	}
}

var _ mda.Discipline = (*ScenarioCostsDiscipline)(nil)

func (d *ScenarioCostsDiscipline) Descriptor() mda.Descriptor { return d.desc }

// Costs returns the breakdown of the latest computation, nil before the first one
func (d *ScenarioCostsDiscipline) Costs() *costs.ScenarioCosts {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.last
}

func (d *ScenarioCostsDiscipline) Compute(ctx context.Context, in mda.Inputs) (map[string]entities.Value, error) {
	aggregator, err := costs.NewAggregator(d.timeIndex, in.Scalar(SocialDiscountRate))
	if err != nil {
		return nil, err
	}

	expenditures := make([]costs.PathwayExpenditure, 0, len(d.pathways))
	for _, p := range d.pathways {
		expenditures = append(expenditures, costs.PathwayExpenditure{
			Pathway:     p.Name,
			UnitCost:    in.Series(p.Var("mean_unit_cost")),
			Consumption: in.Series(p.Var("energy_consumption")),
		})
	}

	result, err := aggregator.Aggregate(
		expenditures,
		in.Series(d.baseline.Var("mean_unit_cost")),
		costs.CarbonTaxInput{Price: in.Series(CarbonPrice), CO2: in.Series(SpeciesEmissions(CO2))},
	)
	if err != nil {
		return nil, err
	}

	d.mutex.Lock()
	d.last = result
	d.mutex.Unlock()

	summary := result.Summary
	return map[string]entities.Value{
		EnergyExpenditure:           entities.SeriesValue(result.Expenditure.Clone()),
		DiscountedEnergyExpenditure: entities.SeriesValue(result.DiscountedExpenditure.Clone()),
		BAUEnergyExpenditure:        entities.SeriesValue(result.BAUExpenditure.Clone()),
		ExtraEnergyExpenditure:      entities.SeriesValue(result.ExtraExpenditure.Clone()),
		CarbonTax:                   entities.SeriesValue(result.CarbonTax.Clone()),
		CumulativeExpenditure:       entities.ScalarValue(summary.Expenditure.InexactFloat64()),
		CumulativeDiscounted:        entities.ScalarValue(summary.DiscountedExpenditure.InexactFloat64()),
		CumulativeExtraExpenditure:  entities.ScalarValue(summary.ExtraExpenditure.InexactFloat64()),
		CumulativeCarbonTax:         entities.ScalarValue(summary.CarbonTax.InexactFloat64()),
	}, nil
}
