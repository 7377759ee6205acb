package disciplines

import (
	"context"
	"fmt"
	"math"

	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// CarrierDiscipline averages the unit cost and CO2 factor of a carrier's
// pathways, weighted by the energy each one supplies
type CarrierDiscipline struct {
	timeIndex entities.TimeIndex
	carrier   entities.EnergyType
	pathways  []*entities.Pathway
	desc      mda.Descriptor
}

// NewCarrierDiscipline creates the aggregation for carrier
func NewCarrierDiscipline(timeIndex entities.TimeIndex, carrier entities.EnergyType, pathways []*entities.Pathway) (*CarrierDiscipline, error) {
	if len(pathways) == 0 {
		return nil, fmt.Errorf("carrier %s has no pathways", carrier)
	}
	inputs := make([]mda.Port, 0, 3*len(pathways))
	for _, p := range pathways {
		inputs = append(inputs,
			mda.SeriesPort(p.Var("energy_consumption")),
			mda.SeriesPort(p.Var("mean_unit_cost")),
			mda.SeriesPort(p.Var(CO2+"_mean_emission_factor")),
		)
	}
	return &CarrierDiscipline{
		timeIndex: timeIndex,
		carrier:   carrier,
		pathways:  pathways,
		desc: mda.Descriptor{
			Name:   "carrier:" + carrier.String(),
			Inputs: inputs,
			Outputs: []mda.Port{
				mda.SeriesPort(CarrierMeanUnitCost(carrier)),
				mda.SeriesPort(CarrierEmissionFactor(carrier)),
			},
		},
	}, nil
}

var _ mda.Discipline = (*CarrierDiscipline)(nil)

func (d *CarrierDiscipline) Descriptor() mda.Descriptor { return d.desc }

func (d *CarrierDiscipline) Compute(ctx context.Context, in mda.Inputs) (map[string]entities.Value, error) {
	type pathwaySeries struct {
		consumption, cost, factor entities.TimeSeries
	}
	series := make([]pathwaySeries, len(d.pathways))
	for i, p := range d.pathways {
		series[i] = pathwaySeries{
			consumption: in.Series(p.Var("energy_consumption")),
			cost:        in.Series(p.Var("mean_unit_cost")),
			factor:      in.Series(p.Var(CO2 + "_mean_emission_factor")),
		}
	}

	cost := d.timeIndex.NaNSeries()
	factor := d.timeIndex.NaNSeries()
	for year := d.timeIndex.HistoricStartYear; year <= d.timeIndex.EndYear; year++ {
		var total, weightedCost, weightedFactor float64
		for _, s := range series {
			q := s.consumption.At(year)
			if q <= 0 || math.IsNaN(q) {
				continue
			}
			total += q
			weightedCost += q * s.cost.At(year)
			weightedFactor += q * s.factor.At(year)
		}
		cost.Set(year, safeRatio(weightedCost, total))
		factor.Set(year, safeRatio(weightedFactor, total))
	}

	return map[string]entities.Value{
		CarrierMeanUnitCost(d.carrier):   entities.SeriesValue(cost),
		CarrierEmissionFactor(d.carrier): entities.SeriesValue(factor),
	}, nil
}
