package disciplines

import (
	"context"
	"fmt"
	"math"

	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// TrafficDiscipline projects passenger traffic from its historic level and a
// yearly growth rate. With price elasticity enabled, prospective traffic is
// scaled by the airfare relative to its last historic level, which closes a
// loop through the fleet, energy and cost disciplines.
type TrafficDiscipline struct {
	timeIndex  entities.TimeIndex
	elasticity bool
	desc       mda.Descriptor
}

// NewTrafficDiscipline creates the traffic discipline
func NewTrafficDiscipline(timeIndex entities.TimeIndex, withElasticity bool) *TrafficDiscipline {
	inputs := []mda.Port{
		mda.SeriesPort(RPKInit),
		mda.SeriesPort(RPKGrowthRate),
		mda.SeriesPort(LoadFactor),
	}
	if withElasticity {
		inputs = append(inputs,
			mda.ScalarPort(PriceElasticity),
			mda.SeriesPort(AirfarePerRPK).WithDefault(entities.SeriesValue(entities.TimeSeries{})),
		)
	}
	return &TrafficDiscipline{
		timeIndex:  timeIndex,
		elasticity: withElasticity,
		desc: mda.Descriptor{
			Name:    "traffic",
			Inputs:  inputs,
			Outputs: []mda.Port{mda.SeriesPort(RPK), mda.SeriesPort(ASK)},
		},
	}
}

var _ mda.Discipline = (*TrafficDiscipline)(nil)

func (d *TrafficDiscipline) Descriptor() mda.Descriptor { return d.desc }

func (d *TrafficDiscipline) Compute(ctx context.Context, in mda.Inputs) (map[string]entities.Value, error) {
	ti := d.timeIndex
	initial := in.Series(RPKInit)
	growth := in.Series(RPKGrowthRate)
	loadFactor := in.Series(LoadFactor)

	lastHistoric := ti.LastHistoricYear()
	if math.IsNaN(initial.At(lastHistoric)) {
		return nil, fmt.Errorf("%s must be defined in %d", RPKInit, lastHistoric)
	}

	rpk := ti.NaNSeries()
	for year := ti.HistoricStartYear; year <= lastHistoric; year++ {
		rpk.Set(year, initial.At(year))
	}
	for year := ti.ProspectionStartYear; year <= ti.EndYear; year++ {
		rpk.Set(year, rpk.At(year-1)*(1+growth.At(year)/100))
	}

	if d.elasticity {
		rpk = d.applyElasticity(rpk, in.Series(AirfarePerRPK), in.Scalar(PriceElasticity))
	}

	ask := rpk.Map(func(year int, v float64) float64 {
		lf := loadFactor.At(year)
		if lf <= 0 || math.IsNaN(lf) {
			return math.NaN()
		}
		return v / (lf / 100)
	})

	return map[string]entities.Value{
		RPK: entities.SeriesValue(rpk),
		ASK: entities.SeriesValue(ask),
	}, nil
}

// applyElasticity scales prospective traffic by (airfare / reference)^e.
// Years without an airfare yet keep a multiplier of 1.
func (d *TrafficDiscipline) applyElasticity(rpk, airfare entities.TimeSeries, elasticity float64) entities.TimeSeries {
	reference := airfare.At(d.timeIndex.LastHistoricYear())
	if math.IsNaN(elasticity) || math.IsNaN(reference) || reference <= 0 {
		return rpk
	}
	return rpk.Map(func(year int, v float64) float64 {
		if d.timeIndex.IsHistoric(year) {
			return v
		}
		fare := airfare.At(year)
		if math.IsNaN(fare) || fare <= 0 {
			return v
		}
		return v * math.Pow(fare/reference, elasticity)
	})
}
