package disciplines

import (
	"context"
	"math"

	"github.com/vsinha/aerosim/pkg/application/services/fleet"
	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// FleetDiscipline turns the ASK flown by one category into energy demand per
// carrier, non-energy operating costs and emission indices
type FleetDiscipline struct {
	timeIndex entities.TimeIndex
	renewed   *fleet.CategoryFleet
	desc      mda.Descriptor
}

// NewFleetDiscipline renews category over the full time index. The renewal
// only depends on configuration and is computed once here.
func NewFleetDiscipline(timeIndex entities.TimeIndex, category entities.Category) (*FleetDiscipline, error) {
	model, err := fleet.NewRenewalModel(timeIndex.HistoricStartYear, timeIndex.EndYear)
	if err != nil {
		return nil, err
	}
	renewed, err := model.Renew(category)
	if err != nil {
		return nil, err
	}

	outputs := []mda.Port{
		mda.SeriesPort(entities.FleetKey{Category: category.Name, Field: "energy_per_ask"}.String()),
		mda.AggregatePort(DOCNonEnergy),
	}
	for _, g := range renewed.Generations {
		outputs = append(outputs, mda.SeriesPort(g.Key.String()))
	}
	for _, energy := range entities.EnergyTypes {
		outputs = append(outputs,
			mda.SeriesPort(CategoryEnergyKey(category.Name, energy, "share").String()),
			mda.SeriesPort(CategoryEnergyKey(category.Name, energy, "energy_consumption").String()),
			mda.SeriesPort(CategoryEnergyKey(category.Name, energy, "emission_index_nox").String()),
			mda.SeriesPort(CategoryEnergyKey(category.Name, energy, "emission_index_soot").String()),
			mda.AggregatePort(EnergyConsumption(energy)),
		)
	}

	return &FleetDiscipline{
		timeIndex: timeIndex,
		renewed:   renewed,
		desc: mda.Descriptor{
			Name: "fleet:" + category.Name,
			Inputs: []mda.Port{
				mda.SeriesPort(ASK),
				mda.SeriesPort(CategoryTrafficShare(category.Name)),
			},
			Outputs: outputs,
		},
	}, nil
}

var _ mda.Discipline = (*FleetDiscipline)(nil)

func (d *FleetDiscipline) Descriptor() mda.Descriptor { return d.desc }

// Fleet returns the renewed category
func (d *FleetDiscipline) Fleet() *fleet.CategoryFleet { return d.renewed }

func (d *FleetDiscipline) Compute(ctx context.Context, in mda.Inputs) (map[string]entities.Value, error) {
	name := d.renewed.Category
	ask := in.Series(ASK)
	trafficShare := in.Series(CategoryTrafficShare(name))

	categoryASK := d.timeIndex.ZeroSeries().Map(func(year int, _ float64) float64 {
		return ask.At(year) * trafficShare.At(year) / 100
	})

	out := map[string]entities.Value{
		entities.FleetKey{Category: name, Field: "energy_per_ask"}.String(): entities.SeriesValue(d.renewed.EnergyPerASK.Clone()),
		DOCNonEnergy: entities.SeriesValue(product(categoryASK, d.renewed.DOCNonEnergy)),
	}
	for _, g := range d.renewed.Generations {
		out[g.Key.String()] = entities.SeriesValue(g.Share.Clone())
	}

	for _, energy := range entities.EnergyTypes {
		byEnergy := d.renewed.ByEnergy[energy]
		energyASK := categoryASK.Map(func(year int, v float64) float64 {
			return v * byEnergy.Share.At(year) / 100
		})
		consumption := product(energyASK, byEnergy.EnergyPerASK)

		out[CategoryEnergyKey(name, energy, "share").String()] = entities.SeriesValue(byEnergy.Share.Clone())
		out[CategoryEnergyKey(name, energy, "energy_consumption").String()] = entities.SeriesValue(consumption)
		out[CategoryEnergyKey(name, energy, "emission_index_nox").String()] = entities.SeriesValue(byEnergy.EmissionIndexNOx.Clone())
		out[CategoryEnergyKey(name, energy, "emission_index_soot").String()] = entities.SeriesValue(byEnergy.EmissionIndexSoot.Clone())
		out[EnergyConsumption(energy)] = entities.SeriesValue(consumption.Clone())
	}
	return out, nil
}

// product multiplies a quantity by a factor; a zero quantity gives zero
// even when the factor is undefined
func product(quantity, factor entities.TimeSeries) entities.TimeSeries {
	return quantity.Map(func(year int, q float64) float64 {
		if q == 0 {
			return 0
		}
		return q * factor.At(year)
	})
}

// safeRatio returns numerator/denominator, NaN when the denominator is not positive
func safeRatio(numerator, denominator float64) float64 {
	if denominator <= 0 || math.IsNaN(denominator) {
		return math.NaN()
	}
	return numerator / denominator
}
