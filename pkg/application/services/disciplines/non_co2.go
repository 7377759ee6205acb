package disciplines

import (
	"context"

	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// Lower heating values in MJ/kg
var lowerHeatingValue = map[entities.EnergyType]float64{
	entities.DropInFuel: 43.0,
	entities.Hydrogen:   120.0,
}

// NonCO2Discipline converts fleet energy use into NOx and soot emissions and
// their effective radiative forcing
type NonCO2Discipline struct {
	timeIndex  entities.TimeIndex
	categories []string
	desc       mda.Descriptor
}

// NewNonCO2Discipline creates the discipline over the given fleet categories
func NewNonCO2Discipline(timeIndex entities.TimeIndex, categories []string) *NonCO2Discipline {
	inputs := []mda.Port{
		mda.ScalarPort(NOxERFCoefficient),
		mda.ScalarPort(SootERFCoefficient),
	}
	for _, category := range categories {
		for _, energy := range entities.EnergyTypes {
			inputs = append(inputs,
				mda.SeriesPort(CategoryEnergyKey(category, energy, "energy_consumption").String()),
				mda.SeriesPort(CategoryEnergyKey(category, energy, "emission_index_nox").String()),
				mda.SeriesPort(CategoryEnergyKey(category, energy, "emission_index_soot").String()),
			)
		}
	}

	return &NonCO2Discipline{
		timeIndex:  timeIndex,
		categories: append([]string(nil), categories...),
		desc: mda.Descriptor{
			Name:   "non_co2",
			Inputs: inputs,
			Outputs: []mda.Port{
				mda.SeriesPort(NOxEmissions),
				mda.SeriesPort(SootEmissions),
				mda.SeriesPort(NOxERF),
				mda.SeriesPort(SootERF),
			},
		},
	}
}

var _ mda.Discipline = (*NonCO2Discipline)(nil)

func (d *NonCO2Discipline) Descriptor() mda.Descriptor { return d.desc }

func (d *NonCO2Discipline) Compute(ctx context.Context, in mda.Inputs) (map[string]entities.Value, error) {
	nox := d.timeIndex.ZeroSeries()
	soot := d.timeIndex.ZeroSeries()

	for _, category := range d.categories {
		for _, energy := range entities.EnergyTypes {
			energyUse := in.Series(CategoryEnergyKey(category, energy, "energy_consumption").String())
			fuelMass := energyUse.Scale(1 / lowerHeatingValue[energy])

			nox = nox.Add(product(fuelMass, in.Series(CategoryEnergyKey(category, energy, "emission_index_nox").String())))
			soot = soot.Add(product(fuelMass, in.Series(CategoryEnergyKey(category, energy, "emission_index_soot").String())))
		}
	}

	// Coefficients are mW/m² per Tg emitted
	const kgPerTg = 1e9
	return map[string]entities.Value{
		NOxEmissions:  entities.SeriesValue(nox),
		SootEmissions: entities.SeriesValue(soot),
		NOxERF:        entities.SeriesValue(nox.Scale(in.Scalar(NOxERFCoefficient) / kgPerTg)),
		SootERF:       entities.SeriesValue(soot.Scale(in.Scalar(SootERFCoefficient) / kgPerTg)),
	}, nil
}
