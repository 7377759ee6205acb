package disciplines

import (
	"context"

	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// gramsPerTonne converts g/MJ × MJ into tonnes
const gramsPerTonne = 1e6

// TopDownPathway prices a pathway from an exogenous minimum fuel selling
// price and exogenous emission factors
type TopDownPathway struct {
	pathway *entities.Pathway
	desc    mda.Descriptor
}

// NewTopDownPathway creates the discipline for p
func NewTopDownPathway(p *entities.Pathway) *TopDownPathway {
	inputs := []mda.Port{
		mda.SeriesPort(p.Var("energy_consumption")),
		mda.SeriesPort(p.Var("mfsp")),
	}
	outputs := []mda.Port{
		mda.SeriesPort(p.Var("mean_unit_cost")),
		mda.SeriesPort(p.Var("marginal_unit_cost")),
	}
	for _, species := range p.AllSpecies() {
		inputs = append(inputs, mda.SeriesPort(p.Var(species+"_emission_factor")))
		outputs = append(outputs,
			mda.SeriesPort(p.Var(species+"_mean_emission_factor")),
			mda.SeriesPort(p.Var(species+"_emissions")),
			mda.AggregatePort(SpeciesEmissions(species)),
		)
	}

	return &TopDownPathway{
		pathway: p,
		desc: mda.Descriptor{
			Name:    "pathway:" + p.Name,
			Inputs:  inputs,
			Outputs: outputs,
		},
	}
}

var _ mda.Discipline = (*TopDownPathway)(nil)

func (d *TopDownPathway) Descriptor() mda.Descriptor { return d.desc }

func (d *TopDownPathway) Compute(ctx context.Context, in mda.Inputs) (map[string]entities.Value, error) {
	p := d.pathway
	consumption := in.Series(p.Var("energy_consumption"))
	mfsp := in.Series(p.Var("mfsp"))

	out := map[string]entities.Value{
		p.Var("mean_unit_cost"):     entities.SeriesValue(mfsp),
		p.Var("marginal_unit_cost"): entities.SeriesValue(mfsp.Clone()),
	}
	for _, species := range p.AllSpecies() {
		factor := in.Series(p.Var(species + "_emission_factor"))
		emissions := product(consumption, factor).Scale(1 / gramsPerTonne)

		out[p.Var(species+"_mean_emission_factor")] = entities.SeriesValue(factor)
		out[p.Var(species+"_emissions")] = entities.SeriesValue(emissions)
		out[SpeciesEmissions(species)] = entities.SeriesValue(emissions.Clone())
	}
	return out, nil
}
