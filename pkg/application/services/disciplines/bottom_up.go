package disciplines

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/application/services/vintage"
	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// Technology parameter fields of a bottom-up pathway
const (
	LoadFactorField         = "load_factor" // %
	LifespanField           = "lifespan"
	ConstructionTimeField   = "construction_time"
	CapexField              = "capex"         // € per MJ/day
	FixedOpexField          = "fixed_opex"    // € per MJ/day per year
	VariableOpexField       = "variable_opex" // €/MJ
	SpecificConsumption     = "specific_consumption"
	IntroductionYearField   = "introduction_year"
	IntroductionVolumeField = "introduction_volume" // MJ
)

// BottomUpOptions configures a bottom-up pathway
type BottomUpOptions struct {
	// Reference is the pathway abatement costs are measured against; nil
	// disables the abatement outputs
	Reference *entities.Pathway
	// HistoricRamp rebuilds the installed base from the introduction year
	// and volume instead of treating historic demand as planned capacity
	HistoricRamp bool
}

// BottomUpReport is the vintage detail of the latest computation
type BottomUpReport struct {
	Plan      *vintage.CapacityPlan
	Costs     *vintage.CostResult
	Emissions map[string]*vintage.EmissionResult
	Abatement *vintage.AbatementResult
}

// BottomUpPathway builds the capacity a pathway needs to cover its demand and
// derives unit costs and emission factors from the resulting vintages
type BottomUpPathway struct {
	timeIndex entities.TimeIndex
	pathway   *entities.Pathway
	options   BottomUpOptions
	planner   *vintage.CapacityPlanner
	emissions *vintage.EmissionEngine
	desc      mda.Descriptor

	mutex  sync.RWMutex
	report *BottomUpReport
}

// NewBottomUpPathway creates the discipline for p
func NewBottomUpPathway(timeIndex entities.TimeIndex, p *entities.Pathway, options BottomUpOptions) (*BottomUpPathway, error) {
	if p.Model != entities.BottomUp {
		return nil, fmt.Errorf("pathway %s is %s, not bottom-up", p.Name, p.Model)
	}
	if options.Reference != nil && options.Reference.Name == p.Name {
		options.Reference = nil
	}
	emissions, err := vintage.NewEmissionEngine(timeIndex)
	if err != nil {
		return nil, err
	}

	d := &BottomUpPathway{
		timeIndex: timeIndex,
		pathway:   p,
		options:   options,
		planner:   vintage.NewCapacityPlanner(),
		emissions: emissions,
	}
	d.desc = d.describe()
	return d, nil
}

func (d *BottomUpPathway) describe() mda.Descriptor {
	p := d.pathway
	inputs := []mda.Port{
		mda.SeriesPort(p.Var("energy_consumption")),
		mda.ScalarPort(p.Var(LoadFactorField)),
		mda.ScalarPort(p.Var(LifespanField)),
		mda.ScalarPort(p.Var(ConstructionTimeField)),
		mda.SeriesPort(p.Var(CapexField)),
		mda.SeriesPort(p.Var(FixedOpexField)),
		mda.SeriesPort(p.Var(VariableOpexField)),
		mda.ScalarPort(PrivateDiscountRate),
	}
	if d.options.HistoricRamp {
		inputs = append(inputs,
			mda.ScalarPort(p.Var(IntroductionYearField)),
			mda.ScalarPort(p.Var(IntroductionVolumeField)),
		)
	}
	outputs := []mda.Port{
		mda.SeriesPort(p.Var("new_capacity")),
		mda.SeriesPort(p.Var("available_capacity")),
		mda.SeriesPort(p.Var("utilization")),
		mda.SeriesPort(p.Var("mean_unit_cost")),
		mda.SeriesPort(p.Var("marginal_unit_cost")),
		mda.SeriesPort(p.Var("mean_capex")),
		mda.SeriesPort(p.Var("mean_opex")),
		mda.SeriesPort(p.Var("mean_resource_cost")),
		mda.SeriesPort(p.Var("mean_process_cost")),
	}

	for _, r := range p.Resources {
		inputs = append(inputs,
			mda.SeriesPort(p.ResourceVar(r, SpecificConsumption)),
			mda.SeriesPort(ResourcePrice(r)),
		)
		outputs = append(outputs,
			mda.SeriesPort(p.ResourceVar(r, "consumption")),
			mda.AggregatePort(ResourceConsumption(r)),
		)
	}
	for _, q := range p.Processes {
		inputs = append(inputs, mda.SeriesPort(ProcessUnitCost(q)))
	}

	for _, species := range p.AllSpecies() {
		inputs = append(inputs, mda.SeriesPort(p.Var(species+"_emission_factor")))
		for _, r := range p.Resources {
			inputs = append(inputs, mda.SeriesPort(ResourceEmissionFactor(r, species)))
		}
		for _, q := range p.Processes {
			inputs = append(inputs, mda.SeriesPort(ProcessEmissionFactor(q, species)))
		}
		outputs = append(outputs,
			mda.SeriesPort(p.Var(species+"_mean_emission_factor")),
			mda.SeriesPort(p.Var(species+"_marginal_emission_factor")),
			mda.SeriesPort(p.Var(species+"_emissions")),
			mda.AggregatePort(SpeciesEmissions(species)),
		)
	}

	if ref := d.options.Reference; ref != nil {
		inputs = append(inputs,
			mda.SeriesPort(ref.Var("mean_unit_cost")),
			mda.SeriesPort(ref.Var(CO2+"_mean_emission_factor")),
			mda.ScalarPort(SocialDiscountRate),
			mda.SeriesPort(CarbonValue),
		)
		outputs = append(outputs,
			mda.SeriesPort(p.Var("abatement_cost")),
			mda.SeriesPort(p.Var("specific_abatement_cost")),
			mda.SeriesPort(p.Var("generic_specific_abatement_cost")),
		)
	}

	return mda.Descriptor{Name: "pathway:" + p.Name, Inputs: inputs, Outputs: outputs}
}

var _ mda.Discipline = (*BottomUpPathway)(nil)

func (d *BottomUpPathway) Descriptor() mda.Descriptor { return d.desc }

// Report returns the vintage detail of the latest computation, nil before
// the first one
func (d *BottomUpPathway) Report() *BottomUpReport {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.report
}

func (d *BottomUpPathway) Compute(ctx context.Context, in mda.Inputs) (map[string]entities.Value, error) {
	p := d.pathway
	ti := d.timeIndex

	consumption := in.Series(p.Var("energy_consumption")).Reindex(ti.HistoricStartYear, ti.EndYear, 0)
	demand := consumption
	if d.options.HistoricRamp {
		ramped, err := vintage.HistoricRamp(
			demand,
			ti,
			int(math.Round(in.Scalar(p.Var(IntroductionYearField)))),
			in.Scalar(p.Var(IntroductionVolumeField)),
		)
		if err != nil {
			return nil, err
		}
		demand = ramped
	}

	plan, err := d.planner.Plan(
		p.Name,
		demand,
		in.Scalar(p.Var(LoadFactorField))/100,
		int(math.Round(in.Scalar(p.Var(LifespanField)))),
	)
	if err != nil {
		return nil, err
	}

	costEngine, err := vintage.NewCostEngine(ti, in.Scalar(PrivateDiscountRate))
	if err != nil {
		return nil, err
	}
	costs, err := costEngine.Compute(plan, d.technologyCosts(in))
	if err != nil {
		return nil, err
	}

	out := map[string]entities.Value{
		p.Var("new_capacity"):       entities.SeriesValue(plan.NewCapacity.Clone()),
		p.Var("available_capacity"): entities.SeriesValue(plan.Available.Clone()),
		p.Var("utilization"):        entities.SeriesValue(plan.Utilization.Clone()),
		p.Var("mean_unit_cost"):     entities.SeriesValue(costs.MeanUnitCost),
		p.Var("marginal_unit_cost"): entities.SeriesValue(costs.MarginalUnitCost),
		p.Var("mean_capex"):         entities.SeriesValue(costs.MeanCapex),
		p.Var("mean_opex"):          entities.SeriesValue(costs.MeanOpex),
		p.Var("mean_resource_cost"): entities.SeriesValue(costs.MeanResources),
		p.Var("mean_process_cost"):  entities.SeriesValue(costs.MeanProcesses),
	}

	for _, r := range p.Resources {
		use := d.resourceUse(plan, in.Series(p.ResourceVar(r, SpecificConsumption)))
		out[p.ResourceVar(r, "consumption")] = entities.SeriesValue(use)
		out[ResourceConsumption(r)] = entities.SeriesValue(use.Clone())
	}

	report := &BottomUpReport{
		Plan:      plan,
		Costs:     costs,
		Emissions: make(map[string]*vintage.EmissionResult, len(p.AllSpecies())),
	}
	for _, species := range p.AllSpecies() {
		result, err := d.emissions.Compute(plan, d.technologyEmissions(in, species), consumption)
		if err != nil {
			return nil, err
		}
		report.Emissions[species] = result
		tonnes := result.Total.Scale(1 / gramsPerTonne)

		out[p.Var(species+"_mean_emission_factor")] = entities.SeriesValue(result.MeanFactor)
		out[p.Var(species+"_marginal_emission_factor")] = entities.SeriesValue(result.MarginalFactor)
		out[p.Var(species+"_emissions")] = entities.SeriesValue(tonnes)
		out[SpeciesEmissions(species)] = entities.SeriesValue(tonnes.Clone())
	}

	if ref := d.options.Reference; ref != nil {
		abatement := vintage.ComputeAbatement(costs, report.Emissions[CO2], vintage.AbatementReference{
			UnitCost:           in.Series(ref.Var("mean_unit_cost")),
			EmissionFactor:     in.Series(ref.Var(CO2 + "_mean_emission_factor")),
			SocialDiscountRate: in.Scalar(SocialDiscountRate),
			CarbonValue:        in.Series(CarbonValue),
		})
		report.Abatement = abatement
		out[p.Var("abatement_cost")] = entities.SeriesValue(abatement.AbatementCost)
		out[p.Var("specific_abatement_cost")] = entities.SeriesValue(abatement.SpecificAbatementCost)
		out[p.Var("generic_specific_abatement_cost")] = entities.SeriesValue(abatement.GenericSpecificAbatementCost)
	}

	d.mutex.Lock()
	d.report = report
	d.mutex.Unlock()
	return out, nil
}

func (d *BottomUpPathway) technologyCosts(in mda.Inputs) vintage.TechnologyCosts {
	p := d.pathway
	tech := vintage.TechnologyCosts{
		Capex:            in.Series(p.Var(CapexField)),
		FixedOpex:        in.Series(p.Var(FixedOpexField)),
		VariableOpex:     in.Series(p.Var(VariableOpexField)),
		ConstructionTime: int(math.Round(in.Scalar(p.Var(ConstructionTimeField)))),
	}
	for _, r := range p.Resources {
		tech.Resources = append(tech.Resources, vintage.ResourceCost{
			Name:                r,
			SpecificConsumption: in.Series(p.ResourceVar(r, SpecificConsumption)),
			Price:               in.Series(ResourcePrice(r)),
		})
	}
	for _, q := range p.Processes {
		tech.Processes = append(tech.Processes, vintage.ProcessCost{
			Name:     q,
			UnitCost: in.Series(ProcessUnitCost(q)),
		})
	}
	return tech
}

func (d *BottomUpPathway) technologyEmissions(in mda.Inputs, species string) vintage.TechnologyEmissions {
	p := d.pathway
	tech := vintage.TechnologyEmissions{
		Species:    species,
		CoreFactor: in.Series(p.Var(species + "_emission_factor")),
	}
	for _, r := range p.Resources {
		tech.Resources = append(tech.Resources, vintage.ResourceEmission{
			Name:                r,
			SpecificConsumption: in.Series(p.ResourceVar(r, SpecificConsumption)),
			EmissionFactor:      in.Series(ResourceEmissionFactor(r, species)),
		})
	}
	for _, q := range p.Processes {
		tech.Processes = append(tech.Processes, vintage.ProcessEmission{
			Name:           q,
			EmissionFactor: in.Series(ProcessEmissionFactor(q, species)),
		})
	}
	return tech
}

// resourceUse sums the production of every vintage times its specific
// consumption frozen at the vintage's EIS year
func (d *BottomUpPathway) resourceUse(plan *vintage.CapacityPlan, specific entities.TimeSeries) entities.TimeSeries {
	use := d.timeIndex.ZeroSeries()
	for _, v := range plan.Vintages {
		sc := specific.At(v.EISYear(d.timeIndex.ProspectionStartYear))
		if math.IsNaN(sc) {
			continue
		}
		use = use.Add(plan.Production(v).Scale(sc))
	}
	return use
}
