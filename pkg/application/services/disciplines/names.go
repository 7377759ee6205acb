package disciplines

import "github.com/vsinha/aerosim/pkg/domain/entities"

// Scenario-wide variable names
const (
	RPKInit         = "rpk_init"
	RPKGrowthRate   = "rpk_growth_rate" // %/yr
	LoadFactor      = "load_factor"     // %
	RPK             = "rpk"
	ASK             = "ask"
	PriceElasticity = "price_elasticity"
	AirfarePerRPK   = "airfare_per_rpk" // €/RPK
	AirfareMargin   = "airfare_margin"  // %
	DOCNonEnergy    = "doc_non_energy"  // €

	PrivateDiscountRate = "private_discount_rate"
	SocialDiscountRate  = "social_discount_rate"
	CarbonPrice         = "carbon_price" // €/tCO2
	CarbonValue         = "carbon_value" // €/tCO2

	EnergyExpenditure           = "energy_expenditure"
	DiscountedEnergyExpenditure = "discounted_energy_expenditure"
	BAUEnergyExpenditure        = "bau_energy_expenditure"
	ExtraEnergyExpenditure      = "extra_energy_expenditure"
	CarbonTax                   = "carbon_tax"
	CumulativeExpenditure       = "cumulative_energy_expenditure"
	CumulativeDiscounted        = "cumulative_discounted_energy_expenditure"
	CumulativeExtraExpenditure  = "cumulative_extra_energy_expenditure"
	CumulativeCarbonTax         = "cumulative_carbon_tax"

	NOxEmissions       = "nox_emissions"  // kg
	SootEmissions      = "soot_emissions" // kg
	NOxERF             = "nox_erf"        // mW/m²
	SootERF            = "soot_erf"       // mW/m²
	NOxERFCoefficient  = "nox_erf_coefficient"
	SootERFCoefficient = "soot_erf_coefficient"
)

// CO2 is the species every pathway tracks
const CO2 = "co2"

// EnergyConsumption is the total demand for one carrier (MJ)
func EnergyConsumption(carrier entities.EnergyType) string {
	return "energy_consumption_" + carrier.String()
}

// CarrierMeanUnitCost is the consumption-weighted selling price of a carrier (€/MJ)
func CarrierMeanUnitCost(carrier entities.EnergyType) string {
	return carrier.String() + "_mean_unit_cost"
}

// CarrierEmissionFactor is the consumption-weighted CO2 factor of a carrier (g/MJ)
func CarrierEmissionFactor(carrier entities.EnergyType) string {
	return carrier.String() + "_co2_mean_emission_factor"
}

// SpeciesEmissions is the scenario-wide total of one species (t)
func SpeciesEmissions(species string) string {
	return species + "_emissions"
}

// ResourceConsumption is the summed use of a resource by every pathway
func ResourceConsumption(resource string) string {
	return resource + "_consumption"
}

// ResourceAvailability is the exogenous supply of a resource
func ResourceAvailability(resource string) string {
	return resource + "_availability"
}

// ResourceAvailabilityRatio is consumption over availability (%)
func ResourceAvailabilityRatio(resource string) string {
	return resource + "_availability_ratio"
}

// ResourcePrice is the market price of a resource (€/unit)
func ResourcePrice(resource string) string {
	return resource + "_price"
}

// ResourceEmissionFactor is the emission factor of a resource (g/unit)
func ResourceEmissionFactor(resource, species string) string {
	return resource + "_" + species + "_emission_factor"
}

// ProcessUnitCost is the per-MJ cost of a process (€/MJ)
func ProcessUnitCost(process string) string {
	return process + "_unit_cost"
}

// ProcessEmissionFactor is the per-MJ factor of a process (g/MJ)
func ProcessEmissionFactor(process, species string) string {
	return process + "_" + species + "_emission_factor"
}

// CategoryTrafficShare is the % of ASK flown by a fleet category
func CategoryTrafficShare(category string) string {
	return category + "_traffic_share"
}

// CategoryEnergyKey builds a fleet key scoped to one energy type of a category
func CategoryEnergyKey(category string, energy entities.EnergyType, field string) entities.FleetKey {
	return entities.FleetKey{Category: category, Field: energy.String() + "_" + field}
}
