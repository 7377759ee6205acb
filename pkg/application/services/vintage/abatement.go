package vintage

import (
	"math"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// gramsPerTonne converts g/MJ emission factors into t/MJ
const gramsPerTonne = 1e6

// AbatementReference is the counterfactual a pathway is compared against
type AbatementReference struct {
	UnitCost       entities.TimeSeries // €/MJ
	EmissionFactor entities.TimeSeries // gCO2/MJ
	// SocialDiscountRate discounts both costs and avoided emissions
	SocialDiscountRate float64
	// CarbonValue is an exogenous €/tCO2 trajectory used by the generic variant
	CarbonValue entities.TimeSeries
}

// AbatementResult holds the abatement costs of one pathway
type AbatementResult struct {
	// AbatementCost is the yearly cost per avoided tonne of the mean vintage
	AbatementCost entities.TimeSeries
	// SpecificAbatementCost is indexed by commissioning year
	SpecificAbatementCost entities.TimeSeries
	// GenericSpecificAbatementCost is indexed by commissioning year
	GenericSpecificAbatementCost entities.TimeSeries
}

// ComputeAbatement derives yearly and per-vintage carbon abatement costs.
// A non-positive amount of avoided emissions yields NaN.
func ComputeAbatement(costs *CostResult, emissions *EmissionResult, ref AbatementReference) *AbatementResult {
	start, end := costs.MeanUnitCost.Start(), costs.MeanUnitCost.End()
	result := &AbatementResult{
		AbatementCost:                entities.NewNaNSeries(start, end),
		SpecificAbatementCost:        entities.NewNaNSeries(start, end),
		GenericSpecificAbatementCost: entities.NewNaNSeries(start, end),
	}

	for year := start; year <= end; year++ {
		avoided := (ref.EmissionFactor.At(year) - emissions.MeanFactor.At(year)) / gramsPerTonne
		extra := costs.MeanUnitCost.At(year) - ref.UnitCost.At(year)
		result.AbatementCost.Set(year, ratio(extra, avoided))
	}

	for i, vc := range costs.Vintages {
		if i >= len(emissions.Vintages) {
			break
		}
		ve := emissions.Vintages[i]
		c := vc.Vintage.CommissioningYear
		if !result.SpecificAbatementCost.Contains(c) {
			continue
		}
		result.SpecificAbatementCost.Set(c, SpecificAbatementCost(vc, ve, ref))
		result.GenericSpecificAbatementCost.Set(c, GenericSpecificAbatementCost(vc, ve, ref))
	}
	return result
}

// SpecificAbatementCost is the discounted extra cost of a vintage over its
// lifetime divided by its discounted avoided emissions, at a flat social rate
func SpecificAbatementCost(vc *VintageCost, ve *VintageEmission, ref AbatementReference) float64 {
	return lifetimeAbatement(vc, ve, ref, func(int) float64 { return 1 })
}

// GenericSpecificAbatementCost weights avoided emissions by the growth of
// the exogenous carbon value relative to the commissioning year
func GenericSpecificAbatementCost(vc *VintageCost, ve *VintageEmission, ref AbatementReference) float64 {
	c := vc.Vintage.CommissioningYear
	base := ref.CarbonValue.At(c)
	if math.IsNaN(base) || base <= 0 {
		return math.NaN()
	}
	return lifetimeAbatement(vc, ve, ref, func(year int) float64 {
		return ref.CarbonValue.At(year) / base
	})
}

func lifetimeAbatement(
	vc *VintageCost,
	ve *VintageEmission,
	ref AbatementReference,
	emissionWeight func(year int) float64,
) float64 {
	c := vc.Vintage.CommissioningYear
	var cost, avoided float64
	defined := false
	for _, year := range vc.UnitPrice.Years() {
		price := vc.UnitPrice.At(year)
		if math.IsNaN(price) {
			continue
		}
		defined = true
		d := discountFactor(ref.SocialDiscountRate, year, c)
		cost += (price - ref.UnitCost.At(year)) * d
		avoided += (ref.EmissionFactor.At(year) - ve.Factor.At(year)) / gramsPerTonne * emissionWeight(year) * d
	}
	if !defined {
		return math.NaN()
	}
	return ratio(cost, avoided)
}

func ratio(numerator, denominator float64) float64 {
	if math.IsNaN(numerator) || math.IsNaN(denominator) || denominator <= 0 {
		return math.NaN()
	}
	return numerator / denominator
}
