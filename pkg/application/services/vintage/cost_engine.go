package vintage

import (
	"fmt"
	"math"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// ResourceCost links a consumed resource to its market price
type ResourceCost struct {
	Name string
	// SpecificConsumption is resource units per MJ, read at the EIS year
	SpecificConsumption entities.TimeSeries
	// Price is €/unit and varies every year, even for an existing plant
	Price entities.TimeSeries
}

// ProcessCost is a downstream process adding a per-MJ cost frozen at EIS
type ProcessCost struct {
	Name     string
	UnitCost entities.TimeSeries
}

// TechnologyCosts are the cost curves of one bottom-up pathway
type TechnologyCosts struct {
	Capex            entities.TimeSeries // € per MJ/day of capacity
	FixedOpex        entities.TimeSeries // € per MJ/day of capacity per year
	VariableOpex     entities.TimeSeries // € per MJ
	ConstructionTime int
	Resources        []ResourceCost
	Processes        []ProcessCost
}

// VintageCost is the unit price table of one vintage
type VintageCost struct {
	Vintage *entities.Vintage
	EISYear int

	// Per-MJ components frozen at the EIS year
	Capex        float64
	FixedOpex    float64
	VariableOpex float64
	Processes    float64

	// Resources is the per-MJ resource cost, repriced every year
	Resources entities.TimeSeries
	// UnitPrice is defined from commissioning through the last operating
	// year and NaN elsewhere
	UnitPrice entities.TimeSeries
	// LifetimeCost is the discounted production-weighted mean unit price
	LifetimeCost float64
}

// CostResult aggregates the vintages of one pathway
type CostResult struct {
	Vintages         []*VintageCost
	MeanUnitCost     entities.TimeSeries
	MarginalUnitCost entities.TimeSeries
	MeanCapex        entities.TimeSeries
	MeanOpex         entities.TimeSeries
	MeanResources    entities.TimeSeries
	MeanProcesses    entities.TimeSeries
}

// CostEngine amortizes vintage capital and operating costs into unit prices
type CostEngine struct {
	timeIndex           entities.TimeIndex
	privateDiscountRate float64
}

// NewCostEngine creates a cost engine discounting at privateDiscountRate
func NewCostEngine(timeIndex entities.TimeIndex, privateDiscountRate float64) (*CostEngine, error) {
	if err := timeIndex.Validate(); err != nil {
		return nil, err
	}
	if privateDiscountRate <= -1 {
		return nil, fmt.Errorf("private discount rate must be above -1, got %g", privateDiscountRate)
	}
	return &CostEngine{timeIndex: timeIndex, privateDiscountRate: privateDiscountRate}, nil
}

// Compute prices every vintage of plan and aggregates them per year
func (e *CostEngine) Compute(plan *CapacityPlan, tech TechnologyCosts) (*CostResult, error) {
	if tech.ConstructionTime < 0 {
		return nil, fmt.Errorf("construction time cannot be negative, got %d", tech.ConstructionTime)
	}

	start, end := plan.Demand.Start(), plan.Demand.End()
	result := &CostResult{Vintages: make([]*VintageCost, 0, len(plan.Vintages))}

	var price, capex, opex, resources, processes []contribution
	for _, v := range plan.Vintages {
		vc, err := e.priceVintage(plan, v, tech, start, end)
		if err != nil {
			return nil, err
		}
		result.Vintages = append(result.Vintages, vc)

		operating := func(value float64) entities.TimeSeries {
			return vc.UnitPrice.Map(func(_ int, p float64) float64 {
				if math.IsNaN(p) {
					return math.NaN()
				}
				return value
			})
		}
		base := contribution{commissioning: v.CommissioningYear, capacity: v.Capacity}
		price = append(price, withSeries(base, vc.UnitPrice))
		capex = append(capex, withSeries(base, operating(vc.Capex)))
		opex = append(opex, withSeries(base, operating(vc.FixedOpex+vc.VariableOpex)))
		resources = append(resources, withSeries(base, vc.Resources))
		processes = append(processes, withSeries(base, operating(vc.Processes)))
	}

	result.MeanUnitCost = capacityWeightedMean(price, start, end)
	result.MarginalUnitCost = maximum(price, start, end)
	result.MeanCapex = capacityWeightedMean(capex, start, end)
	result.MeanOpex = capacityWeightedMean(opex, start, end)
	result.MeanResources = capacityWeightedMean(resources, start, end)
	result.MeanProcesses = capacityWeightedMean(processes, start, end)
	return result, nil
}

func withSeries(c contribution, ts entities.TimeSeries) contribution {
	c.series = ts
	return c
}

func (e *CostEngine) priceVintage(
	plan *CapacityPlan,
	v *entities.Vintage,
	tech TechnologyCosts,
	start, end int,
) (*VintageCost, error) {
	eis := v.EISYear(e.timeIndex.ProspectionStartYear)
	throughput := entities.DaysPerYear * v.LoadFactor

	capex, err := valueAt(tech.Capex, eis, "capex")
	if err != nil {
		return nil, err
	}
	fixedOpex, err := valueAt(tech.FixedOpex, eis, "fixed opex")
	if err != nil {
		return nil, err
	}
	variableOpex, err := valueAt(tech.VariableOpex, eis, "variable opex")
	if err != nil {
		return nil, err
	}

	vc := &VintageCost{
		Vintage:      v,
		EISYear:      eis,
		Capex:        e.annualizedCapex(capex, tech.ConstructionTime, v.Lifespan) / throughput,
		FixedOpex:    fixedOpex / throughput,
		VariableOpex: variableOpex,
		Resources:    entities.NewNaNSeries(start, end),
		UnitPrice:    entities.NewNaNSeries(start, end),
	}

	for _, p := range tech.Processes {
		unitCost, err := valueAt(p.UnitCost, eis, p.Name+" unit cost")
		if err != nil {
			return nil, err
		}
		vc.Processes += unitCost
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
	frozen := vc.Capex + vc.FixedOpex + vc.VariableOpex + vc.Processes
	for year := v.CommissioningYear; year <= last; year++ {
		if year < start {
			continue
		}
		resourceCost := 0.0
		for i, r := range tech.Resources {
			resourceCost += consumptions[i] * r.Price.At(year)
		}
		vc.Resources.Set(year, resourceCost)
		vc.UnitPrice.Set(year, frozen+resourceCost)
	}

	vc.LifetimeCost = e.lifetimeCost(plan, vc, last)
	return vc, nil
}

// annualizedCapex spreads capex uniformly over the construction years
// preceding commissioning, compounds it to the commissioning year and
// converts it to a constant annuity over the lifespan
func (e *CostEngine) annualizedCapex(capex float64, constructionTime, lifespan int) float64 {
	r := e.privateDiscountRate
	compounded := capex
	if constructionTime > 0 {
		compounded = 0
		for j := 1; j <= constructionTime; j++ {
			compounded += capex / float64(constructionTime) * math.Pow(1+r, float64(j))
		}
	}
	return compounded * CapitalRecoveryFactor(r, lifespan)
}

// lifetimeCost discounts the unit price over the vintage's operating years,
// weighting each year by the vintage's production share
func (e *CostEngine) lifetimeCost(plan *CapacityPlan, vc *VintageCost, last int) float64 {
	c := vc.Vintage.CommissioningYear
	var cost, weight float64
	for year := c; year <= last; year++ {
		price, ok := vc.UnitPrice.Get(year)
		if !ok || math.IsNaN(price) {
			continue
		}
		utilization, ok := plan.Utilization.Get(year)
		if !ok || utilization == 0 {
			utilization = 1
		}
		w := utilization * discountFactor(e.privateDiscountRate, year, c)
		cost += price * w
		weight += w
	}
	if weight == 0 {
		return math.NaN()
	}
	return cost / weight
}

// CapitalRecoveryFactor converts a present value into a constant annuity
// over n years at rate r
func CapitalRecoveryFactor(r float64, n int) float64 {
	if n <= 0 {
		return math.NaN()
	}
	if r == 0 {
		return 1 / float64(n)
	}
	growth := math.Pow(1+r, float64(n))
	return r * growth / (growth - 1)
}

func valueAt(ts entities.TimeSeries, year int, name string) (float64, error) {
	v, ok := ts.Get(year)
	if !ok || math.IsNaN(v) {
		return 0, fmt.Errorf("%s is undefined in %d", name, year)
	}
	return v, nil
}
