package vintage

import (
	"fmt"
	"math"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// CapacityPlan is the commissioning schedule that covers a demand trajectory
type CapacityPlan struct {
	Demand entities.TimeSeries
	// NewCapacity is the capacity built in each year, MJ/day
	NewCapacity entities.TimeSeries
	// Available is the production all active vintages can deliver, MJ/yr
	Available entities.TimeSeries
	// Utilization is demand/available capped at 1. Over-capacity is never
	// retired; every vintage's production is scaled by this factor instead.
	Utilization entities.TimeSeries
	Vintages    []*entities.Vintage
	LoadFactor  float64
	Lifespan    int
}

// CapacityPlanner computes commissioning schedules
type CapacityPlanner struct{}

// NewCapacityPlanner creates a capacity planner
func NewCapacityPlanner() *CapacityPlanner {
	return &CapacityPlanner{}
}

// Plan walks the demand years in ascending order. Whenever next year's
// available production falls short of next year's demand, a vintage
// covering the shortfall is commissioned this year; it supplies from the
// following year through commissioning year + lifespan.
func (p *CapacityPlanner) Plan(pathway string, demand entities.TimeSeries, loadFactor float64, lifespan int) (*CapacityPlan, error) {
	if loadFactor <= 0 || loadFactor > 1 {
		return nil, fmt.Errorf("load factor must be in (0, 1], got %g", loadFactor)
	}
	if lifespan < 1 {
		return nil, fmt.Errorf("lifespan must be at least 1 year, got %d", lifespan)
	}
	if demand.IsEmpty() {
		return nil, fmt.Errorf("demand trajectory is empty")
	}

	start, end := demand.Start(), demand.End()
	plan := &CapacityPlan{
		Demand:      demand.Clone(),
		NewCapacity: entities.NewTimeSeries(start, end),
		Available:   entities.NewTimeSeries(start, end),
		Utilization: entities.NewTimeSeries(start, end),
		LoadFactor:  loadFactor,
		Lifespan:    lifespan,
	}

	for year := start; year < end; year++ {
		required := demandAt(demand, year+1)
		available := plan.Available.At(year + 1)
		if available >= required {
			continue
		}

		missing := required - available
		v, err := entities.NewVintage(pathway, year, missing, loadFactor, lifespan)
		if err != nil {
			return nil, fmt.Errorf("failed to commission vintage %d: %w", year, err)
		}
		plan.Vintages = append(plan.Vintages, v)
		plan.NewCapacity.Set(year, v.Capacity)

		last := year + lifespan
		if last > end {
			last = end
		}
		for y := year + 1; y <= last; y++ {
			plan.Available.AddAt(y, missing)
		}
	}

	for year := start; year <= end; year++ {
		available := plan.Available.At(year)
		if available <= 0 {
			continue
		}
		plan.Utilization.Set(year, math.Min(1, demandAt(demand, year)/available))
	}

	return plan, nil
}

// Shortfall returns the first planned year whose positive demand is not
// covered, or 0. The first year of the trajectory cannot be planned for.
func (plan *CapacityPlan) Shortfall() int {
	for _, year := range plan.Demand.Years()[1:] {
		d := demandAt(plan.Demand, year)
		if d > 0 && plan.Available.At(year) < d*(1-1e-12) {
			return year
		}
	}
	return 0
}

// Production returns the yearly production of v after over-capacity scaling
func (plan *CapacityPlan) Production(v *entities.Vintage) entities.TimeSeries {
	out := entities.NewTimeSeries(plan.Demand.Start(), plan.Demand.End())
	for _, year := range out.Years() {
		if v.SuppliesIn(year) {
			out.Set(year, v.AnnualProduction*plan.Utilization.At(year))
		}
	}
	return out
}

func demandAt(demand entities.TimeSeries, year int) float64 {
	d, ok := demand.Get(year)
	if !ok || math.IsNaN(d) || d < 0 {
		return 0
	}
	return d
}
