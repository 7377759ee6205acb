package costs

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// PathwayExpenditure is the selling price and consumption of one pathway
type PathwayExpenditure struct {
	Pathway     string
	UnitCost    entities.TimeSeries // MFSP, €/MJ
	Consumption entities.TimeSeries // MJ
}

// Expenditure returns UnitCost × Consumption. Years without consumption cost
// nothing even when no selling price is defined.
func (p PathwayExpenditure) Expenditure() entities.TimeSeries {
	return p.Consumption.Map(func(year int, q float64) float64 {
		if q == 0 || math.IsNaN(q) {
			return 0
		}
		return q * p.UnitCost.At(year)
	})
}

// UnpricedYears lists the years in [from, to] with consumption but no
// finite unit cost. Those years are left out of every total.
func (p PathwayExpenditure) UnpricedYears(from, to int) []int {
	var years []int
	for year := from; year <= to; year++ {
		q, ok := p.Consumption.Get(year)
		if !ok || q == 0 || math.IsNaN(q) {
			continue
		}
		if c := p.UnitCost.At(year); math.IsNaN(c) || math.IsInf(c, 0) {
			years = append(years, year)
		}
	}
	return years
}

// CostSummary holds cumulative prospective totals in €. When Complete is
// false some consumption had no price or a total overflowed; Unpriced names
// the pathways concerned and the totals understate the true cost.
type CostSummary struct {
	Expenditure           decimal.Decimal  `json:"expenditure"`
	DiscountedExpenditure decimal.Decimal  `json:"discounted_expenditure"`
	BAUExpenditure        decimal.Decimal  `json:"bau_expenditure"`
	ExtraExpenditure      decimal.Decimal  `json:"extra_expenditure"`
	CarbonTax             decimal.Decimal  `json:"carbon_tax"`
	DiscountedCarbonTax   decimal.Decimal  `json:"discounted_carbon_tax"`
	Complete              bool             `json:"complete"`
	Unpriced              map[string][]int `json:"unpriced,omitempty"`
}

// money rounds an amount to cents; a non-finite amount marks the summary incomplete
func (s *CostSummary) money(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		s.Complete = false
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(2)
}

func (s *CostSummary) checkPrices(p PathwayExpenditure, from, to int) {
	years := p.UnpricedYears(from, to)
	if len(years) == 0 {
		return
	}
	if s.Unpriced == nil {
		s.Unpriced = make(map[string][]int)
	}
	s.Unpriced[p.Pathway] = years
	s.Complete = false
}

// ScenarioCosts are the yearly and cumulative energy costs of a scenario
type ScenarioCosts struct {
	ByPathway             map[string]entities.TimeSeries
	Expenditure           entities.TimeSeries
	DiscountedExpenditure entities.TimeSeries
	BAUExpenditure        entities.TimeSeries
	ExtraExpenditure      entities.TimeSeries
	CarbonTax             entities.TimeSeries
	Summary               CostSummary
}

// CarbonTaxInput prices emitted CO2
type CarbonTaxInput struct {
	Price entities.TimeSeries // €/tCO2
	CO2   entities.TimeSeries // tCO2
}

// Aggregator sums energy expenditures across pathways
type Aggregator struct {
	timeIndex  entities.TimeIndex
	discounter *Discounter
}

// NewAggregator creates an aggregator discounting to the prospection start
func NewAggregator(timeIndex entities.TimeIndex, socialDiscountRate float64) (*Aggregator, error) {
	if err := timeIndex.Validate(); err != nil {
		return nil, err
	}
	discounter, err := NewDiscounter(socialDiscountRate, timeIndex.ProspectionStartYear)
	if err != nil {
		return nil, err
	}
	return &Aggregator{timeIndex: timeIndex, discounter: discounter}, nil
}

// Discounter returns the social discounter
func (a *Aggregator) Discounter() *Discounter {
	return a.discounter
}

// Aggregate sums pathway expenditures and compares them to the cost of
// buying the same total energy at the baseline unit cost
func (a *Aggregator) Aggregate(
	pathways []PathwayExpenditure,
	baselineUnitCost entities.TimeSeries,
	taxInput CarbonTaxInput,
) (*ScenarioCosts, error) {
	start, end := a.timeIndex.HistoricStartYear, a.timeIndex.EndYear
	result := &ScenarioCosts{
		ByPathway:   make(map[string]entities.TimeSeries, len(pathways)),
		Expenditure: entities.NewTimeSeries(start, end),
	}

	consumption := entities.NewTimeSeries(start, end)
	for _, p := range pathways {
		if _, exists := result.ByPathway[p.Pathway]; exists {
			return nil, fmt.Errorf("duplicate pathway in cost aggregation: %s", p.Pathway)
		}
		spend := p.Expenditure().Reindex(start, end, 0)
		result.ByPathway[p.Pathway] = spend
		result.Expenditure = result.Expenditure.Add(spend)
		consumption = consumption.Add(p.Consumption.Reindex(start, end, 0))
	}

	result.DiscountedExpenditure = a.discounter.Discount(result.Expenditure)
	bau := PathwayExpenditure{
		Pathway:     "baseline",
		UnitCost:    baselineUnitCost,
		Consumption: consumption,
	}
	result.BAUExpenditure = bau.Expenditure()
	result.ExtraExpenditure = result.Expenditure.Sub(result.BAUExpenditure)
	tax := PathwayExpenditure{
		Pathway:     "carbon_tax",
		UnitCost:    taxInput.Price,
		Consumption: taxInput.CO2.Reindex(start, end, 0),
	}
	result.CarbonTax = tax.Expenditure()

	from := a.timeIndex.ProspectionStartYear
	summary := CostSummary{Complete: true}
	for _, p := range pathways {
		summary.checkPrices(p, from, end)
	}
	summary.checkPrices(bau, from, end)
	summary.checkPrices(tax, from, end)

	summary.Expenditure = summary.money(result.Expenditure.SumBetween(from, end))
	summary.DiscountedExpenditure = summary.money(result.DiscountedExpenditure.SumBetween(from, end))
	summary.BAUExpenditure = summary.money(result.BAUExpenditure.SumBetween(from, end))
	summary.ExtraExpenditure = summary.money(result.ExtraExpenditure.SumBetween(from, end))
	summary.CarbonTax = summary.money(result.CarbonTax.SumBetween(from, end))
	summary.DiscountedCarbonTax = summary.money(a.discounter.PresentValue(result.CarbonTax, from, end))
	result.Summary = summary
	return result, nil
}
