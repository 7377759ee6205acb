package entities

import "fmt"

// DaysPerYear converts annual production into daily capacity
const DaysPerYear = 365.25

// Vintage represents one year's cohort of newly committed production capacity
type Vintage struct {
	Pathway           string  `json:"pathway"`
	CommissioningYear int     `json:"commissioning_year"`
	Capacity          float64 `json:"capacity"`          // MJ/day
	AnnualProduction  float64 `json:"annual_production"` // MJ/yr at full utilization
	Lifespan          int     `json:"lifespan"`
	LoadFactor        float64 `json:"load_factor"`
}

// NewVintage creates a validated Vintage from the annual production it must cover
func NewVintage(pathway string, commissioningYear int, annualProduction, loadFactor float64, lifespan int) (*Vintage, error) {
	if annualProduction <= 0 {
		return nil, fmt.Errorf("annual production must be positive, got %g", annualProduction)
	}
	if loadFactor <= 0 || loadFactor > 1 {
		return nil, fmt.Errorf("load factor must be in (0, 1], got %g", loadFactor)
	}
	if lifespan <= 0 {
		return nil, fmt.Errorf("lifespan must be positive, got %d", lifespan)
	}

	return &Vintage{
		Pathway:           pathway,
		CommissioningYear: commissioningYear,
		Capacity:          annualProduction / DaysPerYear / loadFactor,
		AnnualProduction:  annualProduction,
		Lifespan:          lifespan,
		LoadFactor:        loadFactor,
	}, nil
}

// LastOperatingYear returns the final year the vintage carries a unit price
func (v Vintage) LastOperatingYear() int {
	return v.CommissioningYear + v.Lifespan - 1
}

// OperatesIn reports whether the vintage carries a unit price in year
func (v Vintage) OperatesIn(year int) bool {
	return year >= v.CommissioningYear && year <= v.LastOperatingYear()
}

// SuppliesIn reports whether the vintage's production counts as available
// capacity in year. Capacity becomes available the year after commissioning.
func (v Vintage) SuppliesIn(year int) bool {
	return year > v.CommissioningYear && year <= v.CommissioningYear+v.Lifespan
}

// EISYear returns the year at which the vintage's technology parameters are read
func (v Vintage) EISYear(prospectionStartYear int) int {
	if v.CommissioningYear < prospectionStartYear {
		return prospectionStartYear
	}
	return v.CommissioningYear
}
