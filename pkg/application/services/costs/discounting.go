package costs

import (
	"fmt"
	"math"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// Discounter discounts yearly amounts to a base year at a constant rate
type Discounter struct {
	rate     float64
	baseYear int
}

// NewDiscounter creates a discounter; rate must be above -1
func NewDiscounter(rate float64, baseYear int) (*Discounter, error) {
	if rate <= -1 || math.IsNaN(rate) {
		return nil, fmt.Errorf("discount rate must be above -1, got %g", rate)
	}
	return &Discounter{rate: rate, baseYear: baseYear}, nil
}

// Rate returns the discount rate
func (d *Discounter) Rate() float64 { return d.rate }

// BaseYear returns the year amounts are discounted to
func (d *Discounter) BaseYear() int { return d.baseYear }

// Factor returns 1/(1+rate)^(year-base)
func (d *Discounter) Factor(year int) float64 {
	return math.Pow(1+d.rate, -float64(year-d.baseYear))
}

// Discount returns ts with every year multiplied by its discount factor
func (d *Discounter) Discount(ts entities.TimeSeries) entities.TimeSeries {
	return ts.Map(func(year int, v float64) float64 {
		return v * d.Factor(year)
	})
}

// PresentValue sums the discounted defined values of ts over [from, to]
func (d *Discounter) PresentValue(ts entities.TimeSeries, from, to int) float64 {
	return d.Discount(ts).SumBetween(from, to)
}
