package vintage

import (
	"math"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// contribution is one vintage's yearly series and its weight
type contribution struct {
	commissioning int
	capacity      float64
	series        entities.TimeSeries
}

// capacityWeightedMean averages the defined contributions of each year,
// weighting by capacity. Years without a defined contribution are NaN.
func capacityWeightedMean(items []contribution, start, end int) entities.TimeSeries {
	out := entities.NewNaNSeries(start, end)
	for year := start; year <= end; year++ {
		var weighted, total float64
		for _, c := range items {
			v, ok := c.series.Get(year)
			if !ok || math.IsNaN(v) {
				continue
			}
			weighted += v * c.capacity
			total += c.capacity
		}
		if total > 0 {
			out.Set(year, weighted/total)
		}
	}
	return out
}

// maximum returns the largest defined contribution of each year
func maximum(items []contribution, start, end int) entities.TimeSeries {
	out := entities.NewNaNSeries(start, end)
	for year := start; year <= end; year++ {
		best := math.Inf(-1)
		for _, c := range items {
			if v, ok := c.series.Get(year); ok && !math.IsNaN(v) && v > best {
				best = v
			}
		}
		if !math.IsInf(best, -1) {
			out.Set(year, best)
		}
	}
	return out
}

// latest returns, for each year, the contribution of the most recently
// commissioned vintage that is defined in that year
func latest(items []contribution, start, end int) entities.TimeSeries {
	out := entities.NewNaNSeries(start, end)
	for year := start; year <= end; year++ {
		newest := math.MinInt
		for _, c := range items {
			if v, ok := c.series.Get(year); ok && !math.IsNaN(v) && c.commissioning >= newest {
				newest = c.commissioning
				out.Set(year, v)
			}
		}
	}
	return out
}

// weightedTotal multiplies a mean factor by a quantity; years with zero
// quantity contribute zero even when the factor is undefined
func weightedTotal(factor, quantity entities.TimeSeries) entities.TimeSeries {
	return quantity.Map(func(year int, q float64) float64 {
		if q == 0 {
			return 0
		}
		return q * factor.At(year)
	})
}

// discountFactor is 1/(1+rate)^(year-base)
func discountFactor(rate float64, year, base int) float64 {
	return math.Pow(1+rate, -float64(year-base))
}
