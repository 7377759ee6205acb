package entities

import (
	"fmt"
	"sort"
)

// InterpolateSeries builds a series over [start, end] from sparse reference
// points. Years between two points are linearly interpolated; years before
// the first or after the last point take that point's value.
func InterpolateSeries(start, end int, points map[int]float64) (TimeSeries, error) {
	if len(points) == 0 {
		return TimeSeries{}, fmt.Errorf("at least one reference point is required")
	}
	if end < start {
		return TimeSeries{}, fmt.Errorf("end year %d is before start year %d", end, start)
	}

	years := make([]int, 0, len(points))
	for year := range points {
		years = append(years, year)
	}
	sort.Ints(years)

	out := NewTimeSeries(start, end)
	next := 0
	for year := start; year <= end; year++ {
		for next < len(years) && years[next] < year {
			next++
		}
		switch {
		case next == 0:
			out.Set(year, points[years[0]])
		case next == len(years):
			out.Set(year, points[years[len(years)-1]])
		case years[next] == year:
			out.Set(year, points[year])
		default:
			y0, y1 := years[next-1], years[next]
			v0, v1 := points[y0], points[y1]
			out.Set(year, v0+(v1-v0)*float64(year-y0)/float64(y1-y0))
		}
	}
	return out, nil
}
