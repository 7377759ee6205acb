package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// TimeSeries holds one float value per year over a contiguous year range
type TimeSeries struct {
	start  int
	values []float64
}

// NewTimeSeries creates a zero-filled series covering [start, end]
func NewTimeSeries(start, end int) TimeSeries {
	return NewTimeSeriesFilled(start, end, 0)
}

// NewTimeSeriesFilled creates a series covering [start, end] with every year set to value
func NewTimeSeriesFilled(start, end int, value float64) TimeSeries {
	if end < start {
		return TimeSeries{start: start}
	}
	values := make([]float64, end-start+1)
	if value != 0 {
		for i := range values {
			values[i] = value
		}
	}
	return TimeSeries{start: start, values: values}
}

// NewNaNSeries creates a series covering [start, end] with every year undefined
func NewNaNSeries(start, end int) TimeSeries {
	return NewTimeSeriesFilled(start, end, math.NaN())
}

// NewTimeSeriesFromValues creates a series starting at start; values are copied
func NewTimeSeriesFromValues(start int, values []float64) TimeSeries {
	cp := make([]float64, len(values))
	copy(cp, values)
	return TimeSeries{start: start, values: cp}
}

// Start returns the first year of the series
func (s TimeSeries) Start() int { return s.start }

// End returns the last year of the series
func (s TimeSeries) End() int { return s.start + len(s.values) - 1 }

// Len returns the number of years covered
func (s TimeSeries) Len() int { return len(s.values) }

// IsEmpty reports whether the series covers no year
func (s TimeSeries) IsEmpty() bool { return len(s.values) == 0 }

// Years returns the covered years in ascending order
func (s TimeSeries) Years() []int {
	years := make([]int, len(s.values))
	for i := range s.values {
		years[i] = s.start + i
	}
	return years
}

// Contains reports whether year is inside the series range
func (s TimeSeries) Contains(year int) bool {
	return year >= s.start && year < s.start+len(s.values)
}

// Get returns the value at year and whether the year is covered
func (s TimeSeries) Get(year int) (float64, bool) {
	if !s.Contains(year) {
		return 0, false
	}
	return s.values[year-s.start], true
}

// At returns the value at year, NaN when the year is not covered
func (s TimeSeries) At(year int) float64 {
	if v, ok := s.Get(year); ok {
		return v
	}
	return math.NaN()
}

// AtOrZero returns the value at year, 0 when the year is not covered
func (s TimeSeries) AtOrZero(year int) float64 {
	v, _ := s.Get(year)
	return v
}

// Set assigns the value at year. Setting a year outside the range panics.
func (s *TimeSeries) Set(year int, value float64) {
	if !s.Contains(year) {
		panic(fmt.Sprintf("year %d outside series range [%d, %d]", year, s.start, s.End()))
	}
	s.values[year-s.start] = value
}

// AddAt adds delta to the value at year. Years outside the range are ignored.
func (s *TimeSeries) AddAt(year int, delta float64) {
	if s.Contains(year) {
		s.values[year-s.start] += delta
	}
}

// Values returns a copy of the underlying values
func (s TimeSeries) Values() []float64 {
	cp := make([]float64, len(s.values))
	copy(cp, s.values)
	return cp
}

// Clone returns an independent copy of the series
func (s TimeSeries) Clone() TimeSeries {
	return NewTimeSeriesFromValues(s.start, s.values)
}

// Reindex returns a series over [start, end]; years not covered take fill
func (s TimeSeries) Reindex(start, end int, fill float64) TimeSeries {
	out := NewTimeSeriesFilled(start, end, fill)
	for year := start; year <= end; year++ {
		if v, ok := s.Get(year); ok {
			out.values[year-start] = v
		}
	}
	return out
}

func (s TimeSeries) sameRange(o TimeSeries) bool {
	return s.start == o.start && len(s.values) == len(o.values)
}

// Add returns s + o over the range of s; years missing from o count as 0
func (s TimeSeries) Add(o TimeSeries) TimeSeries {
	out := s.Clone()
	if s.sameRange(o) {
		floats.Add(out.values, o.values)
		return out
	}
	for i := range out.values {
		out.values[i] += o.AtOrZero(s.start + i)
	}
	return out
}

// Sub returns s - o over the range of s; years missing from o count as 0
func (s TimeSeries) Sub(o TimeSeries) TimeSeries {
	out := s.Clone()
	if s.sameRange(o) {
		floats.Sub(out.values, o.values)
		return out
	}
	for i := range out.values {
		out.values[i] -= o.AtOrZero(s.start + i)
	}
	return out
}

// Mul returns the element-wise product over the range of s; years missing from o are NaN
func (s TimeSeries) Mul(o TimeSeries) TimeSeries {
	out := s.Clone()
	if s.sameRange(o) {
		floats.Mul(out.values, o.values)
		return out
	}
	for i := range out.values {
		out.values[i] *= o.At(s.start + i)
	}
	return out
}

// Div returns the element-wise quotient over the range of s. A zero or
// missing denominator yields NaN.
func (s TimeSeries) Div(o TimeSeries) TimeSeries {
	out := s.Clone()
	for i := range out.values {
		d := o.At(s.start + i)
		if d == 0 || math.IsNaN(d) {
			out.values[i] = math.NaN()
			continue
		}
		out.values[i] /= d
	}
	return out
}

// Scale returns the series multiplied by factor
func (s TimeSeries) Scale(factor float64) TimeSeries {
	out := s.Clone()
	floats.Scale(factor, out.values)
	return out
}

// Map returns a new series with fn applied to every year
func (s TimeSeries) Map(fn func(year int, v float64) float64) TimeSeries {
	out := s.Clone()
	for i, v := range out.values {
		out.values[i] = fn(s.start+i, v)
	}
	return out
}

// Sum returns the sum of all values (NaN if any value is NaN)
func (s TimeSeries) Sum() float64 {
	return floats.Sum(s.values)
}

// SumBetween returns the sum of the values for years in [from, to] that are defined
func (s TimeSeries) SumBetween(from, to int) float64 {
	total := 0.0
	for year := from; year <= to; year++ {
		if v, ok := s.Get(year); ok && !math.IsNaN(v) {
			total += v
		}
	}
	return total
}

// IsZero reports whether every value is exactly zero
func (s TimeSeries) IsZero() bool {
	for _, v := range s.values {
		if v != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether both series cover the same years with identical
// values; NaN equals NaN.
func (s TimeSeries) Equal(o TimeSeries) bool {
	return s.sameRange(o) && floats.Same(s.values, o.values)
}

type timeSeriesJSON struct {
	StartYear int        `json:"start_year"`
	Values    []*float64 `json:"values"`
}

// MarshalJSON encodes the series with NaN values as null
func (s TimeSeries) MarshalJSON() ([]byte, error) {
	out := timeSeriesJSON{StartYear: s.start, Values: make([]*float64, len(s.values))}
	for i, v := range s.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		v := v
		out.Values[i] = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a series; null values become NaN
func (s *TimeSeries) UnmarshalJSON(data []byte) error {
	var in timeSeriesJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("failed to decode time series: %w", err)
	}
	s.start = in.StartYear
	s.values = make([]float64, len(in.Values))
	for i, v := range in.Values {
		if v == nil {
			s.values[i] = math.NaN()
			continue
		}
		s.values[i] = *v
	}
	return nil
}

// String renders the series as "year:value" pairs
func (s TimeSeries) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range s.values {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(strconv.Itoa(s.start + i))
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(v, 'g', 6, 64))
	}
	buf.WriteByte('}')
	return buf.String()
}
