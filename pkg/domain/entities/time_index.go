package entities

import "fmt"

// TimeIndex derives the historic, prospective and full year ranges of a scenario
type TimeIndex struct {
	HistoricStartYear    int `json:"historic_start_year" yaml:"historic_start_year" mapstructure:"historic_start_year"`
	ProspectionStartYear int `json:"prospection_start_year" yaml:"prospection_start_year" mapstructure:"prospection_start_year"`
	EndYear              int `json:"end_year" yaml:"end_year" mapstructure:"end_year"`
}

// NewTimeIndex creates a validated TimeIndex
func NewTimeIndex(historicStartYear, prospectionStartYear, endYear int) (*TimeIndex, error) {
	ti := &TimeIndex{
		HistoricStartYear:    historicStartYear,
		ProspectionStartYear: prospectionStartYear,
		EndYear:              endYear,
	}
	if err := ti.Validate(); err != nil {
		return nil, err
	}
	return ti, nil
}

// Validate checks the year ordering
func (ti TimeIndex) Validate() error {
	if ti.HistoricStartYear >= ti.ProspectionStartYear {
		return fmt.Errorf(
			"historic start year %d must be before prospection start year %d",
			ti.HistoricStartYear,
			ti.ProspectionStartYear,
		)
	}
	if ti.ProspectionStartYear > ti.EndYear {
		return fmt.Errorf(
			"prospection start year %d cannot be after end year %d",
			ti.ProspectionStartYear,
			ti.EndYear,
		)
	}
	return nil
}

// LastHistoricYear returns the final year with observed data
func (ti TimeIndex) LastHistoricYear() int { return ti.ProspectionStartYear - 1 }

// HistoricYears returns [historic start, prospection start)
func (ti TimeIndex) HistoricYears() []int {
	return yearRange(ti.HistoricStartYear, ti.LastHistoricYear())
}

// ProspectiveYears returns [prospection start - 1, end]; the last historic
// year is included so projections chain from an observed value.
func (ti TimeIndex) ProspectiveYears() []int {
	return yearRange(ti.LastHistoricYear(), ti.EndYear)
}

// FullYears returns [historic start, end]
func (ti TimeIndex) FullYears() []int {
	return yearRange(ti.HistoricStartYear, ti.EndYear)
}

// IsHistoric reports whether year is before the prospection start
func (ti TimeIndex) IsHistoric(year int) bool {
	return year >= ti.HistoricStartYear && year < ti.ProspectionStartYear
}

// ZeroSeries returns a zero series covering the full year range
func (ti TimeIndex) ZeroSeries() TimeSeries {
	return NewTimeSeries(ti.HistoricStartYear, ti.EndYear)
}

// NaNSeries returns an undefined series covering the full year range
func (ti TimeIndex) NaNSeries() TimeSeries {
	return NewNaNSeries(ti.HistoricStartYear, ti.EndYear)
}

// ConstantSeries returns a series covering the full year range set to value
func (ti TimeIndex) ConstantSeries(value float64) TimeSeries {
	return NewTimeSeriesFilled(ti.HistoricStartYear, ti.EndYear, value)
}

func yearRange(from, to int) []int {
	if to < from {
		return nil
	}
	years := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, y)
	}
	return years
}
