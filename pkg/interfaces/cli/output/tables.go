package output

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/vsinha/aerosim/pkg/application/dto"
	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// table is a format-neutral sheet shared by the CSV and XLSX writers.
// Cells hold float64, int, string or nil for undefined values.
type table struct {
	name   string
	header []string
	rows   [][]interface{}
}

// seriesTable lays every time-series variable out as one column per variable and one row per year
func seriesTable(result *dto.ScenarioResult) table {
	names := result.SeriesNames()
	t := table{name: "series", header: append([]string{"year"}, names...)}

	series := make([]entities.TimeSeries, len(names))
	for i, name := range names {
		series[i], _ = result.Series(name)
	}

	for year := result.TimeIndex.HistoricStartYear; year <= result.TimeIndex.EndYear; year++ {
		row := make([]interface{}, 0, len(names)+1)
		row = append(row, year)
		for _, ts := range series {
			if year < ts.Start() || year > ts.End() {
				row = append(row, nil)
				continue
			}
			row = append(row, floatCell(ts.At(year)))
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// scalarTable lists scalar and text variables by name
func scalarTable(result *dto.ScenarioResult) table {
	t := table{name: "scalars", header: []string{"name", "value", "unit"}}

	names := make([]string, 0, len(result.Variables))
	for name, v := range result.Variables {
		if v.Kind() == entities.KindScalar || v.Kind() == entities.KindText {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		v := result.Variables[name]
		var cell interface{}
		if v.Kind() == entities.KindText {
			cell = v.Text()
		} else {
			cell = floatCell(v.Float())
		}
		t.rows = append(t.rows, []interface{}{name, cell, result.Info[name].Unit})
	}
	return t
}

// vintageTable lists the commissioned vintages of every bottom-up pathway
func vintageTable(result *dto.ScenarioResult) table {
	t := table{
		name: "vintages",
		header: []string{
			"pathway", "commissioning_year", "eis_year", "capacity",
			"annual_production", "lifespan", "lifetime_cost", "co2_factor",
		},
	}
	for _, pathway := range result.PathwayNames() {
		for _, v := range result.Vintages[pathway] {
			t.rows = append(t.rows, []interface{}{
				pathway,
				v.CommissioningYear,
				v.EISYear,
				floatCell(v.Capacity),
				floatCell(v.AnnualProduction),
				v.Lifespan,
				floatCell(float64(v.LifetimeCost)),
				floatCell(float64(v.CO2Factor)),
			})
		}
	}
	return t
}

func floatCell(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// formatCell renders a cell for text formats; undefined cells are empty
func formatCell(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
