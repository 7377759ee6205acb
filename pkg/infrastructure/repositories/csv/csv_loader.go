package csv

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// Loader handles loading scenario data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadSeries loads a year-indexed table ("year,<var>,<var>...") into one
// time series per column. Years must be contiguous and ascending; empty
// cells are read as NaN.
func (l *Loader) LoadSeries(filename string) (map[string]entities.Value, error) {
	records, err := readAll(filename, "series")
	if err != nil {
		return nil, err
	}

	header := records[0]
	if len(header) < 2 || strings.TrimSpace(strings.ToLower(header[0])) != "year" {
		return nil, fmt.Errorf("series CSV header must start with year and name at least one variable, got %v", header)
	}
	names := make([]string, len(header)-1)
	seen := make(map[string]bool, len(names))
	for i, name := range header[1:] {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("series CSV column %d has no name", i+2)
		}
		if seen[name] {
			return nil, fmt.Errorf("series CSV declares %s twice", name)
		}
		seen[name] = true
		names[i] = name
	}

	startYear := 0
	columns := make([][]float64, len(names))
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("series CSV row %d: expected %d columns, got %d", i+2, len(header), len(record))
		}

		year, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("series CSV row %d: invalid year: %s", i+2, record[0])
		}
		if i == 0 {
			startYear = year
		} else if year != startYear+i {
			return nil, fmt.Errorf("series CSV row %d: expected year %d, got %d", i+2, startYear+i, year)
		}

		for j, cell := range record[1:] {
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("series CSV row %d: %s: %w", i+2, names[j], err)
			}
			columns[j] = append(columns[j], v)
		}
	}

	params := make(map[string]entities.Value, len(names))
	for j, name := range names {
		params[name] = entities.SeriesValue(entities.NewTimeSeriesFromValues(startYear, columns[j]))
	}
	return params, nil
}

// LoadPathways loads pathway definitions from a CSV file. Resources and
// processes are semicolon-separated lists.
func (l *Loader) LoadPathways(filename string) ([]*entities.Pathway, error) {
	records, err := readAll(filename, "pathways")
	if err != nil {
		return nil, err
	}

	// Validate header
	expectedHeader := []string{"name", "carrier", "model", "default", "mandate", "resources", "processes"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("pathways CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	var pathways []*entities.Pathway
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("pathways CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		pathway, err := parsePathway(record)
		if err != nil {
			return nil, fmt.Errorf("pathways CSV row %d: %w", i+2, err)
		}

		pathways = append(pathways, pathway)
	}

	return pathways, nil
}

func readAll(filename, kind string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}
	return records, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range actual {
		if strings.TrimSpace(strings.ToLower(col)) != expected[i] {
			return false
		}
	}
	return true
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value: %s", cell)
	}
	return v, nil
}

func parsePathway(record []string) (*entities.Pathway, error) {
	carrier, err := entities.ParseEnergyType(record[1])
	if err != nil {
		return nil, err
	}
	model, err := entities.ParseModelKind(record[2])
	if err != nil {
		return nil, err
	}
	isDefault, err := strconv.ParseBool(strings.TrimSpace(record[3]))
	if err != nil {
		return nil, fmt.Errorf("invalid default: %s", record[3])
	}
	mandate, err := entities.ParseMandateKind(record[4])
	if err != nil {
		return nil, err
	}

	pathway, err := entities.NewPathway(strings.TrimSpace(record[0]), carrier, model, isDefault, mandate)
	if err != nil {
		return nil, err
	}
	pathway.Resources = splitList(record[5])
	pathway.Processes = splitList(record[6])
	return pathway, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
