package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/vsinha/aerosim/pkg/application/dto"
	"github.com/vsinha/aerosim/pkg/application/services/costs"
	"github.com/vsinha/aerosim/pkg/domain/entities"
)

func sampleResult() *dto.ScenarioResult {
	ti := entities.TimeIndex{HistoricStartYear: 2000, ProspectionStartYear: 2020, EndYear: 2050}
	co2 := entities.NewTimeSeriesFilled(2000, 2050, 8e8)
	co2.Set(2000, math.NaN())

	return &dto.ScenarioResult{
		RunID:      "run-1",
		TimeIndex:  ti,
		Converged:  true,
		Iterations: map[string]int{"airfare+traffic": 4},
		Order:      []string{"traffic", "fleet"},
		Duration:   time.Millisecond,
		Variables: map[string]entities.Value{
			"rpk":                           entities.SeriesValue(entities.NewTimeSeriesFilled(2000, 2050, 1e12)),
			"co2_emissions":                 entities.SeriesValue(co2),
			"cumulative_energy_expenditure": entities.ScalarValue(2.5e11),
			"scenario_label":                entities.TextValue("reference"),
		},
		Info: map[string]entities.VariableInfo{
			"co2_emissions": {Name: "co2_emissions", Unit: "tCO2"},
		},
		Vintages: map[string][]dto.VintageSummary{
			"efuel": {{
				Pathway:           "efuel",
				CommissioningYear: 2020,
				EISYear:           2021,
				Capacity:          3042.06,
				AnnualProduction:  1e6,
				Lifespan:          25,
				LifetimeCost:      dto.Number(0.05),
				CO2Factor:         dto.Number(math.NaN()),
			}},
		},
		Costs: &costs.CostSummary{
			Expenditure: decimal.NewFromInt(250000000000),
			CarbonTax:   decimal.NewFromInt(1000),
			Complete:    true,
		},
	}
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	err := Generate(sampleResult(), Config{Format: "pdf"})
	if err == nil || err.Error() != "unsupported output format: pdf" {
		t.Errorf("Expected unsupported format error, got %v", err)
	}
	if err := Generate(nil, Config{Format: "text"}); err == nil {
		t.Error("Expected error for a nil result")
	}
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(sampleResult(), Config{Format: "text", Writer: &buf, RunTime: time.Second}); err != nil {
		t.Fatalf("Failed to generate text output: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Run ID: run-1",
		"Converged: true",
		"Loop airfare+traffic: 4 iterations",
		"co2_emissions [tCO2]",
		"Vintages of efuel",
		"Energy Expenditure:            250000000000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Text output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerate_TextFlagsIncompleteCosts(t *testing.T) {
	result := sampleResult()
	result.Costs.Complete = false
	result.Costs.Unpriced = map[string][]int{"efuel": {2025, 2026}}

	var buf bytes.Buffer
	if err := Generate(result, Config{Format: "text", Writer: &buf}); err != nil {
		t.Fatalf("Failed to generate text output: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Totals are incomplete", "efuel: [2025 2026]"} {
		if !strings.Contains(out, want) {
			t.Errorf("Text output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := Generate(sampleResult(), Config{Format: "text", Writer: &buf}); err != nil {
		t.Fatalf("Failed to generate text output: %v", err)
	}
	if strings.Contains(buf.String(), "Totals are incomplete") {
		t.Error("Expected no warning for complete totals")
	}
}

func TestReportYears(t *testing.T) {
	ti := entities.TimeIndex{HistoricStartYear: 2000, ProspectionStartYear: 2020, EndYear: 2050}
	got := reportYears(ti)
	want := []int{2020, 2030, 2040, 2050}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
		}
	}
}

func TestGenerate_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(sampleResult(), Config{Format: "json", Writer: &buf}); err != nil {
		t.Fatalf("Failed to generate JSON output: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded["run_id"] != "run-1" {
		t.Errorf("Expected run_id run-1, got %v", decoded["run_id"])
	}

	dir := t.TempDir()
	if err := Generate(sampleResult(), Config{Format: "json", OutputDir: dir}); err != nil {
		t.Fatalf("Failed to write JSON file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "scenario_results.json")); err != nil {
		t.Errorf("Expected JSON file: %v", err)
	}
}

func TestGenerate_CSV(t *testing.T) {
	if err := Generate(sampleResult(), Config{Format: "csv"}); err == nil {
		t.Error("Expected error without output directory")
	}

	dir := t.TempDir()
	if err := Generate(sampleResult(), Config{Format: "csv", OutputDir: dir}); err != nil {
		t.Fatalf("Failed to generate CSV output: %v", err)
	}

	records := readCSV(t, filepath.Join(dir, "series.csv"))
	if got := strings.Join(records[0], ","); got != "year,co2_emissions,rpk" {
		t.Errorf("Unexpected series header %q", got)
	}
	if len(records) != 52 {
		t.Errorf("Expected header plus 51 years, got %d rows", len(records))
	}
	if records[1][0] != "2000" || records[1][1] != "" {
		t.Errorf("Expected an empty cell for undefined 2000 emissions, got %v", records[1])
	}
	if records[21][2] != "1e+12" {
		t.Errorf("Expected rpk 1e+12 in 2020, got %q", records[21][2])
	}

	scalars := readCSV(t, filepath.Join(dir, "scalars.csv"))
	if len(scalars) != 3 || scalars[1][0] != "cumulative_energy_expenditure" || scalars[2][1] != "reference" {
		t.Errorf("Unexpected scalars table: %v", scalars)
	}

	vintages := readCSV(t, filepath.Join(dir, "vintages.csv"))
	if len(vintages) != 2 || vintages[1][0] != "efuel" || vintages[1][1] != "2020" || vintages[1][7] != "" {
		t.Errorf("Unexpected vintages table: %v", vintages)
	}
}

func TestGenerate_XLSX(t *testing.T) {
	dir := t.TempDir()
	if err := Generate(sampleResult(), Config{Format: "xlsx", OutputDir: dir}); err != nil {
		t.Fatalf("Failed to generate XLSX output: %v", err)
	}

	f, err := excelize.OpenFile(filepath.Join(dir, "scenario_results.xlsx"))
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if strings.Join(sheets, ",") != "series,scalars,vintages" {
		t.Errorf("Unexpected sheets %v", sheets)
	}

	rows, err := f.GetRows("series")
	if err != nil {
		t.Fatalf("Failed to read series sheet: %v", err)
	}
	if len(rows) != 52 || rows[0][0] != "year" || rows[0][2] != "rpk" {
		t.Errorf("Unexpected series sheet header %v (%d rows)", rows[0], len(rows))
	}

	value, err := f.GetCellValue("vintages", "B2")
	if err != nil || value != "2020" {
		t.Errorf("Expected commissioning year 2020, got %q (%v)", value, err)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return records
}
