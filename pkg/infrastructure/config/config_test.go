package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/infrastructure/repositories/memory"
)

const parameterYAML = `
time_index:
  historic_start_year: 2000
  prospection_start_year: 2020
  end_year: 2050
parameters:
  private_discount_rate: 0.08
  scenario_label: reference
  rpk_growth_rate: [3, 3, 3]
  efuel_capex:
    start_year: 2020
    values: [180, 170, null]
  carbon_value:
    2020: 54
    2030: 250
data_information:
  - name: rpk
    unit: RPK
    description: Revenue passenger kilometres
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadParameterFile(t *testing.T) {
	f, err := LoadParameterFile(writeFile(t, "parameters.yaml", parameterYAML))
	if err != nil {
		t.Fatalf("Failed to load parameter file: %v", err)
	}

	if f.TimeIndex.ProspectionStartYear != 2020 || f.TimeIndex.EndYear != 2050 {
		t.Errorf("Unexpected time index: %+v", f.TimeIndex)
	}

	if v := f.Parameters["private_discount_rate"]; v.Kind() != entities.KindScalar || v.Float() != 0.08 {
		t.Errorf("Expected scalar 0.08, got %v", v)
	}
	if v := f.Parameters["scenario_label"]; v.Kind() != entities.KindText || v.Text() != "reference" {
		t.Errorf("Expected text reference, got %v", v)
	}

	growth := f.Parameters["rpk_growth_rate"].Series()
	if growth.Start() != 2000 || growth.End() != 2002 {
		t.Errorf("Expected list to start at the historic start year, got %d-%d", growth.Start(), growth.End())
	}

	capex := f.Parameters["efuel_capex"].Series()
	if capex.Start() != 2020 || capex.At(2021) != 170 {
		t.Errorf("Unexpected capex series: %v", capex)
	}
	if !math.IsNaN(capex.At(2022)) {
		t.Errorf("Expected null to read as NaN, got %g", capex.At(2022))
	}

	carbon := f.Parameters["carbon_value"].Series()
	if carbon.Start() != 2000 || carbon.End() != 2050 {
		t.Errorf("Expected interpolated series over the full horizon, got %d-%d", carbon.Start(), carbon.End())
	}
	if got := carbon.At(2025); math.Abs(got-152) > 1e-9 {
		t.Errorf("Expected 152 in 2025, got %g", got)
	}
	if carbon.At(2010) != 54 || carbon.At(2050) != 250 {
		t.Errorf("Expected flat extrapolation, got %g and %g", carbon.At(2010), carbon.At(2050))
	}

	if len(f.Info) != 1 || f.Info[0].Unit != "RPK" {
		t.Errorf("Unexpected data information: %v", f.Info)
	}

	store := memory.NewParameterStore(len(f.Parameters))
	if err := f.Apply(store); err != nil {
		t.Fatalf("Failed to apply parameters: %v", err)
	}
	if _, ok := store.Info("rpk"); !ok || !store.Has("carbon_value") {
		t.Error("Expected parameters and info in the store")
	}
}

func TestLoadParameterFile_EnvOverride(t *testing.T) {
	t.Setenv("AEROSIM_PRIVATE_DISCOUNT_RATE", "0.05")

	f, err := LoadParameterFile(writeFile(t, "parameters.yaml", parameterYAML))
	if err != nil {
		t.Fatalf("Failed to load parameter file: %v", err)
	}
	if got := f.Parameters["private_discount_rate"].Float(); got != 0.05 {
		t.Errorf("Expected env override 0.05, got %g", got)
	}

	t.Setenv("AEROSIM_PRIVATE_DISCOUNT_RATE", "high")
	_, err = LoadParameterFile(writeFile(t, "parameters.yaml", parameterYAML))
	if err == nil || !strings.Contains(err.Error(), "invalid AEROSIM_PRIVATE_DISCOUNT_RATE override") {
		t.Errorf("Expected invalid override error, got %v", err)
	}
}

func TestLoadParameterFile_Errors(t *testing.T) {
	header := "time_index:\n  historic_start_year: 2000\n  prospection_start_year: 2020\n  end_year: 2050\n"
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			"invalid_time_index",
			"time_index:\n  historic_start_year: 2030\n  prospection_start_year: 2020\n  end_year: 2050\n",
			"invalid time_index",
		},
		{
			"bad_year_key",
			header + "parameters:\n  carbon_value:\n    soon: 10\n",
			"parameter carbon_value: reference point key must be a year",
		},
		{
			"bad_list_value",
			header + "parameters:\n  growth: [1, lots]\n",
			"parameter growth: value 1: not a number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadParameterFile(writeFile(t, "parameters.yaml", tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("Expected error containing %q, got %v", tt.expected, err)
			}
		})
	}

	if _, err := LoadParameterFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestWriteParameterFile_RoundTrip(t *testing.T) {
	ti := entities.TimeIndex{HistoricStartYear: 2000, ProspectionStartYear: 2020, EndYear: 2050}
	capex := entities.NewTimeSeriesFromValues(2020, []float64{180, math.NaN(), 160})
	original := &ParameterFile{
		TimeIndex: ti,
		Parameters: map[string]entities.Value{
			"efuel_capex":           entities.SeriesValue(capex),
			"private_discount_rate": entities.ScalarValue(0.08),
			"scenario_label":        entities.TextValue("reference"),
		},
		Info: []entities.VariableInfo{{Name: "rpk", Unit: "RPK"}},
	}

	path := filepath.Join(t.TempDir(), "parameters.yaml")
	if err := WriteParameterFile(path, original); err != nil {
		t.Fatalf("Failed to write parameter file: %v", err)
	}
	loaded, err := LoadParameterFile(path)
	if err != nil {
		t.Fatalf("Failed to reload parameter file: %v", err)
	}

	if loaded.TimeIndex != ti {
		t.Errorf("Expected %+v, got %+v", ti, loaded.TimeIndex)
	}
	for name, want := range original.Parameters {
		if got := loaded.Parameters[name]; !got.Equal(want) {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}
	if len(loaded.Info) != 1 || loaded.Info[0].Name != "rpk" {
		t.Errorf("Unexpected info after round trip: %v", loaded.Info)
	}
}

const scenarioYAML = `
pathways:
  - name: fossil_kerosene
    carrier: dropin_fuel
    model: top_down
    default: true
  - name: efuel
    carrier: dropin_fuel
    model: bottom_up
    mandate: quantity
    resources: [electricity]
resources:
  - name: electricity
    unit: kWh
fleet:
  - name: short_range
    life: 25
    subcategories:
      - name: narrow_body
        share: 100
        old_reference:
          name: SR_OLD
          entry_into_service: 1988
          performance:
            energy_per_ask: 1.2
            doc_non_energy: 0.05
        recent_reference:
          name: SR_RECENT
          entry_into_service: 2016
          performance:
            energy_per_ask: 1.0
            doc_non_energy: 0.045
        aircraft:
          - name: SR_NEXT
            entry_into_service: 2035
            energy_type: dropin_fuel
            consumption_gain: -20
`

func TestLoadScenarioFile(t *testing.T) {
	scenario, err := LoadScenarioFile(writeFile(t, "scenario.yaml", scenarioYAML))
	if err != nil {
		t.Fatalf("Failed to load scenario file: %v", err)
	}

	if len(scenario.Pathways) != 2 {
		t.Fatalf("Expected 2 pathways, got %d", len(scenario.Pathways))
	}
	efuel := scenario.Pathways[1]
	if efuel.Model != entities.BottomUp || efuel.Mandate != entities.QuantityMandate || efuel.Resources[0] != "electricity" {
		t.Errorf("Unexpected efuel pathway: %+v", efuel)
	}

	if len(scenario.Categories) != 1 {
		t.Fatalf("Expected 1 category, got %d", len(scenario.Categories))
	}
	sub := scenario.Categories[0].Subcategories[0]
	if sub.RecentReference.Performance.EnergyPerASK != 1.0 {
		t.Errorf("Expected recent reference energy 1.0, got %g", sub.RecentReference.Performance.EnergyPerASK)
	}
	if len(sub.Aircraft) != 1 || sub.Aircraft[0].ConsumptionGain != -20 {
		t.Errorf("Unexpected aircraft: %+v", sub.Aircraft)
	}

	pathways := memory.NewPathwayRepository(2)
	fleet := memory.NewFleetRepository(1)
	if err := scenario.Apply(pathways, fleet); err != nil {
		t.Fatalf("Failed to apply scenario: %v", err)
	}
	if _, err := fleet.GetCategory("short_range"); err != nil {
		t.Errorf("Expected short_range in the fleet repository: %v", err)
	}
}

func TestLoadScenarioFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			"unknown_carrier",
			"pathways:\n  - name: fossil\n    carrier: diesel\n    model: top_down\n",
			"pathway fossil: unknown energy type: diesel",
		},
		{
			"unknown_model",
			"pathways:\n  - name: fossil\n    carrier: dropin_fuel\n    model: hybrid\n",
			"pathway fossil: unknown model kind: hybrid",
		},
		{
			"invalid_category",
			"pathways: []\nfleet:\n  - name: short_range\n    life: 0\n    subcategories: []\n",
			"category short_range: life must be positive, got 0",
		},
		{
			"malformed",
			"pathways: {",
			"failed to parse scenario file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenarioFile(writeFile(t, "scenario.yaml", tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("Expected error containing %q, got %v", tt.expected, err)
			}
		})
	}
}

func TestWriteScenarioFile_RoundTrip(t *testing.T) {
	original, err := LoadScenarioFile(writeFile(t, "scenario.yaml", scenarioYAML))
	if err != nil {
		t.Fatalf("Failed to load scenario file: %v", err)
	}

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := WriteScenarioFile(path, original); err != nil {
		t.Fatalf("Failed to write scenario file: %v", err)
	}
	reloaded, err := LoadScenarioFile(path)
	if err != nil {
		t.Fatalf("Failed to reload scenario file: %v", err)
	}

	if len(reloaded.Pathways) != len(original.Pathways) || reloaded.Pathways[1].Mandate != entities.QuantityMandate {
		t.Errorf("Pathways changed across round trip: %+v", reloaded.Pathways)
	}
	got := reloaded.Categories[0].Subcategories[0]
	want := original.Categories[0].Subcategories[0]
	if got.OldReference != want.OldReference || got.Aircraft[0] != want.Aircraft[0] {
		t.Errorf("Fleet changed across round trip: %+v vs %+v", got, want)
	}
}
