package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/vsinha/aerosim/pkg/application/dto"
	"github.com/vsinha/aerosim/pkg/application/services/disciplines"
	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format     string
	OutputDir  string
	Verbose    bool
	RunTime    time.Duration
	InputFiles map[string]string
	// Writer receives text and JSON output when no directory is set; defaults to stdout
	Writer io.Writer
}

func (c Config) writer() io.Writer {
	if c.Writer == nil {
		return os.Stdout
	}
	return c.Writer
}

// keyIndicators are reported in the text summary when present
var keyIndicators = []string{
	disciplines.RPK,
	disciplines.ASK,
	disciplines.EnergyConsumption(entities.DropInFuel),
	disciplines.EnergyConsumption(entities.Hydrogen),
	disciplines.SpeciesEmissions(disciplines.CO2),
	disciplines.AirfarePerRPK,
	disciplines.EnergyExpenditure,
}

// Generate creates output in the specified format
func Generate(result *dto.ScenarioResult, config Config) error {
	if result == nil {
		return fmt.Errorf("no scenario result to write")
	}

	switch config.Format {
	case "text":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	case "csv":
		return generateCSVOutput(result, config)
	case "xlsx":
		return generateXLSXOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// reportYears picks the prospection start, every decade after it and the end year
func reportYears(ti entities.TimeIndex) []int {
	years := []int{ti.ProspectionStartYear}
	for y := (ti.ProspectionStartYear/10 + 1) * 10; y < ti.EndYear; y += 10 {
		years = append(years, y)
	}
	if ti.EndYear != ti.ProspectionStartYear {
		years = append(years, ti.EndYear)
	}
	return years
}

// generateTextOutput creates human-readable text output
func generateTextOutput(result *dto.ScenarioResult, config Config) error {
	w := config.writer()
	if config.OutputDir != "" {
		if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		filename := filepath.Join(config.OutputDir, "scenario_results.txt")
		file, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("failed to create text file: %w", err)
		}
		defer file.Close()
		w = file
		if config.Verbose {
			defer fmt.Fprintf(config.writer(), "💾 Results saved to: %s\n", filename)
		}
	}

	fmt.Fprintf(w, "📊 Scenario Results Summary\n")
	fmt.Fprintf(w, "===========================\n\n")

	fmt.Fprintf(w, "Run ID: %s\n", result.RunID)
	fmt.Fprintf(w, "Horizon: %d-%d (prospection from %d)\n",
		result.TimeIndex.HistoricStartYear, result.TimeIndex.EndYear, result.TimeIndex.ProspectionStartYear)
	fmt.Fprintf(w, "Disciplines: %d\n", len(result.Order))
	fmt.Fprintf(w, "Converged: %t\n", result.Converged)
	if len(result.Iterations) > 0 {
		loops := make([]string, 0, len(result.Iterations))
		for loop := range result.Iterations {
			loops = append(loops, loop)
		}
		sort.Strings(loops)
		for _, loop := range loops {
			fmt.Fprintf(w, "  Loop %s: %d iterations\n", loop, result.Iterations[loop])
		}
	}
	fmt.Fprintf(w, "Computation Time: %v\n\n", config.RunTime)

	years := reportYears(result.TimeIndex)
	names := keyIndicators
	if config.Verbose {
		names = result.SeriesNames()
	}
	writeSeriesTable(w, result, names, years)

	for _, pathway := range result.PathwayNames() {
		vintages := result.Vintages[pathway]
		if len(vintages) == 0 {
			continue
		}
		fmt.Fprintf(w, "🏭 Vintages of %s:\n", pathway)
		fmt.Fprintf(w, "%-12s %-8s %-14s %-16s %-10s %-14s\n",
			"Commission", "EIS", "Capacity", "Production", "Lifespan", "CO2 g/MJ")
		fmt.Fprintf(w, "%-12s %-8s %-14s %-16s %-10s %-14s\n",
			"------------", "--------", "--------------", "----------------", "----------", "--------------")
		for _, v := range vintages {
			fmt.Fprintf(w, "%-12d %-8d %-14.4g %-16.4g %-10d %-14s\n",
				v.CommissioningYear,
				v.EISYear,
				v.Capacity,
				v.AnnualProduction,
				v.Lifespan,
				formatFloat(float64(v.CO2Factor)))
		}
		fmt.Fprintln(w)
	}

	if result.Costs != nil {
		fmt.Fprintf(w, "💶 Cumulative Costs:\n")
		fmt.Fprintf(w, "  Energy Expenditure:            %s\n", result.Costs.Expenditure.StringFixed(0))
		fmt.Fprintf(w, "  Discounted Energy Expenditure: %s\n", result.Costs.DiscountedExpenditure.StringFixed(0))
		fmt.Fprintf(w, "  BAU Energy Expenditure:        %s\n", result.Costs.BAUExpenditure.StringFixed(0))
		fmt.Fprintf(w, "  Extra Energy Expenditure:      %s\n", result.Costs.ExtraExpenditure.StringFixed(0))
		fmt.Fprintf(w, "  Carbon Tax:                    %s\n", result.Costs.CarbonTax.StringFixed(0))
		fmt.Fprintf(w, "  Discounted Carbon Tax:         %s\n", result.Costs.DiscountedCarbonTax.StringFixed(0))
		if !result.Costs.Complete {
			fmt.Fprintf(w, "⚠️  Totals are incomplete; consumption without a price in:\n")
			unpriced := make([]string, 0, len(result.Costs.Unpriced))
			for name := range result.Costs.Unpriced {
				unpriced = append(unpriced, name)
			}
			sort.Strings(unpriced)
			for _, name := range unpriced {
				fmt.Fprintf(w, "    %s: %v\n", name, result.Costs.Unpriced[name])
			}
		}
		fmt.Fprintln(w)
	}

	if !result.Converged {
		fmt.Fprintf(w, "⚠️  At least one feedback loop stopped before reaching tolerance\n")
	}

	return nil
}

func writeSeriesTable(w io.Writer, result *dto.ScenarioResult, names []string, years []int) {
	present := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := result.Series(name); ok {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return
	}

	fmt.Fprintf(w, "📈 Key Indicators:\n")
	fmt.Fprintf(w, "%-44s", "Variable")
	for _, y := range years {
		fmt.Fprintf(w, " %-12d", y)
	}
	fmt.Fprintln(w)
	for _, name := range present {
		ts, _ := result.Series(name)
		label := name
		if info, ok := result.Info[name]; ok && info.Unit != "" {
			label = fmt.Sprintf("%s [%s]", name, info.Unit)
		}
		fmt.Fprintf(w, "%-44s", label)
		for _, y := range years {
			v := math.NaN()
			if y >= ts.Start() && y <= ts.End() {
				v = ts.At(y)
			}
			fmt.Fprintf(w, " %-12s", formatFloat(v))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', 5, 64)
}

// generateJSONOutput creates JSON output
func generateJSONOutput(result *dto.ScenarioResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.writer(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "scenario_results.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}
