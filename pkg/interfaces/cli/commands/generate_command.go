package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/infrastructure/config"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Categories   int    // Number of fleet categories
	BiofuelPaths int    // Top-down drop-in pathways under share mandates
	EfuelPaths   int    // Bottom-up drop-in pathways under quantity mandates
	Hydrogen     bool   // Add hydrogen pathways and hydrogen aircraft
	StartYear    int    // First historic year
	Prospection  int    // First prospective year
	EndYear      int    // Last year of the horizon
	OutputDir    string // Output directory for generated files
	Seed         int64  // Random seed for reproducible generation
	Help         bool   // Show help
	Verbose      bool   // Verbose output
}

// GenerateCommand handles scenario generation
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
	}
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}

	ti, err := entities.NewTimeIndex(cmd.config.StartYear, cmd.config.Prospection, cmd.config.EndYear)
	if err != nil {
		return fmt.Errorf("invalid horizon: %w", err)
	}
	if cmd.config.Categories < 1 {
		return fmt.Errorf("at least one fleet category is required, got %d", cmd.config.Categories)
	}
	if cmd.config.BiofuelPaths < 0 || cmd.config.EfuelPaths < 0 {
		return fmt.Errorf("pathway counts cannot be negative")
	}

	if cmd.config.Verbose {
		fmt.Printf(
			"🔧 Generating scenario with %d categories, %d biofuel and %d e-fuel pathways, hydrogen: %t\n",
			cmd.config.Categories,
			cmd.config.BiofuelPaths,
			cmd.config.EfuelPaths,
			cmd.config.Hydrogen,
		)
		fmt.Printf("📅 Horizon: %d-%d (prospection from %d)\n", ti.HistoricStartYear, ti.EndYear, ti.ProspectionStartYear)
		fmt.Printf("📁 Output directory: %s\n", cmd.config.OutputDir)
		fmt.Printf("🎲 Random seed: %d\n", cmd.config.Seed)
	}

	// Generate pathways and their parameters
	if cmd.config.Verbose {
		fmt.Println("🛢️  Generating energy pathways...")
	}
	scenario := &config.Scenario{}
	params := make(map[string]entities.Value)
	if err := cmd.generatePathways(*ti, scenario, params); err != nil {
		return fmt.Errorf("failed to generate pathways: %w", err)
	}

	// Generate fleet
	if cmd.config.Verbose {
		fmt.Println("✈️  Generating fleet...")
	}
	if err := cmd.generateFleet(*ti, scenario, params); err != nil {
		return fmt.Errorf("failed to generate fleet: %w", err)
	}

	// Generate traffic and economics
	if cmd.config.Verbose {
		fmt.Println("📈 Generating traffic and economic parameters...")
	}
	history, err := cmd.generateTraffic(*ti, params)
	if err != nil {
		return fmt.Errorf("failed to generate traffic: %w", err)
	}

	// Write files
	ws := &config.Workspace{
		Scenario: scenario,
		Parameters: &config.ParameterFile{
			TimeIndex:  *ti,
			Parameters: params,
			Info:       generatedInfo(),
		},
	}
	if err := config.WriteWorkspace(cmd.config.OutputDir, ws); err != nil {
		return fmt.Errorf("failed to write scenario: %w", err)
	}
	if err := writeHistory(filepath.Join(cmd.config.OutputDir, config.HistoryFileName), history); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Printf("✅ Scenario generated successfully in %s\n", cmd.config.OutputDir)
	}

	return nil
}

// generatePathways creates one default pathway per carrier plus the
// requested mandated alternatives
func (cmd *GenerateCommand) generatePathways(ti entities.TimeIndex, s *config.Scenario, params map[string]entities.Value) error {
	add := func(name string, carrier entities.EnergyType, model entities.ModelKind, isDefault bool, mandate entities.MandateKind, resources, processes []string) error {
		p, err := entities.NewPathway(name, carrier, model, isDefault, mandate)
		if err != nil {
			return err
		}
		p.Resources = resources
		p.Processes = processes
		s.Pathways = append(s.Pathways, p)
		return nil
	}

	// Fossil kerosene is always the drop-in default
	if err := add("fossil_kerosene", entities.DropInFuel, entities.TopDown, true, entities.NoMandate, nil, nil); err != nil {
		return err
	}
	params["fossil_kerosene_mfsp"] = cmd.ramp(ti, 0.006, 0.014, 0.016+0.01*cmd.rand.Float64())
	params["fossil_kerosene_co2_emission_factor"] = constantValue(ti, 88.7)

	// Biofuels split a share mandate of at most 50%
	for i := 1; i <= cmd.config.BiofuelPaths; i++ {
		name := fmt.Sprintf("biofuel_%d", i)
		if err := add(name, entities.DropInFuel, entities.TopDown, false, entities.ShareMandate, nil, nil); err != nil {
			return err
		}
		target := 50 / float64(cmd.config.BiofuelPaths) * (0.5 + 0.5*cmd.rand.Float64())
		params[name+"_share_mandate"] = cmd.mandate(ti, target)
		params[name+"_mfsp"] = constantValue(ti, 0.02+0.03*cmd.rand.Float64())
		params[name+"_co2_emission_factor"] = constantValue(ti, 10+30*cmd.rand.Float64())
	}

	usesElectricity := cmd.config.EfuelPaths > 0 || cmd.config.Hydrogen

	// E-fuels ramp up to a fraction of today's kerosene demand
	for i := 1; i <= cmd.config.EfuelPaths; i++ {
		name := fmt.Sprintf("efuel_%d", i)
		if err := add(name, entities.DropInFuel, entities.BottomUp, false, entities.QuantityMandate, []string{"electricity"}, nil); err != nil {
			return err
		}
		params[name+"_quantity_mandate"] = cmd.mandate(ti, 1e11+4e11*cmd.rand.Float64())
		cmd.plantParameters(ti, name, params)
		params[name+"_electricity_specific_consumption"] = constantValue(ti, 0.5+0.1*cmd.rand.Float64())
	}

	if cmd.config.Hydrogen {
		if err := add("h2_grey", entities.Hydrogen, entities.TopDown, true, entities.NoMandate, nil, nil); err != nil {
			return err
		}
		params["h2_grey_mfsp"] = constantValue(ti, 0.01+0.005*cmd.rand.Float64())
		params["h2_grey_co2_emission_factor"] = constantValue(ti, 95)

		if err := add("h2_electrolysis", entities.Hydrogen, entities.BottomUp, false, entities.ShareMandate, []string{"electricity"}, []string{"liquefaction"}); err != nil {
			return err
		}
		params["h2_electrolysis_share_mandate"] = cmd.mandate(ti, 30+40*cmd.rand.Float64())
		cmd.plantParameters(ti, "h2_electrolysis", params)
		params["h2_electrolysis_electricity_specific_consumption"] = constantValue(ti, 0.45+0.05*cmd.rand.Float64())

		s.Processes = append(s.Processes, &entities.Process{Name: "liquefaction"})
		params["liquefaction_unit_cost"] = constantValue(ti, 0.01)
		params["liquefaction_co2_emission_factor"] = constantValue(ti, 1.5)
	}

	if usesElectricity {
		s.Resources = append(s.Resources, &entities.Resource{Name: "electricity", Unit: "kWh"})
		params["electricity_price"] = constantValue(ti, 0.04+0.04*cmd.rand.Float64())
		params["electricity_co2_emission_factor"] = cmd.ramp(ti, 300, 60, 5+20*cmd.rand.Float64())
		params["electricity_availability"] = constantValue(ti, 5e12)
	}

	return nil
}

// plantParameters draws the techno-economic inputs of a bottom-up pathway
func (cmd *GenerateCommand) plantParameters(ti entities.TimeIndex, name string, params map[string]entities.Value) {
	capex := 100 + 100*cmd.rand.Float64()
	params[name+"_load_factor"] = entities.ScalarValue(float64(70 + cmd.rand.Intn(25)))
	params[name+"_lifespan"] = entities.ScalarValue(float64(20 + cmd.rand.Intn(11)))
	params[name+"_construction_time"] = entities.ScalarValue(float64(2 + cmd.rand.Intn(3)))
	params[name+"_capex"] = cmd.ramp(ti, capex, capex, capex*(0.4+0.3*cmd.rand.Float64()))
	params[name+"_fixed_opex"] = constantValue(ti, 3+5*cmd.rand.Float64())
	params[name+"_variable_opex"] = constantValue(ti, 0.001+0.002*cmd.rand.Float64())
	params[name+"_co2_emission_factor"] = constantValue(ti, 0)
}

// generateFleet creates categories with an old and a recent reference per
// subcategory and a few future aircraft
func (cmd *GenerateCommand) generateFleet(ti entities.TimeIndex, s *config.Scenario, params map[string]entities.Value) error {
	trafficShares := cmd.split(cmd.config.Categories)
	recentEIS := ti.ProspectionStartYear - 5

	for i := 0; i < cmd.config.Categories; i++ {
		categoryName := fmt.Sprintf("category_%d", i+1)
		category := &entities.Category{Name: categoryName, Life: 20 + cmd.rand.Intn(11)}

		numSubs := 1 + cmd.rand.Intn(3)
		subShares := cmd.split(numSubs)
		for j := 0; j < numSubs; j++ {
			prefix := fmt.Sprintf("C%dS%d", i+1, j+1)
			recent := cmd.performance()
			old := recent
			old.EnergyPerASK *= 1.15 + 0.15*cmd.rand.Float64()
			old.DOCNonEnergy *= 1.1

			sub := entities.Subcategory{
				Name:  fmt.Sprintf("subcategory_%d", j+1),
				Share: subShares[j],
				OldReference: entities.ReferenceAircraft{
					Name:             prefix + "_OLD",
					EntryIntoService: recentEIS - 15 - cmd.rand.Intn(10),
					Performance:      old,
				},
				RecentReference: entities.ReferenceAircraft{
					Name:             prefix + "_RECENT",
					EntryIntoService: recentEIS + cmd.rand.Intn(5),
					Performance:      recent,
				},
			}

			numAircraft := cmd.rand.Intn(3)
			for k := 0; k < numAircraft; k++ {
				energy := entities.DropInFuel
				if cmd.config.Hydrogen && cmd.rand.Float64() < 0.3 {
					energy = entities.Hydrogen
				}
				ac, err := entities.NewAircraft(
					fmt.Sprintf("%s_NEXT%d", prefix, k+1),
					ti.ProspectionStartYear+5+cmd.rand.Intn(maxInt(1, ti.EndYear-ti.ProspectionStartYear-10)),
					energy,
					-5-25*cmd.rand.Float64(),
					-5-30*cmd.rand.Float64(),
					-5-30*cmd.rand.Float64(),
					-10+15*cmd.rand.Float64(),
				)
				if err != nil {
					return err
				}
				sub.Aircraft = append(sub.Aircraft, *ac)
			}
			category.Subcategories = append(category.Subcategories, sub)
		}

		if err := category.Validate(); err != nil {
			return err
		}
		s.Categories = append(s.Categories, category)
		params[categoryName+"_traffic_share"] = constantValue(ti, trafficShares[i])
	}

	params["nox_erf_coefficient"] = entities.ScalarValue(5.5)
	params["soot_erf_coefficient"] = entities.ScalarValue(100.7)
	return nil
}

// performance draws a recent-reference aircraft
func (cmd *GenerateCommand) performance() entities.AircraftPerformance {
	return entities.AircraftPerformance{
		EnergyPerASK:      0.8 + 0.6*cmd.rand.Float64(),
		EmissionIndexNOx:  0.01 + 0.006*cmd.rand.Float64(),
		EmissionIndexSoot: 2e-5 + 3e-5*cmd.rand.Float64(),
		DOCNonEnergy:      0.03 + 0.03*cmd.rand.Float64(),
	}
}

// generateTraffic draws demand and economic parameters. Historic traffic is
// returned separately and written as a history table.
func (cmd *GenerateCommand) generateTraffic(ti entities.TimeIndex, params map[string]entities.Value) (map[string]entities.TimeSeries, error) {
	initial := 2e12 + 2e12*cmd.rand.Float64()
	historicGrowth := 3 + 3*cmd.rand.Float64()
	rpk := entities.NewTimeSeries(ti.HistoricStartYear, ti.LastHistoricYear())
	for year := ti.HistoricStartYear; year <= ti.LastHistoricYear(); year++ {
		rpk.Set(year, initial*math.Pow(1+historicGrowth/100, float64(year-ti.HistoricStartYear)))
	}

	params["rpk_growth_rate"] = constantValue(ti, 1+3*cmd.rand.Float64())
	params["load_factor"] = cmd.ramp(ti, 72, 82, 85)
	params["price_elasticity"] = entities.ScalarValue(-0.2 - 0.8*cmd.rand.Float64())
	params["airfare_margin"] = entities.ScalarValue(float64(2 + cmd.rand.Intn(8)))

	params["private_discount_rate"] = entities.ScalarValue(0.08)
	params["social_discount_rate"] = entities.ScalarValue(0.032)
	params["carbon_price"] = cmd.ramp(ti, 0, 0, 100+300*cmd.rand.Float64())
	params["carbon_value"] = cmd.ramp(ti, 0, 54, 775)

	return map[string]entities.TimeSeries{"rpk_init": rpk}, nil
}

// ramp interpolates from start to today and on to end over the horizon
func (cmd *GenerateCommand) ramp(ti entities.TimeIndex, start, today, end float64) entities.Value {
	ts, err := entities.InterpolateSeries(ti.HistoricStartYear, ti.EndYear, map[int]float64{
		ti.HistoricStartYear:  start,
		ti.LastHistoricYear(): today,
		ti.EndYear:            end,
	})
	if err != nil {
		panic(err)
	}
	return entities.SeriesValue(ts)
}

// mandate is zero until a random start year, then rises linearly to target
func (cmd *GenerateCommand) mandate(ti entities.TimeIndex, target float64) entities.Value {
	span := ti.EndYear - ti.ProspectionStartYear
	startYear := ti.ProspectionStartYear + cmd.rand.Intn(maxInt(1, span/2))
	ts := ti.ZeroSeries().Map(func(year int, _ float64) float64 {
		if year < startYear {
			return 0
		}
		return target * float64(year-startYear+1) / float64(ti.EndYear-startYear+1)
	})
	return entities.SeriesValue(ts)
}

// split divides 100% into n random integer shares
func (cmd *GenerateCommand) split(n int) []float64 {
	weights := make([]int, n)
	total := 0
	for i := range weights {
		weights[i] = 1 + cmd.rand.Intn(9)
		total += weights[i]
	}
	shares := make([]float64, n)
	remaining := 100
	for i := 0; i < n-1; i++ {
		shares[i] = float64(100 * weights[i] / total)
		remaining -= int(shares[i])
	}
	shares[n-1] = float64(remaining)
	return shares
}

func constantValue(ti entities.TimeIndex, v float64) entities.Value {
	return entities.SeriesValue(ti.ConstantSeries(v))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func generatedInfo() []entities.VariableInfo {
	return []entities.VariableInfo{
		{Name: "rpk", Unit: "RPK", Description: "Revenue passenger kilometres"},
		{Name: "ask", Unit: "ASK", Description: "Available seat kilometres"},
		{Name: "co2_emissions", Unit: "tCO2", Description: "Total CO2 emissions of aviation energy"},
		{Name: "energy_expenditure", Unit: "€", Description: "Yearly spending on aviation energy"},
	}
}

// writeHistory writes series as a year-indexed table readable by the CSV loader
func writeHistory(path string, series map[string]entities.TimeSeries) error {
	rpk := series["rpk_init"]

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"year", "rpk_init"}); err != nil {
		return err
	}
	for year := rpk.Start(); year <= rpk.End(); year++ {
		record := []string{strconv.Itoa(year), strconv.FormatFloat(rpk.At(year), 'g', -1, 64)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// printHelp shows usage information
func (cmd *GenerateCommand) printHelp() {
	fmt.Println(`Aerosim Scenario Generator

USAGE:
    aerosim generate [OPTIONS]

OPTIONS:
    -categories <N>     Number of fleet categories (default: 2)
    -biofuels <N>       Number of share-mandated biofuel pathways (default: 1)
    -efuels <N>         Number of quantity-mandated e-fuel pathways (default: 1)
    -hydrogen           Add hydrogen pathways and hydrogen aircraft
    -start <year>       First historic year (default: 2000)
    -prospection <year> First prospective year (default: 2020)
    -end <year>         Last year of the horizon (default: 2050)
    -output <dir>       Output directory (required)
    -seed <N>           Random seed for reproducible generation
    -verbose            Enable verbose output
    -help               Show this help message

OUTPUT FILES:
    scenario.yaml       Pathways, resources, processes and fleet
    parameters.yaml     Time index and input parameters
    history.csv         Historic traffic (rpk_init)

EXAMPLES:
    # Generate a drop-in only scenario
    aerosim generate -output scenarios/small -seed 42

    # Generate a larger scenario with hydrogen
    aerosim generate -categories 4 -biofuels 2 -efuels 2 -hydrogen -output scenarios/large`)
}
