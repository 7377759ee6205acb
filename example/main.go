package main

import (
	"context"
	"fmt"

	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/application/services/scenario"
	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()

	ti, err := entities.NewTimeIndex(2000, 2020, 2050)
	if err != nil {
		fmt.Printf("❌ Invalid horizon: %v\n", err)
		return
	}

	// Create repositories
	pathwayRepo := memory.NewPathwayRepository(2)
	fleetRepo := memory.NewFleetRepository(1)
	paramStore := memory.NewParameterStore(32)

	// Set up a kerosene fleet with a biofuel blending mandate
	if err := setupSAFMandate(*ti, pathwayRepo, fleetRepo, paramStore); err != nil {
		fmt.Printf("❌ Scenario setup failed: %v\n", err)
		return
	}

	// Assemble the disciplines
	process, err := scenario.NewBuilder(pathwayRepo, fleetRepo, paramStore, nil).Build(scenario.Options{
		TimeIndex:       *ti,
		PriceElasticity: true,
		MDA:             mda.DefaultConfig(),
	})
	if err != nil {
		fmt.Printf("❌ Scenario assembly failed: %v\n", err)
		return
	}

	fmt.Println("✈️  Running SAF mandate scenario...")
	fmt.Printf("Horizon: %d-%d, prospection from %d\n", ti.HistoricStartYear, ti.EndYear, ti.ProspectionStartYear)
	fmt.Println()

	result, err := process.Compute(ctx)
	if err != nil {
		fmt.Printf("❌ Scenario failed: %v\n", err)
		return
	}

	// Display results
	fmt.Println("📊 Scenario Results:")
	fmt.Printf("  Run ID: %s\n", result.RunID)
	fmt.Printf("  Converged: %t\n", result.Converged)
	fmt.Printf("  Disciplines: %d\n", len(result.Order))
	fmt.Println()

	rpk, _ := result.Series("rpk")
	co2, _ := result.Series("co2_emissions")
	airfare, _ := result.Series("airfare_per_rpk")
	fmt.Println("📈 Trajectory:")
	for _, year := range []int{2019, 2030, 2040, 2050} {
		fmt.Printf("  %d: RPK %.3e | CO2 %.3e t | airfare %.4f €/RPK\n",
			year, rpk.At(year), co2.At(year), airfare.At(year))
	}
	fmt.Println()

	if result.Costs != nil {
		fmt.Println("💶 Cumulative Costs:")
		fmt.Printf("  Energy Expenditure: %s €\n", result.Costs.Expenditure.StringFixed(0))
		fmt.Printf("  Extra vs Kerosene:  %s €\n", result.Costs.ExtraExpenditure.StringFixed(0))
		fmt.Printf("  Carbon Tax:         %s €\n", result.Costs.CarbonTax.StringFixed(0))
		if !result.Costs.Complete {
			fmt.Println("  ⚠️  Some consumption has no price; totals are a lower bound")
		}
	}

	fmt.Println("\n✅ Scenario complete!")
}

func setupSAFMandate(ti entities.TimeIndex, pathwayRepo *memory.PathwayRepository, fleetRepo *memory.FleetRepository, paramStore *memory.ParameterStore) error {
	kerosene, err := entities.NewPathway("fossil_kerosene", entities.DropInFuel, entities.TopDown, true, entities.NoMandate)
	if err != nil {
		return err
	}
	hefa, err := entities.NewPathway("biofuel_hefa", entities.DropInFuel, entities.TopDown, false, entities.ShareMandate)
	if err != nil {
		return err
	}
	if err := pathwayRepo.LoadPathways([]*entities.Pathway{kerosene, hefa}); err != nil {
		return err
	}

	next, err := entities.NewAircraft("A321_NEXT", 2035, entities.DropInFuel, -20, -10, -10, -5)
	if err != nil {
		return err
	}
	category := &entities.Category{
		Name: "medium_range",
		Life: 25,
		Subcategories: []entities.Subcategory{{
			Name:  "narrow_body",
			Share: 100,
			OldReference: entities.ReferenceAircraft{
				Name:             "A320_CEO",
				EntryIntoService: 1988,
				Performance:      entities.AircraftPerformance{EnergyPerASK: 1.2, EmissionIndexNOx: 0.012, EmissionIndexSoot: 4e-5, DOCNonEnergy: 0.05},
			},
			RecentReference: entities.ReferenceAircraft{
				Name:             "A320_NEO",
				EntryIntoService: 2016,
				Performance:      entities.AircraftPerformance{EnergyPerASK: 1.0, EmissionIndexNOx: 0.014, EmissionIndexSoot: 3e-5, DOCNonEnergy: 0.045},
			},
			Aircraft: []entities.Aircraft{*next},
		}},
	}
	if err := fleetRepo.LoadCategories([]*entities.Category{category}); err != nil {
		return err
	}

	interpolate := func(points map[int]float64) entities.Value {
		ts, err := entities.InterpolateSeries(ti.HistoricStartYear, ti.EndYear, points)
		if err != nil {
			panic(err)
		}
		return entities.SeriesValue(ts)
	}
	constant := func(v float64) entities.Value { return entities.SeriesValue(ti.ConstantSeries(v)) }

	return paramStore.LoadParameters(map[string]entities.Value{
		"rpk_init":                            interpolate(map[int]float64{2000: 3.4e12, 2019: 8.7e12}),
		"rpk_growth_rate":                     constant(3),
		"load_factor":                         interpolate(map[int]float64{2000: 72, 2019: 82, 2050: 85}),
		"price_elasticity":                    entities.ScalarValue(-0.4),
		"airfare_margin":                      entities.ScalarValue(5),
		"medium_range_traffic_share":          constant(100),
		"nox_erf_coefficient":                 entities.ScalarValue(5.5),
		"soot_erf_coefficient":                entities.ScalarValue(100.7),
		"private_discount_rate":               entities.ScalarValue(0.08),
		"social_discount_rate":                entities.ScalarValue(0.032),
		"carbon_price":                        interpolate(map[int]float64{2019: 0, 2025: 50, 2050: 250}),
		"carbon_value":                        interpolate(map[int]float64{2020: 54, 2030: 250, 2050: 775}),
		"fossil_kerosene_mfsp":                interpolate(map[int]float64{2000: 0.006, 2019: 0.014, 2050: 0.016}),
		"fossil_kerosene_co2_emission_factor": constant(88.7),
		"biofuel_hefa_share_mandate":          interpolate(map[int]float64{2024: 0, 2030: 6, 2050: 70}),
		"biofuel_hefa_mfsp":                   constant(0.03),
		"biofuel_hefa_co2_emission_factor":    constant(20.7),
	})
}
