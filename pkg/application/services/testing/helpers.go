package testing

import (
	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/infrastructure/config"
	"github.com/vsinha/aerosim/pkg/infrastructure/repositories/memory"
)

// mustCreatePathway is a helper for fixtures - panics on validation error
func mustCreatePathway(
	name string,
	carrier entities.EnergyType,
	model entities.ModelKind,
	isDefault bool,
	mandate entities.MandateKind,
	resources []string,
	processes []string,
) *entities.Pathway {
	p, err := entities.NewPathway(name, carrier, model, isDefault, mandate)
	if err != nil {
		panic(err)
	}
	p.Resources = resources
	p.Processes = processes
	return p
}

// mustCreateAircraft is a helper for fixtures - panics on validation error
func mustCreateAircraft(
	name string,
	entryIntoService int,
	energyType entities.EnergyType,
	consumptionGain, noxGain, sootGain, docGain float64,
) entities.Aircraft {
	ac, err := entities.NewAircraft(name, entryIntoService, energyType, consumptionGain, noxGain, sootGain, docGain)
	if err != nil {
		panic(err)
	}
	return *ac
}

// mustInterpolate is a helper for fixtures - panics on invalid reference points
func mustInterpolate(ti entities.TimeIndex, points map[int]float64) entities.Value {
	ts, err := entities.InterpolateSeries(ti.HistoricStartYear, ti.EndYear, points)
	if err != nil {
		panic(err)
	}
	return entities.SeriesValue(ts)
}

func constant(ti entities.TimeIndex, v float64) entities.Value {
	return entities.SeriesValue(ti.ConstantSeries(v))
}

func scalar(v float64) entities.Value {
	return entities.ScalarValue(v)
}

// ReferenceTimeIndex is the 2000 / 2020 / 2050 horizon used by every fixture
func ReferenceTimeIndex() entities.TimeIndex {
	ti, err := entities.NewTimeIndex(2000, 2020, 2050)
	if err != nil {
		panic(err)
	}
	return *ti
}

// BuildReferenceScenario builds a two-carrier scenario: fossil kerosene and
// HEFA biofuel (top-down), electrofuel and electrolytic hydrogen (bottom-up)
// and grey hydrogen, flown by a short-range and a long-range fleet
func BuildReferenceScenario() (*memory.ParameterStore, *memory.PathwayRepository, *memory.FleetRepository, entities.TimeIndex) {
	ti := ReferenceTimeIndex()

	pathwayRepo := memory.NewPathwayRepository(5)
	pathways := []*entities.Pathway{
		mustCreatePathway("fossil_kerosene", entities.DropInFuel, entities.TopDown, true, entities.NoMandate, nil, nil),
		mustCreatePathway("biofuel_hefa", entities.DropInFuel, entities.TopDown, false, entities.ShareMandate, nil, nil),
		mustCreatePathway("efuel", entities.DropInFuel, entities.BottomUp, false, entities.QuantityMandate, []string{"electricity"}, nil),
		mustCreatePathway("h2_grey", entities.Hydrogen, entities.TopDown, true, entities.NoMandate, nil, nil),
		mustCreatePathway("h2_electrolysis", entities.Hydrogen, entities.BottomUp, false, entities.ShareMandate, []string{"electricity"}, []string{"liquefaction"}),
	}
	if err := pathwayRepo.LoadPathways(pathways); err != nil {
		panic(err)
	}
	if err := pathwayRepo.LoadResources([]*entities.Resource{{Name: "electricity", Unit: "kWh"}}); err != nil {
		panic(err)
	}
	if err := pathwayRepo.LoadProcesses([]*entities.Process{{Name: "liquefaction"}}); err != nil {
		panic(err)
	}

	fleetRepo := memory.NewFleetRepository(2)
	if err := fleetRepo.LoadCategories(referenceFleet()); err != nil {
		panic(err)
	}

	paramStore := memory.NewParameterStore(64)
	if err := paramStore.LoadParameters(referenceParameters(ti)); err != nil {
		panic(err)
	}
	if err := paramStore.LoadInfo(referenceInfo()); err != nil {
		panic(err)
	}

	return paramStore, pathwayRepo, fleetRepo, ti
}

// BuildStepDemandScenario is the reference scenario with the electrofuel
// mandate replaced by a step of 1e6 MJ/yr from 2021, commissioned at a 90%
// load factor over 25 years
func BuildStepDemandScenario() (*memory.ParameterStore, *memory.PathwayRepository, *memory.FleetRepository, entities.TimeIndex) {
	paramStore, pathwayRepo, fleetRepo, ti := BuildReferenceScenario()

	step := ti.ZeroSeries().Map(func(year int, _ float64) float64 {
		if year >= 2021 {
			return 1e6
		}
		return 0
	})
	overrides := map[string]entities.Value{
		"efuel_quantity_mandate": entities.SeriesValue(step),
		"efuel_load_factor":      scalar(90),
		"efuel_lifespan":         scalar(25),
	}
	for name, v := range overrides {
		if err := paramStore.Set(name, v); err != nil {
			panic(err)
		}
	}
	return paramStore, pathwayRepo, fleetRepo, ti
}

// ReferenceWorkspace returns the reference scenario in its file form, ready
// to be written with config.WriteWorkspace
func ReferenceWorkspace() *config.Workspace {
	paramStore, pathwayRepo, fleetRepo, ti := BuildReferenceScenario()

	pathways, _ := pathwayRepo.GetAllPathways()
	resources, _ := pathwayRepo.GetAllResources()
	processes, _ := pathwayRepo.GetAllProcesses()
	categories, _ := fleetRepo.GetAllCategories()

	return &config.Workspace{
		Scenario: &config.Scenario{
			Pathways:   pathways,
			Resources:  resources,
			Processes:  processes,
			Categories: categories,
		},
		Parameters: &config.ParameterFile{
			TimeIndex:  ti,
			Parameters: paramStore.Snapshot(),
			Info:       referenceInfo(),
		},
	}
}

func referenceFleet() []*entities.Category {
	kerosene := entities.AircraftPerformance{
		EnergyPerASK:      1.0,
		EmissionIndexNOx:  0.014,
		EmissionIndexSoot: 3e-5,
		DOCNonEnergy:      0.045,
	}
	older := entities.AircraftPerformance{
		EnergyPerASK:      1.2,
		EmissionIndexNOx:  0.012,
		EmissionIndexSoot: 4e-5,
		DOCNonEnergy:      0.05,
	}

	return []*entities.Category{
		{
			Name: "short_range",
			Life: 25,
			Subcategories: []entities.Subcategory{
				{
					Name:            "narrow_body",
					Share:           80,
					OldReference:    entities.ReferenceAircraft{Name: "SR_OLD", EntryIntoService: 1988, Performance: older},
					RecentReference: entities.ReferenceAircraft{Name: "SR_RECENT", EntryIntoService: 2016, Performance: kerosene},
					Aircraft: []entities.Aircraft{
						mustCreateAircraft("SR_NEXT", 2035, entities.DropInFuel, -20, -10, -10, -5),
						mustCreateAircraft("SR_H2", 2040, entities.Hydrogen, -5, -40, -99, 5),
					},
				},
				{
					Name:            "regional",
					Share:           20,
					OldReference:    entities.ReferenceAircraft{Name: "RG_OLD", EntryIntoService: 1993, Performance: older},
					RecentReference: entities.ReferenceAircraft{Name: "RG_RECENT", EntryIntoService: 2012, Performance: kerosene},
				},
			},
		},
		{
			Name: "long_range",
			Life: 25,
			Subcategories: []entities.Subcategory{{
				Name:            "wide_body",
				Share:           100,
				OldReference:    entities.ReferenceAircraft{Name: "LR_OLD", EntryIntoService: 1995, Performance: older},
				RecentReference: entities.ReferenceAircraft{Name: "LR_RECENT", EntryIntoService: 2014, Performance: kerosene},
				Aircraft: []entities.Aircraft{
					mustCreateAircraft("LR_NEXT", 2032, entities.DropInFuel, -15, -5, -5, -3),
				},
			}},
		},
	}
}

func referenceParameters(ti entities.TimeIndex) map[string]entities.Value {
	return map[string]entities.Value{
		// Traffic
		"rpk_init":         mustInterpolate(ti, map[int]float64{2000: 3.4e12, 2019: 8.7e12}),
		"rpk_growth_rate":  constant(ti, 3),
		"load_factor":      mustInterpolate(ti, map[int]float64{2000: 72, 2019: 82, 2050: 85}),
		"price_elasticity": scalar(-0.4),
		"airfare_margin":   scalar(5),

		// Fleet
		"short_range_traffic_share": constant(ti, 30),
		"long_range_traffic_share":  constant(ti, 70),
		"nox_erf_coefficient":       scalar(5.5),
		"soot_erf_coefficient":      scalar(100.7),

		// Economics
		"private_discount_rate": scalar(0.08),
		"social_discount_rate":  scalar(0.032),
		"carbon_price":          mustInterpolate(ti, map[int]float64{2019: 0, 2025: 50, 2050: 250}),
		"carbon_value":          mustInterpolate(ti, map[int]float64{2020: 54, 2030: 250, 2050: 775}),

		// Shared resources and processes
		"electricity_price":                constant(ti, 0.06),
		"electricity_co2_emission_factor":  mustInterpolate(ti, map[int]float64{2020: 60, 2050: 10}),
		"electricity_availability":         constant(ti, 5e12),
		"liquefaction_unit_cost":           constant(ti, 0.01),
		"liquefaction_co2_emission_factor": constant(ti, 1.5),

		// Fossil kerosene
		"fossil_kerosene_mfsp":                mustInterpolate(ti, map[int]float64{2000: 0.006, 2019: 0.014, 2050: 0.016}),
		"fossil_kerosene_co2_emission_factor": constant(ti, 88.7),

		// HEFA biofuel
		"biofuel_hefa_share_mandate":       mustInterpolate(ti, map[int]float64{2024: 0, 2030: 6, 2050: 35}),
		"biofuel_hefa_mfsp":                constant(ti, 0.03),
		"biofuel_hefa_co2_emission_factor": constant(ti, 20.7),

		// Electrofuel
		"efuel_quantity_mandate":                 mustInterpolate(ti, map[int]float64{2029: 0, 2030: 5e10, 2050: 1.5e12}),
		"efuel_load_factor":                      scalar(90),
		"efuel_lifespan":                         scalar(25),
		"efuel_construction_time":                scalar(3),
		"efuel_capex":                            mustInterpolate(ti, map[int]float64{2020: 180, 2050: 110}),
		"efuel_fixed_opex":                       constant(ti, 7),
		"efuel_variable_opex":                    constant(ti, 0.002),
		"efuel_electricity_specific_consumption": constant(ti, 0.55),
		"efuel_co2_emission_factor":              constant(ti, 0),

		// Grey hydrogen
		"h2_grey_mfsp":                constant(ti, 0.012),
		"h2_grey_co2_emission_factor": constant(ti, 95),

		// Electrolytic hydrogen
		"h2_electrolysis_share_mandate":                    mustInterpolate(ti, map[int]float64{2035: 0, 2050: 60}),
		"h2_electrolysis_load_factor":                      scalar(80),
		"h2_electrolysis_lifespan":                         scalar(20),
		"h2_electrolysis_construction_time":                scalar(2),
		"h2_electrolysis_capex":                            mustInterpolate(ti, map[int]float64{2020: 150, 2050: 70}),
		"h2_electrolysis_fixed_opex":                       constant(ti, 5),
		"h2_electrolysis_variable_opex":                    constant(ti, 0.001),
		"h2_electrolysis_electricity_specific_consumption": constant(ti, 0.46),
		"h2_electrolysis_co2_emission_factor":              constant(ti, 0),
	}
}

func referenceInfo() []entities.VariableInfo {
	return []entities.VariableInfo{
		{Name: "rpk", Unit: "RPK", Description: "Revenue passenger kilometres"},
		{Name: "ask", Unit: "ASK", Description: "Available seat kilometres"},
		{Name: "co2_emissions", Unit: "tCO2", Description: "Total CO2 emissions of aviation energy"},
		{Name: "energy_expenditure", Unit: "€", Description: "Yearly spending on aviation energy"},
		{Name: "airfare_per_rpk", Unit: "€/RPK", Description: "Average airfare per passenger kilometre"},
		{Name: "rpk_growth_rate", Unit: "%", Description: "Yearly traffic growth"},
	}
}
