package disciplines

import (
	"context"
	"math"
	"testing"

	"github.com/go-kit/log"

	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/infrastructure/events"
)

func testTimeIndex(t *testing.T) entities.TimeIndex {
	t.Helper()
	ti, err := entities.NewTimeIndex(2000, 2020, 2050)
	if err != nil {
		t.Fatalf("Failed to create time index: %v", err)
	}
	return *ti
}

func mustPathway(t *testing.T, name string, carrier entities.EnergyType, model entities.ModelKind, isDefault bool, mandate entities.MandateKind) *entities.Pathway {
	t.Helper()
	p, err := entities.NewPathway(name, carrier, model, isDefault, mandate)
	if err != nil {
		t.Fatalf("Failed to create pathway %s: %v", name, err)
	}
	return p
}

func series(ts entities.TimeSeries) entities.Value { return entities.SeriesValue(ts) }
func scalar(v float64) entities.Value { return entities.ScalarValue(v) }

func compute(t *testing.T, d mda.Discipline, values map[string]entities.Value) map[string]entities.Value {
	t.Helper()
	if err := d.Descriptor().Validate(); err != nil {
		t.Fatalf("Invalid descriptor: %v", err)
	}
	out, err := d.Compute(context.Background(), mda.NewInputs(values))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	for _, port := range d.Descriptor().Outputs {
		if _, ok := out[port.Name]; !ok {
			t.Fatalf("Missing output %s", port.Name)
		}
	}
	return out
}

func expectNear(t *testing.T, expected, got, tol float64) {
	t.Helper()
	if math.Abs(expected-got) > tol {
		t.Errorf("Expected %g, got %g", expected, got)
	}
}

func expectError(t *testing.T, err error, expected string) {
	t.Helper()
	if err == nil || err.Error() != expected {
		t.Errorf("Expected error %q, got %v", expected, err)
	}
}

func TestTraffic_GrowthAndLoadFactor(t *testing.T) {
	ti := testTimeIndex(t)
	d := NewTrafficDiscipline(ti, false)

	out := compute(t, d, map[string]entities.Value{
		RPKInit:       series(entities.NewTimeSeriesFilled(2000, 2019, 100)),
		RPKGrowthRate: series(ti.ConstantSeries(10)),
		LoadFactor:    series(ti.ConstantSeries(80)),
	})

	rpk := out[RPK].Series()
	if got := rpk.At(2019); got != 100.0 {
		t.Errorf("Expected 100.0, got %v", got)
	}
	expectNear(t, 110, rpk.At(2020), 1e-9)
	expectNear(t, 121, rpk.At(2021), 1e-9)
	expectNear(t, 137.5, out[ASK].Series().At(2020), 1e-9)
}

func TestTraffic_MissingLastHistoricYear(t *testing.T) {
	ti := testTimeIndex(t)
	d := NewTrafficDiscipline(ti, false)

	_, err := d.Compute(context.Background(), mda.NewInputs(map[string]entities.Value{
		RPKInit:       series(entities.NewTimeSeriesFilled(2000, 2010, 100)),
		RPKGrowthRate: series(ti.ConstantSeries(10)),
		LoadFactor:    series(ti.ConstantSeries(80)),
	}))
	expectError(t, err, "rpk_init must be defined in 2019")
}

func TestTraffic_PriceElasticity(t *testing.T) {
	ti := testTimeIndex(t)
	d := NewTrafficDiscipline(ti, true)

	airfare := ti.ConstantSeries(1)
	airfare.Set(2021, 2)
	inputs := map[string]entities.Value{
		RPKInit:         series(entities.NewTimeSeriesFilled(2000, 2019, 100)),
		RPKGrowthRate:   series(ti.ConstantSeries(10)),
		LoadFactor:      series(ti.ConstantSeries(80)),
		PriceElasticity: scalar(-1),
		AirfarePerRPK:   series(airfare),
	}
	rpk := compute(t, d, inputs)[RPK].Series()

	expectNear(t, 110, rpk.At(2020), 1e-9)
	// doubled fare halves traffic
	expectNear(t, 60.5, rpk.At(2021), 1e-9)
	// the growth chain ignores the fare
	expectNear(t, 133.1, rpk.At(2022), 1e-9)

	// Before any airfare exists the multiplier is 1
	inputs[AirfarePerRPK] = series(entities.TimeSeries{})
	rpk = compute(t, d, inputs)[RPK].Series()
	expectNear(t, 121, rpk.At(2021), 1e-9)
}

func TestFleet_EnergyAndCosts(t *testing.T) {
	ti := testTimeIndex(t)
	perf := entities.AircraftPerformance{EnergyPerASK: 1, DOCNonEnergy: 0.1, EmissionIndexNOx: 0.01}
	category := entities.Category{
		Name: "short_range",
		Life: 20,
		Subcategories: []entities.Subcategory{{
			Name:            "narrow_body",
			Share:           100,
			OldReference:    entities.ReferenceAircraft{Name: "OLD", EntryIntoService: 1970, Performance: perf},
			RecentReference: entities.ReferenceAircraft{Name: "RECENT", EntryIntoService: 1990, Performance: perf},
		}},
	}
	d, err := NewFleetDiscipline(ti, category)
	if err != nil {
		t.Fatalf("Failed to create discipline: %v", err)
	}

	out := compute(t, d, map[string]entities.Value{
		ASK:                                 series(ti.ConstantSeries(1000)),
		CategoryTrafficShare("short_range"): series(ti.ConstantSeries(50)),
	})

	expectNear(t, 500, out[EnergyConsumption(entities.DropInFuel)].Series().At(2030), 1e-9)
	if got := out[EnergyConsumption(entities.Hydrogen)].Series().At(2030); got != 0.0 {
		t.Errorf("Expected 0.0, got %v", got)
	}
	expectNear(t, 50, out[DOCNonEnergy].Series().At(2030), 1e-9)
	expectNear(t, 100, out["short_range:dropin_fuel_share"].Series().At(2030), 1e-9)
	expectNear(t, 0.01, out["short_range:dropin_fuel_emission_index_nox"].Series().At(2030), 1e-12)

	old := out["short_range:narrow_body:OLD:share"].Series().At(2030)
	recent := out["short_range:narrow_body:RECENT:share"].Series().At(2030)
	expectNear(t, 100, old+recent, 1e-9)
}

func TestNonCO2_Emissions(t *testing.T) {
	ti := testTimeIndex(t)
	d := NewNonCO2Discipline(ti, []string{"sr"})

	values := map[string]entities.Value{
		NOxERFCoefficient:  scalar(5.5),
		SootERFCoefficient: scalar(100),
	}
	for _, energy := range entities.EnergyTypes {
		values[CategoryEnergyKey("sr", energy, "energy_consumption").String()] = series(ti.ZeroSeries())
		values[CategoryEnergyKey("sr", energy, "emission_index_nox").String()] = series(ti.NaNSeries())
		values[CategoryEnergyKey("sr", energy, "emission_index_soot").String()] = series(ti.NaNSeries())
	}
	values[CategoryEnergyKey("sr", entities.DropInFuel, "energy_consumption").String()] = series(ti.ConstantSeries(43e6))
	values[CategoryEnergyKey("sr", entities.DropInFuel, "emission_index_nox").String()] = series(ti.ConstantSeries(0.01))
	values[CategoryEnergyKey("sr", entities.DropInFuel, "emission_index_soot").String()] = series(ti.ConstantSeries(1e-5))

	out := compute(t, d, values)
	expectNear(t, 1e4, out[NOxEmissions].Series().At(2030), 1e-6)
	expectNear(t, 10, out[SootEmissions].Series().At(2030), 1e-9)
	expectNear(t, 1e4*5.5/1e9, out[NOxERF].Series().At(2030), 1e-15)
}

func mixPathways(t *testing.T) []*entities.Pathway {
	return []*entities.Pathway{
		mustPathway(t, "fossil", entities.DropInFuel, entities.TopDown, true, entities.NoMandate),
		mustPathway(t, "biofuel", entities.DropInFuel, entities.TopDown, false, entities.ShareMandate),
		mustPathway(t, "efuel", entities.DropInFuel, entities.BottomUp, false, entities.QuantityMandate),
	}
}

func TestMix_MandatesAndDefault(t *testing.T) {
	ti := testTimeIndex(t)
	journal := events.NewInMemoryJournal(nil)
	d, err := NewMixDiscipline(ti, entities.DropInFuel, mixPathways(t), log.NewNopLogger(), journal)
	if err != nil {
		t.Fatalf("Failed to create discipline: %v", err)
	}

	quantity := ti.ConstantSeries(30)
	quantity.Set(2030, 90)
	out := compute(t, d, map[string]entities.Value{
		EnergyConsumption(entities.DropInFuel): series(ti.ConstantSeries(100)),
		"biofuel_share_mandate":                series(ti.ConstantSeries(20)),
		"efuel_quantity_mandate":               series(quantity),
	})

	expectNear(t, 20, out["biofuel_energy_consumption"].Series().At(2025), 1e-9)
	expectNear(t, 30, out["efuel_energy_consumption"].Series().At(2025), 1e-9)
	expectNear(t, 50, out["fossil_energy_consumption"].Series().At(2025), 1e-9)
	expectNear(t, 50, out["fossil_share"].Series().At(2025), 1e-9)

	// The 2030 quantity mandate exceeds what the share mandate leaves
	expectNear(t, 80, out["efuel_energy_consumption"].Series().At(2030), 1e-9)
	expectNear(t, 0, out["fossil_energy_consumption"].Series().At(2030), 1e-9)

	journaled, err := journal.ReadStream("mandates:dropin_fuel", 0)
	if err != nil {
		t.Fatalf("Failed to read mandate events: %v", err)
	}
	if len(journaled) != 1 {
		t.Fatalf("Expected 1 journaled event, got %d", len(journaled))
	}
	event := journaled[0].Payload.(events.MandateScaledDown)
	if got := event.Year; got != 2030 {
		t.Errorf("Expected 2030, got %v", got)
	}
	expectNear(t, 80.0/90.0, event.Ratio, 1e-12)
}

func TestMix_ShareMandatesAbove100(t *testing.T) {
	ti := testTimeIndex(t)
	d, err := NewMixDiscipline(ti, entities.DropInFuel, mixPathways(t), nil, nil)
	if err != nil {
		t.Fatalf("Failed to create discipline: %v", err)
	}

	_, err = d.Compute(context.Background(), mda.NewInputs(map[string]entities.Value{
		EnergyConsumption(entities.DropInFuel): series(ti.ConstantSeries(100)),
		"biofuel_share_mandate":                series(ti.ConstantSeries(120)),
		"efuel_quantity_mandate":               series(ti.ZeroSeries()),
	}))
	expectError(t, err, "dropin_fuel share mandates sum to 120% in 2000, above 100%")
}

func TestMix_RequiresOneDefault(t *testing.T) {
	ti := testTimeIndex(t)
	pathways := mixPathways(t)[1:]
	_, err := NewMixDiscipline(ti, entities.DropInFuel, pathways, nil, nil)
	expectError(t, err, "carrier dropin_fuel needs exactly one default pathway, got 0")

	hydrogen := mustPathway(t, "h2", entities.Hydrogen, entities.TopDown, true, entities.NoMandate)
	_, err = NewMixDiscipline(ti, entities.DropInFuel, []*entities.Pathway{hydrogen}, nil, nil)
	expectError(t, err, "pathway h2 produces hydrogen, not dropin_fuel")
}

func TestTopDown_CostsAndEmissions(t *testing.T) {
	ti := testTimeIndex(t)
	p := mustPathway(t, "fossil", entities.DropInFuel, entities.TopDown, true, entities.NoMandate)
	d := NewTopDownPathway(p)

	consumption := ti.ConstantSeries(1e6)
	consumption.Set(2000, 0)
	factor := ti.ConstantSeries(89)
	factor.Set(2000, math.NaN())
	out := compute(t, d, map[string]entities.Value{
		"fossil_energy_consumption":  series(consumption),
		"fossil_mfsp":                series(ti.ConstantSeries(0.02)),
		"fossil_co2_emission_factor": series(factor),
	})

	if got := out["fossil_mean_unit_cost"].Series().At(2030); got != 0.02 {
		t.Errorf("Expected 0.02, got %v", got)
	}
	expectNear(t, 89, out["fossil_co2_emissions"].Series().At(2030), 1e-9)
	expectNear(t, 89, out[SpeciesEmissions(CO2)].Series().At(2030), 1e-9)
	// no consumption means no emissions
	if got := out["fossil_co2_emissions"].Series().At(2000); got != 0.0 {
		t.Errorf("Expected 0.0, got %v", got)
	}
}

func bottomUpInputs(ti entities.TimeIndex) map[string]entities.Value {
	demand := ti.ZeroSeries().Map(func(year int, _ float64) float64 {
		if year >= 2021 {
			return 1e6
		}
		return 0
	})
	return map[string]entities.Value{
		"efuel_energy_consumption":                 series(demand),
		"efuel_load_factor":                        scalar(90),
		"efuel_lifespan":                           scalar(25),
		"efuel_construction_time":                  scalar(2),
		"efuel_capex":                              series(ti.ConstantSeries(1000)),
		"efuel_fixed_opex":                         series(ti.ConstantSeries(10)),
		"efuel_variable_opex":                      series(ti.ConstantSeries(0.01)),
		PrivateDiscountRate:                        scalar(0.08),
		"efuel_electricity_specific_consumption":   series(ti.ConstantSeries(2)),
		ResourcePrice("electricity"):               series(ti.ConstantSeries(0.05)),
		"efuel_co2_emission_factor":                series(ti.ConstantSeries(10)),
		ResourceEmissionFactor("electricity", CO2): series(ti.ZeroSeries()),
		"fossil_mean_unit_cost":                    series(ti.ConstantSeries(0.02)),
		"fossil_co2_mean_emission_factor":          series(ti.ConstantSeries(89)),
		SocialDiscountRate:                         scalar(0.03),
		CarbonValue:                                series(ti.ConstantSeries(100)),
	}
}

func TestBottomUp_VintagesCostsAndEmissions(t *testing.T) {
	ti := testTimeIndex(t)
	p := mustPathway(t, "efuel", entities.DropInFuel, entities.BottomUp, false, entities.QuantityMandate)
	p.Resources = []string{"electricity"}
	fossil := mustPathway(t, "fossil", entities.DropInFuel, entities.TopDown, true, entities.NoMandate)

	d, err := NewBottomUpPathway(ti, p, BottomUpOptions{Reference: fossil})
	if err != nil {
		t.Fatalf("Failed to create discipline: %v", err)
	}
	if d.Report() != nil {
		t.Error("Expected no report before the first compute")
	}

	out := compute(t, d, bottomUpInputs(ti))

	report := d.Report()
	if report == nil {
		t.Fatal("Expected a report after compute")
	}
	if len(report.Plan.Vintages) != 2 {
		t.Fatalf("Expected 2 vintages, got %d", len(report.Plan.Vintages))
	}
	if got := report.Plan.Vintages[0].CommissioningYear; got != 2020 {
		t.Errorf("Expected 2020, got %v", got)
	}
	if got := report.Plan.Vintages[1].CommissioningYear; got != 2045 {
		t.Errorf("Expected 2045, got %v", got)
	}

	expectNear(t, 1e6/365.25/0.9, out["efuel_new_capacity"].Series().At(2020), 1e-6)
	expectNear(t, 1e6, out["efuel_available_capacity"].Series().At(2021), 1e-6)
	expectNear(t, 2e6, out[ResourceConsumption("electricity")].Series().At(2021), 1e-6)
	expectNear(t, 10, out["efuel_co2_mean_emission_factor"].Series().At(2021), 1e-9)
	expectNear(t, 10, out["efuel_co2_emissions"].Series().At(2021), 1e-9)
	if got := out["efuel_co2_emissions"].Series().At(2010); got != 0.0 {
		t.Errorf("Expected 0.0, got %v", got)
	}

	meanCost := out["efuel_mean_unit_cost"].Series().At(2021)
	if math.IsNaN(meanCost) {
		t.Error("Expected a defined value")
	}
	abatement := out["efuel_abatement_cost"].Series().At(2021)
	expectNear(t, (meanCost-0.02)/(79/1e6), abatement, 1e-6)
	if math.IsNaN(out["efuel_specific_abatement_cost"].Series().At(2020)) {
		t.Error("Expected a defined value")
	}
}

func TestBottomUp_WithoutReference(t *testing.T) {
	ti := testTimeIndex(t)
	p := mustPathway(t, "efuel", entities.DropInFuel, entities.BottomUp, false, entities.QuantityMandate)
	p.Resources = []string{"electricity"}

	d, err := NewBottomUpPathway(ti, p, BottomUpOptions{Reference: p})
	if err != nil {
		t.Fatalf("Failed to create discipline: %v", err)
	}
	for _, port := range d.Descriptor().Outputs {
		if port.Name == "efuel_abatement_cost" {
			t.Error("Expected no abatement cost without a distinct reference")
		}
	}

	topDown := mustPathway(t, "fossil", entities.DropInFuel, entities.TopDown, true, entities.NoMandate)
	_, err = NewBottomUpPathway(ti, topDown, BottomUpOptions{})
	expectError(t, err, "pathway fossil is top_down, not bottom-up")
}

func TestCarrier_ConsumptionWeighted(t *testing.T) {
	ti := testTimeIndex(t)
	a := mustPathway(t, "a", entities.DropInFuel, entities.TopDown, true, entities.NoMandate)
	b := mustPathway(t, "b", entities.DropInFuel, entities.TopDown, false, entities.ShareMandate)
	d, err := NewCarrierDiscipline(ti, entities.DropInFuel, []*entities.Pathway{a, b})
	if err != nil {
		t.Fatalf("Failed to create discipline: %v", err)
	}

	bConsumption := ti.ConstantSeries(3)
	bConsumption.Set(2000, 0)
	aConsumption := ti.ConstantSeries(1)
	aConsumption.Set(2000, 0)
	out := compute(t, d, map[string]entities.Value{
		"a_energy_consumption":       series(aConsumption),
		"a_mean_unit_cost":           series(ti.ConstantSeries(1)),
		"a_co2_mean_emission_factor": series(ti.ConstantSeries(80)),
		"b_energy_consumption":       series(bConsumption),
		"b_mean_unit_cost":           series(ti.ConstantSeries(2)),
		"b_co2_mean_emission_factor": series(ti.ZeroSeries()),
	})

	expectNear(t, 1.75, out[CarrierMeanUnitCost(entities.DropInFuel)].Series().At(2030), 1e-12)
	expectNear(t, 20, out[CarrierEmissionFactor(entities.DropInFuel)].Series().At(2030), 1e-12)
	if !math.IsNaN(out[CarrierMeanUnitCost(entities.DropInFuel)].Series().At(2000)) {
		t.Error("Expected NaN")
	}

	_, err = NewCarrierDiscipline(ti, entities.Hydrogen, nil)
	if err == nil {
		t.Error("Expected error for a carrier without pathways, got none")
	}
}

func TestResourceBalance_Ratio(t *testing.T) {
	ti := testTimeIndex(t)
	d := NewResourceBalance(ti, []string{"biomass"}, nil)

	availability := ti.ConstantSeries(100)
	availability.Set(2040, 0)
	out := compute(t, d, map[string]entities.Value{
		ResourceConsumption("biomass"):  series(ti.ConstantSeries(50)),
		ResourceAvailability("biomass"): series(availability),
	})
	ratio := out[ResourceAvailabilityRatio("biomass")].Series()
	expectNear(t, 50, ratio.At(2030), 1e-12)
	if !math.IsNaN(ratio.At(2040)) {
		t.Error("Expected NaN")
	}
}

func TestAirfare_PassThrough(t *testing.T) {
	ti := testTimeIndex(t)
	d := NewAirfareDiscipline(ti)

	out := compute(t, d, map[string]entities.Value{
		RPK:               series(ti.ConstantSeries(100)),
		DOCNonEnergy:      series(ti.ConstantSeries(50)),
		EnergyExpenditure: series(ti.ConstantSeries(30)),
		CarbonTax:         series(ti.ConstantSeries(20)),
		AirfareMargin:     scalar(10),
	})
	expectNear(t, 1.1, out[AirfarePerRPK].Series().At(2030), 1e-12)
}

func TestScenarioCosts_Totals(t *testing.T) {
	ti := testTimeIndex(t)
	fossil := mustPathway(t, "fossil", entities.DropInFuel, entities.TopDown, true, entities.NoMandate)
	bio := mustPathway(t, "biofuel", entities.DropInFuel, entities.TopDown, false, entities.ShareMandate)
	d := NewScenarioCostsDiscipline(ti, []*entities.Pathway{fossil, bio}, fossil)
	if d.Costs() != nil {
		t.Error("Expected no costs before the first compute")
	}

	out := compute(t, d, map[string]entities.Value{
		SocialDiscountRate:           scalar(0),
		CarbonPrice:                  series(ti.ConstantSeries(100)),
		SpeciesEmissions(CO2):        series(ti.ConstantSeries(1)),
		"fossil_energy_consumption":  series(ti.ConstantSeries(10)),
		"fossil_mean_unit_cost":      series(ti.ConstantSeries(2)),
		"biofuel_energy_consumption": series(ti.ConstantSeries(10)),
		"biofuel_mean_unit_cost":     series(ti.ConstantSeries(4)),
	})

	expectNear(t, 60, out[EnergyExpenditure].Series().At(2030), 1e-9)
	expectNear(t, 40, out[BAUEnergyExpenditure].Series().At(2030), 1e-9)
	expectNear(t, 20, out[ExtraEnergyExpenditure].Series().At(2030), 1e-9)
	expectNear(t, 100, out[CarbonTax].Series().At(2030), 1e-9)
	expectNear(t, 60*31, out[CumulativeExpenditure].Float(), 1e-6)
	expectNear(t, 60*31, out[CumulativeDiscounted].Float(), 1e-6)
	expectNear(t, 20*31, out[CumulativeExtraExpenditure].Float(), 1e-6)
	expectNear(t, 100*31, out[CumulativeCarbonTax].Float(), 1e-6)

	if d.Costs() == nil {
		t.Fatal("Expected costs after compute")
	}
	if n := len(d.Costs().ByPathway); n != 2 {
		t.Errorf("Expected 2 pathway expenditures, got %d", n)
	}
}
