package vintage

import (
	"math"
	"testing"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

func stepDemand(start, end, stepYear int, volume float64) entities.TimeSeries {
	ts := entities.NewTimeSeries(start, end)
	for year := stepYear; year <= end; year++ {
		ts.Set(year, volume)
	}
	return ts
}

func mustPlan(t *testing.T, pathway string, demand entities.TimeSeries, loadFactor float64, lifespan int) *CapacityPlan {
	t.Helper()
	plan, err := NewCapacityPlanner().Plan(pathway, demand, loadFactor, lifespan)
	if err != nil {
		t.Fatalf("Failed to plan %s: %v", pathway, err)
	}
	return plan
}

func expectNear(t *testing.T, what string, expected, got, tol float64) {
	t.Helper()
	if math.Abs(expected-got) > tol {
		t.Errorf("%s: expected %g, got %g", what, expected, got)
	}
}

func expectNaN(t *testing.T, what string, got float64) {
	t.Helper()
	if !math.IsNaN(got) {
		t.Errorf("%s: expected NaN, got %g", what, got)
	}
}

func TestCapacityPlanner_StepDemand(t *testing.T) {
	plan := mustPlan(t, "efuel", stepDemand(2000, 2050, 2021, 1e6), 0.9, 25)

	if len(plan.Vintages) != 2 {
		t.Fatalf("Expected 2 vintages, got %d", len(plan.Vintages))
	}
	first := plan.Vintages[0]
	if first.CommissioningYear != 2020 {
		t.Errorf("Expected commissioning in 2020, got %d", first.CommissioningYear)
	}
	if first.Pathway != "efuel" {
		t.Errorf("Expected pathway efuel, got %s", first.Pathway)
	}
	expectNear(t, "capacity", 1e6/365.25/0.9, first.Capacity, 1e-9)
	expectNear(t, "rounded capacity", 3042.06, first.Capacity, 0.01)
	if plan.NewCapacity.At(2020) != first.Capacity {
		t.Errorf("Expected new capacity %g in 2020, got %g", first.Capacity, plan.NewCapacity.At(2020))
	}

	// Renewal once the first vintage stops supplying after 2045
	if year := plan.Vintages[1].CommissioningYear; year != 2045 {
		t.Errorf("Expected renewal in 2045, got %d", year)
	}

	for year, expected := range map[int]float64{2020: 0, 2021: 1e6, 2045: 1e6, 2046: 1e6} {
		if got := plan.Available.At(year); got != expected {
			t.Errorf("Expected %g available in %d, got %g", expected, year, got)
		}
	}
	if n := plan.Shortfall(); n != 0 {
		t.Errorf("Expected no shortfall, got %d years", n)
	}
}

func TestCapacityPlanner_CoversDemand(t *testing.T) {
	trajectories := map[string]func(year int) float64{
		"linear growth": func(year int) float64 { return float64(year-2000) * 10 },
		"exponential":   func(year int) float64 { return math.Pow(1.07, float64(year-2000)) },
		"decline":       func(year int) float64 { return math.Max(0, 500-float64(year-2000)*12) },
		"oscillating":   func(year int) float64 { return 100 + 80*math.Sin(float64(year)/3) },
		"late start":    func(year int) float64 { return math.Max(0, float64(year-2035)) * 1e5 },
	}

	for name, fn := range trajectories {
		for _, lifespan := range []int{1, 3, 7, 25, 60} {
			demand := entities.NewTimeSeries(2000, 2050).Map(func(year int, _ float64) float64 { return fn(year) })
			plan := mustPlan(t, "p", demand, 0.8, lifespan)

			if n := plan.Shortfall(); n != 0 {
				t.Errorf("%s with lifespan %d leaves demand uncovered in %d years", name, lifespan, n)
			}
			for _, year := range plan.Utilization.Years() {
				if u := plan.Utilization.At(year); u < 0 || u > 1 {
					t.Errorf("%s: utilization %g out of range in %d", name, u, year)
				}
			}
		}
	}
}

func TestCapacityPlanner_ZeroDemandBuildsNothing(t *testing.T) {
	plan := mustPlan(t, "p", entities.NewTimeSeries(2000, 2050), 0.9, 25)
	if len(plan.Vintages) != 0 {
		t.Errorf("Expected no vintages, got %d", len(plan.Vintages))
	}
	if !plan.NewCapacity.IsZero() || !plan.Available.IsZero() {
		t.Error("Expected no capacity at all")
	}
}

func TestCapacityPlanner_DecliningDemandScalesDown(t *testing.T) {
	demand := entities.NewTimeSeries(2000, 2010)
	for year := 2001; year <= 2010; year++ {
		if year <= 2005 {
			demand.Set(year, 100)
		} else {
			demand.Set(year, 50)
		}
	}

	plan := mustPlan(t, "p", demand, 1, 20)

	// over-capacity must not trigger retirement or new builds
	if len(plan.Vintages) != 1 {
		t.Fatalf("Expected 1 vintage, got %d", len(plan.Vintages))
	}
	if u := plan.Utilization.At(2003); u != 1 {
		t.Errorf("Expected full utilization in 2003, got %g", u)
	}
	if u := plan.Utilization.At(2008); u != 0.5 {
		t.Errorf("Expected half utilization in 2008, got %g", u)
	}

	production := plan.Production(plan.Vintages[0])
	for year, expected := range map[int]float64{2000: 0, 2003: 100, 2008: 50} {
		if got := production.At(year); got != expected {
			t.Errorf("Expected production %g in %d, got %g", expected, year, got)
		}
	}
}

func TestCapacityPlanner_Validation(t *testing.T) {
	demand := stepDemand(2000, 2010, 2005, 1)
	testCases := []struct {
		name        string
		loadFactor  float64
		lifespan    int
		expectError string
	}{
		{"zero load factor", 0, 10, "load factor must be in (0, 1], got 0"},
		{"load factor above one", 1.2, 10, "load factor must be in (0, 1], got 1.2"},
		{"zero lifespan", 0.9, 0, "lifespan must be at least 1 year, got 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCapacityPlanner().Plan("p", demand, tc.loadFactor, tc.lifespan)
			if err == nil || err.Error() != tc.expectError {
				t.Errorf("Expected error %q, got %v", tc.expectError, err)
			}
		})
	}
}

func TestHistoricRamp(t *testing.T) {
	ti, err := entities.NewTimeIndex(2000, 2020, 2030)
	if err != nil {
		t.Fatalf("Failed to create time index: %v", err)
	}

	demand := entities.NewTimeSeriesFilled(2000, 2030, 100)
	ramped, err := HistoricRamp(demand, *ti, 2010, 1)
	if err != nil {
		t.Fatalf("Failed to ramp: %v", err)
	}

	if ramped.At(2009) != 0 {
		t.Errorf("Expected nothing before introduction, got %g", ramped.At(2009))
	}
	expectNear(t, "introduction volume", 1, ramped.At(2010), 1e-12)
	expectNear(t, "last historic year", 100, ramped.At(2019), 1e-9)
	// Geometric interpolation: each year multiplies by the same factor
	expectNear(t, "first growth step", math.Pow(100, 1.0/9), ramped.At(2011), 1e-9)
	if ramped.At(2025) != 100 {
		t.Errorf("Expected prospective demand untouched, got %g", ramped.At(2025))
	}
	if demand.At(2005) != 100 {
		t.Error("Expected the input not to be mutated")
	}

	plan := mustPlan(t, "p", ramped, 1, 30)
	if year := plan.Vintages[0].CommissioningYear; year != 2009 {
		t.Errorf("Expected commissioning in 2009, got %d", year)
	}
	if n := plan.Shortfall(); n != 0 {
		t.Errorf("Expected no shortfall, got %d years", n)
	}

	_, err = HistoricRamp(demand, *ti, 2000, 1)
	if expected := "introduction year 2000 must be after historic start year 2000"; err == nil || err.Error() != expected {
		t.Errorf("Expected error %q, got %v", expected, err)
	}
	_, err = HistoricRamp(demand, *ti, 2015, 0)
	if expected := "introduction volume must be positive, got 0"; err == nil || err.Error() != expected {
		t.Errorf("Expected error %q, got %v", expected, err)
	}

	untouched, err := HistoricRamp(stepDemand(2000, 2030, 2025, 5), *ti, 0, 0)
	if err != nil {
		t.Fatalf("Failed to pass through demand: %v", err)
	}
	if untouched.At(2025) != 5 {
		t.Errorf("Expected 5 in 2025, got %g", untouched.At(2025))
	}
}
