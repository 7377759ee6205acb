package entities

import (
	"math"
	"testing"
)

func TestAircraft_Validation(t *testing.T) {
	ac, err := NewAircraft("NEW_SR", 2035, Hydrogen, -20, -10, 0, 5)
	if err != nil {
		t.Fatalf("Expected valid aircraft creation to succeed: %v", err)
	}
	if ac.EnergyType != Hydrogen {
		t.Errorf("Expected hydrogen aircraft, got %s", ac.EnergyType)
	}

	testCases := []struct {
		name        string
		acName      string
		eis         int
		consumption float64
		expectError string
	}{
		{"empty name", "", 2035, 0, "aircraft name cannot be empty"},
		{"zero EIS", "A", 0, 0, "entry into service year must be positive, got 0"},
		{"gain at -100", "A", 2035, -100, "consumption gain must be above -100%, got -100"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAircraft(tc.acName, tc.eis, DropInFuel, tc.consumption, 0, 0, 0)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestAircraft_Performance(t *testing.T) {
	ref := AircraftPerformance{EnergyPerASK: 1.0, EmissionIndexNOx: 0.015, EmissionIndexSoot: 3e-5, DOCNonEnergy: 0.04}
	ac := Aircraft{Name: "A", EntryIntoService: 2035, ConsumptionGain: -25, NOxGain: 10, DOCNonEnergyGain: -50}

	perf := ac.Performance(ref)
	if math.Abs(perf.EnergyPerASK-0.75) > 1e-12 {
		t.Errorf("Expected energy 0.75, got %g", perf.EnergyPerASK)
	}
	if math.Abs(perf.EmissionIndexNOx-0.0165) > 1e-12 {
		t.Errorf("Expected NOx 0.0165, got %g", perf.EmissionIndexNOx)
	}
	if perf.EmissionIndexSoot != ref.EmissionIndexSoot {
		t.Errorf("Expected unchanged soot, got %g", perf.EmissionIndexSoot)
	}
	if math.Abs(perf.DOCNonEnergy-0.02) > 1e-12 {
		t.Errorf("Expected DOC 0.02, got %g", perf.DOCNonEnergy)
	}
}

func validCategory() Category {
	return Category{
		Name: "short_range",
		Life: 25,
		Subcategories: []Subcategory{
			{
				Name:            "narrow_body",
				Share:           60,
				OldReference:    ReferenceAircraft{Name: "OLD", EntryIntoService: 1990},
				RecentReference: ReferenceAircraft{Name: "RECENT", EntryIntoService: 2015},
				Aircraft:        []Aircraft{{Name: "NEW", EntryIntoService: 2030}},
			},
			{
				Name:            "regional",
				Share:           40,
				OldReference:    ReferenceAircraft{Name: "OLD_R", EntryIntoService: 1995},
				RecentReference: ReferenceAircraft{Name: "RECENT_R", EntryIntoService: 2012},
			},
		},
	}
}

func TestCategory_Validate(t *testing.T) {
	if err := validCategory().Validate(); err != nil {
		t.Fatalf("Expected valid category: %v", err)
	}

	testCases := []struct {
		name        string
		mutate      func(c *Category)
		expectError string
	}{
		{
			"shares above 100",
			func(c *Category) { c.Subcategories[1].Share = 41 },
			"category short_range: subcategory shares sum to 101%, above 100%",
		},
		{
			"negative share",
			func(c *Category) { c.Subcategories[0].Share = -1 },
			"category short_range: subcategory narrow_body share must be in [0, 100], got -1",
		},
		{
			"aircraft before recent reference",
			func(c *Category) { c.Subcategories[0].Aircraft[0].EntryIntoService = 2010 },
			"category short_range: aircraft NEW enters service (2010) before the recent reference (2015)",
		},
		{
			"duplicate subcategory",
			func(c *Category) { c.Subcategories[1].Name = "narrow_body" },
			"category short_range: duplicate subcategory narrow_body",
		},
		{
			"zero life",
			func(c *Category) { c.Life = 0 },
			"category short_range: life must be positive, got 0",
		},
		{
			"duplicate aircraft name",
			func(c *Category) { c.Subcategories[0].Aircraft[0].Name = "RECENT" },
			"category short_range: subcategory narrow_body has duplicate aircraft RECENT",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCategory()
			tc.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestFleetKey_String(t *testing.T) {
	key := FleetKey{Category: "short_range", Subcategory: "narrow_body", Aircraft: "NEW", Field: "share"}
	if key.String() != "short_range:narrow_body:NEW:share" {
		t.Errorf("Unexpected key: %s", key.String())
	}

	categoryLevel := FleetKey{Category: "short_range", Field: "energy_per_ask"}
	if categoryLevel.String() != "short_range:energy_per_ask" {
		t.Errorf("Unexpected key: %s", categoryLevel.String())
	}
}
