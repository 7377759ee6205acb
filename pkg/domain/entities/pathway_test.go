package entities

import "testing"

func TestPathway_Validation(t *testing.T) {
	p, err := NewPathway("biofuel_hefa", DropInFuel, BottomUp, false, ShareMandate)
	if err != nil {
		t.Fatalf("Expected valid pathway creation to succeed: %v", err)
	}
	if p.Var("mean_unit_cost") != "biofuel_hefa_mean_unit_cost" {
		t.Errorf("Unexpected variable name: %s", p.Var("mean_unit_cost"))
	}
	if p.ResourceVar("electricity", "specific_consumption") != "biofuel_hefa_electricity_specific_consumption" {
		t.Errorf("Unexpected resource variable name: %s", p.ResourceVar("electricity", "specific_consumption"))
	}

	testCases := []struct {
		name        string
		pathway     string
		isDefault   bool
		mandate     MandateKind
		expectError string
	}{
		{"empty name", "", false, NoMandate, "pathway name cannot be empty"},
		{"name with colon", "a:b", false, NoMandate, `pathway name cannot contain spaces or colons: "a:b"`},
		{"default with mandate", "fossil", true, QuantityMandate, "default pathway fossil cannot carry a quantity mandate"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPathway(tc.pathway, DropInFuel, TopDown, tc.isDefault, tc.mandate)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestPathway_AllSpecies(t *testing.T) {
	p := Pathway{Name: "efuel", Species: []string{"co2", "nox"}}
	species := p.AllSpecies()
	if len(species) != 2 || species[0] != "co2" || species[1] != "nox" {
		t.Errorf("Unexpected species: %v", species)
	}
}

func TestParseEnums(t *testing.T) {
	if k, err := ParseModelKind("Bottom_Up"); err != nil || k != BottomUp {
		t.Errorf("Expected BottomUp, got %v (%v)", k, err)
	}
	if _, err := ParseModelKind("sideways"); err == nil {
		t.Error("Expected error for unknown model kind")
	}
	if m, err := ParseMandateKind("quantity"); err != nil || m != QuantityMandate {
		t.Errorf("Expected QuantityMandate, got %v (%v)", m, err)
	}
	if e, err := ParseEnergyType("h2"); err != nil || e != Hydrogen {
		t.Errorf("Expected Hydrogen, got %v (%v)", e, err)
	}
}
