package entities

import (
	"fmt"
	"strings"
)

// EnergyType represents the energy carrier an aircraft or pathway uses
type EnergyType int

const (
	DropInFuel EnergyType = iota
	Hydrogen
)

// String method for EnergyType enum
func (e EnergyType) String() string {
	switch e {
	case DropInFuel:
		return "dropin_fuel"
	case Hydrogen:
		return "hydrogen"
	default:
		return "unknown"
	}
}

// ParseEnergyType converts a configuration string into an EnergyType
func ParseEnergyType(s string) (EnergyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dropin_fuel", "dropin", "drop_in":
		return DropInFuel, nil
	case "hydrogen", "h2":
		return Hydrogen, nil
	default:
		return DropInFuel, fmt.Errorf("unknown energy type: %s", s)
	}
}

// EnergyTypes lists carriers in reporting order
var EnergyTypes = []EnergyType{DropInFuel, Hydrogen}

// AircraftPerformance holds the absolute characteristics of an aircraft
type AircraftPerformance struct {
	EnergyPerASK      float64 `yaml:"energy_per_ask" json:"energy_per_ask"`           // MJ/ASK
	EmissionIndexNOx  float64 `yaml:"emission_index_nox" json:"emission_index_nox"`   // kg/kg fuel
	EmissionIndexSoot float64 `yaml:"emission_index_soot" json:"emission_index_soot"` // kg/kg fuel
	DOCNonEnergy      float64 `yaml:"doc_non_energy" json:"doc_non_energy"`           // €/ASK
}

// ReferenceAircraft anchors a subcategory's history before any modeled aircraft enters
type ReferenceAircraft struct {
	Name             string              `yaml:"name" json:"name"`
	EntryIntoService int                 `yaml:"entry_into_service" json:"entry_into_service"`
	Performance      AircraftPerformance `yaml:"performance" json:"performance"`
}

// Aircraft represents a new aircraft generation, described relative to the
// recent reference aircraft of its subcategory
type Aircraft struct {
	Name             string
	EntryIntoService int
	EnergyType       EnergyType
	ConsumptionGain  float64 // % change in energy per ASK
	NOxGain          float64 // % change in NOx emission index
	SootGain         float64 // % change in soot emission index
	DOCNonEnergyGain float64 // % change in non-energy direct operating cost
}

// NewAircraft creates a validated Aircraft
func NewAircraft(name string, entryIntoService int, energyType EnergyType, consumptionGain, noxGain, sootGain, docGain float64) (*Aircraft, error) {
	if name == "" {
		return nil, fmt.Errorf("aircraft name cannot be empty")
	}
	if entryIntoService <= 0 {
		return nil, fmt.Errorf("entry into service year must be positive, got %d", entryIntoService)
	}
	gains := []struct {
		label string
		value float64
	}{
		{"consumption", consumptionGain},
		{"NOx", noxGain},
		{"soot", sootGain},
		{"DOC", docGain},
	}
	for _, g := range gains {
		if g.value <= -100 {
			return nil, fmt.Errorf("%s gain must be above -100%%, got %g", g.label, g.value)
		}
	}

	return &Aircraft{
		Name:             name,
		EntryIntoService: entryIntoService,
		EnergyType:       energyType,
		ConsumptionGain:  consumptionGain,
		NOxGain:          noxGain,
		SootGain:         sootGain,
		DOCNonEnergyGain: docGain,
	}, nil
}

// Performance applies the aircraft's gains to the reference performance
func (a Aircraft) Performance(reference AircraftPerformance) AircraftPerformance {
	return AircraftPerformance{
		EnergyPerASK:      reference.EnergyPerASK * (1 + a.ConsumptionGain/100),
		EmissionIndexNOx:  reference.EmissionIndexNOx * (1 + a.NOxGain/100),
		EmissionIndexSoot: reference.EmissionIndexSoot * (1 + a.SootGain/100),
		DOCNonEnergy:      reference.DOCNonEnergy * (1 + a.DOCNonEnergyGain/100),
	}
}

// Subcategory groups aircraft that replace each other within a category
type Subcategory struct {
	Name            string
	Share           float64 // % of the category
	OldReference    ReferenceAircraft
	RecentReference ReferenceAircraft
	Aircraft        []Aircraft
}

// Category groups subcategories by range (short, medium, long, freight...)
type Category struct {
	Name          string
	Life          int // years for a generation to replace its predecessor
	Subcategories []Subcategory
}

// shareTolerance absorbs rounding in configured percentages
const shareTolerance = 1e-9

// Validate checks shares, lifetimes and entry-into-service ordering
func (c Category) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if c.Life <= 0 {
		return fmt.Errorf("category %s: life must be positive, got %d", c.Name, c.Life)
	}
	if len(c.Subcategories) == 0 {
		return fmt.Errorf("category %s: at least one subcategory is required", c.Name)
	}

	seen := make(map[string]bool)
	total := 0.0
	for _, sub := range c.Subcategories {
		if sub.Name == "" {
			return fmt.Errorf("category %s: subcategory name cannot be empty", c.Name)
		}
		if seen[sub.Name] {
			return fmt.Errorf("category %s: duplicate subcategory %s", c.Name, sub.Name)
		}
		seen[sub.Name] = true

		if sub.Share < 0 || sub.Share > 100 {
			return fmt.Errorf("category %s: subcategory %s share must be in [0, 100], got %g", c.Name, sub.Name, sub.Share)
		}
		total += sub.Share

		if sub.RecentReference.EntryIntoService < sub.OldReference.EntryIntoService {
			return fmt.Errorf(
				"category %s: subcategory %s recent reference (%d) enters service before old reference (%d)",
				c.Name, sub.Name, sub.RecentReference.EntryIntoService, sub.OldReference.EntryIntoService,
			)
		}

		names := map[string]bool{sub.OldReference.Name: true, sub.RecentReference.Name: true}
		for _, ac := range sub.Aircraft {
			if names[ac.Name] {
				return fmt.Errorf("category %s: subcategory %s has duplicate aircraft %s", c.Name, sub.Name, ac.Name)
			}
			names[ac.Name] = true
			if ac.EntryIntoService < sub.RecentReference.EntryIntoService {
				return fmt.Errorf(
					"category %s: aircraft %s enters service (%d) before the recent reference (%d)",
					c.Name, ac.Name, ac.EntryIntoService, sub.RecentReference.EntryIntoService,
				)
			}
		}
	}

	if total > 100+shareTolerance {
		return fmt.Errorf("category %s: subcategory shares sum to %g%%, above 100%%", c.Name, total)
	}
	return nil
}

// FleetKey identifies a fleet variable without string concatenation
type FleetKey struct {
	Category    string
	Subcategory string
	Aircraft    string
	Field       string
}

// String flattens the key for reporting ("category:subcategory:aircraft:field")
func (k FleetKey) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{k.Category, k.Subcategory, k.Aircraft, k.Field} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ":")
}
