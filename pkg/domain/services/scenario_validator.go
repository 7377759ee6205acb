package services

import (
	"fmt"
	"strings"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// ScenarioValidator checks a scenario definition for structural integrity
// before any discipline is built from it
type ScenarioValidator struct{}

// NewScenarioValidator creates a new scenario validator
func NewScenarioValidator() *ScenarioValidator {
	return &ScenarioValidator{}
}

// ScenarioDefinition is the structural part of a scenario: what exists, not
// the numbers that drive it
type ScenarioDefinition struct {
	Pathways   []*entities.Pathway
	Resources  []*entities.Resource
	Processes  []*entities.Process
	Categories []*entities.Category
}

// ValidationResult contains the results of scenario validation
type ValidationResult struct {
	DuplicatePathways []string
	MissingDefaults   []entities.EnergyType
	UnknownResources  []string
	UnknownProcesses  []string
	Errors            []string
}

// Valid reports whether no errors were found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err folds every error into one, or returns nil
func (r *ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return fmt.Errorf("invalid scenario: %s", strings.Join(r.Errors, "; "))
}

// ValidateScenario performs comprehensive validation on a scenario definition
func (v *ScenarioValidator) ValidateScenario(def ScenarioDefinition) *ValidationResult {
	result := &ValidationResult{
		DuplicatePathways: make([]string, 0),
		MissingDefaults:   make([]entities.EnergyType, 0),
		UnknownResources:  make([]string, 0),
		UnknownProcesses:  make([]string, 0),
		Errors:            make([]string, 0),
	}

	result.DuplicatePathways = v.detectDuplicatePathways(def.Pathways)
	for _, name := range result.DuplicatePathways {
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate pathway %s", name))
	}

	v.checkDefaults(def, result)
	v.checkReferences(def, result)

	for _, category := range def.Categories {
		if err := category.Validate(); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	return result
}

func (v *ScenarioValidator) detectDuplicatePathways(pathways []*entities.Pathway) []string {
	seen := make(map[string]bool, len(pathways))
	duplicates := make([]string, 0)
	for _, p := range pathways {
		if seen[p.Name] {
			duplicates = append(duplicates, p.Name)
			continue
		}
		seen[p.Name] = true
	}
	return duplicates
}

// checkDefaults requires exactly one default pathway for every carrier that
// has pathways or that the fleet burns
func (v *ScenarioValidator) checkDefaults(def ScenarioDefinition, result *ValidationResult) {
	defaults := make(map[entities.EnergyType]int)
	present := make(map[entities.EnergyType]bool)
	for _, p := range def.Pathways {
		present[p.Carrier] = true
		if p.Default {
			defaults[p.Carrier]++
		}
	}
	for carrier := range v.burnedCarriers(def.Categories) {
		present[carrier] = true
	}

	for _, carrier := range entities.EnergyTypes {
		if !present[carrier] {
			continue
		}
		switch n := defaults[carrier]; {
		case n == 0:
			result.MissingDefaults = append(result.MissingDefaults, carrier)
			result.Errors = append(result.Errors, fmt.Sprintf("carrier %s has no default pathway", carrier))
		case n > 1:
			result.Errors = append(result.Errors, fmt.Sprintf("carrier %s has %d default pathways, expected one", carrier, n))
		}
	}
}

func (v *ScenarioValidator) burnedCarriers(categories []*entities.Category) map[entities.EnergyType]bool {
	carriers := make(map[entities.EnergyType]bool)
	for _, category := range categories {
		if len(category.Subcategories) > 0 {
			// Reference aircraft always burn drop-in fuel
			carriers[entities.DropInFuel] = true
		}
		for _, sub := range category.Subcategories {
			for _, ac := range sub.Aircraft {
				carriers[ac.EnergyType] = true
			}
		}
	}
	return carriers
}

func (v *ScenarioValidator) checkReferences(def ScenarioDefinition, result *ValidationResult) {
	resources := make(map[string]bool, len(def.Resources))
	for _, r := range def.Resources {
		resources[r.Name] = true
	}
	processes := make(map[string]bool, len(def.Processes))
	for _, p := range def.Processes {
		processes[p.Name] = true
	}

	for _, p := range def.Pathways {
		for _, r := range p.Resources {
			if !resources[r] {
				result.UnknownResources = append(result.UnknownResources, r)
				result.Errors = append(result.Errors, fmt.Sprintf("pathway %s uses unknown resource %s", p.Name, r))
			}
		}
		for _, q := range p.Processes {
			if !processes[q] {
				result.UnknownProcesses = append(result.UnknownProcesses, q)
				result.Errors = append(result.Errors, fmt.Sprintf("pathway %s uses unknown process %s", p.Name, q))
			}
		}
		if p.Model == entities.TopDown && (len(p.Resources) > 0 || len(p.Processes) > 0) {
			result.Errors = append(result.Errors, fmt.Sprintf("top-down pathway %s cannot use resources or processes", p.Name))
		}
	}
}
