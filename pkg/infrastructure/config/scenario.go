package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/domain/repositories"
)

// ScenarioFile is the structural side of a scenario as written in YAML
type ScenarioFile struct {
	Pathways  []PathwayConfig  `yaml:"pathways"`
	Resources []ResourceConfig `yaml:"resources,omitempty"`
	Processes []ProcessConfig  `yaml:"processes,omitempty"`
	Fleet     []CategoryConfig `yaml:"fleet,omitempty"`
}

// PathwayConfig describes one production pathway
type PathwayConfig struct {
	Name      string   `yaml:"name"`
	Carrier   string   `yaml:"carrier"`
	Model     string   `yaml:"model"`
	Default   bool     `yaml:"default,omitempty"`
	Mandate   string   `yaml:"mandate,omitempty"`
	Resources []string `yaml:"resources,omitempty"`
	Processes []string `yaml:"processes,omitempty"`
	Species   []string `yaml:"species,omitempty"`
}

// ResourceConfig describes a shared resource
type ResourceConfig struct {
	Name string `yaml:"name"`
	Unit string `yaml:"unit,omitempty"`
}

// ProcessConfig describes an add-on process
type ProcessConfig struct {
	Name string `yaml:"name"`
}

// CategoryConfig describes one aircraft category
type CategoryConfig struct {
	Name          string              `yaml:"name"`
	Life          int                 `yaml:"life"`
	Subcategories []SubcategoryConfig `yaml:"subcategories"`
}

// SubcategoryConfig describes one subcategory and its aircraft generations
type SubcategoryConfig struct {
	Name            string                     `yaml:"name"`
	Share           float64                    `yaml:"share"`
	OldReference    entities.ReferenceAircraft `yaml:"old_reference"`
	RecentReference entities.ReferenceAircraft `yaml:"recent_reference"`
	Aircraft        []AircraftConfig           `yaml:"aircraft,omitempty"`
}

// AircraftConfig describes a new aircraft relative to the recent reference
type AircraftConfig struct {
	Name             string  `yaml:"name"`
	EntryIntoService int     `yaml:"entry_into_service"`
	EnergyType       string  `yaml:"energy_type"`
	ConsumptionGain  float64 `yaml:"consumption_gain"`
	NOxGain          float64 `yaml:"nox_gain"`
	SootGain         float64 `yaml:"soot_gain"`
	DOCNonEnergyGain float64 `yaml:"doc_non_energy_gain"`
}

// Scenario is a decoded and validated ScenarioFile
type Scenario struct {
	Pathways   []*entities.Pathway
	Resources  []*entities.Resource
	Processes  []*entities.Process
	Categories []*entities.Category
}

// LoadScenarioFile reads and decodes a scenario YAML file
func LoadScenarioFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}

	var file ScenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	return file.Decode()
}

// Decode converts the configuration into validated entities
func (f ScenarioFile) Decode() (*Scenario, error) {
	scenario := &Scenario{}

	for _, pc := range f.Pathways {
		carrier, err := entities.ParseEnergyType(pc.Carrier)
		if err != nil {
			return nil, fmt.Errorf("pathway %s: %w", pc.Name, err)
		}
		model, err := entities.ParseModelKind(pc.Model)
		if err != nil {
			return nil, fmt.Errorf("pathway %s: %w", pc.Name, err)
		}
		mandate, err := entities.ParseMandateKind(pc.Mandate)
		if err != nil {
			return nil, fmt.Errorf("pathway %s: %w", pc.Name, err)
		}
		p, err := entities.NewPathway(pc.Name, carrier, model, pc.Default, mandate)
		if err != nil {
			return nil, err
		}
		p.Resources = pc.Resources
		p.Processes = pc.Processes
		p.Species = pc.Species
		scenario.Pathways = append(scenario.Pathways, p)
	}

	for _, rc := range f.Resources {
		scenario.Resources = append(scenario.Resources, &entities.Resource{Name: rc.Name, Unit: rc.Unit})
	}
	for _, pc := range f.Processes {
		scenario.Processes = append(scenario.Processes, &entities.Process{Name: pc.Name})
	}

	for _, cc := range f.Fleet {
		category := &entities.Category{Name: cc.Name, Life: cc.Life}
		for _, sc := range cc.Subcategories {
			sub := entities.Subcategory{
				Name:            sc.Name,
				Share:           sc.Share,
				OldReference:    sc.OldReference,
				RecentReference: sc.RecentReference,
			}
			for _, ac := range sc.Aircraft {
				energy, err := entities.ParseEnergyType(ac.EnergyType)
				if err != nil {
					return nil, fmt.Errorf("aircraft %s: %w", ac.Name, err)
				}
				aircraft, err := entities.NewAircraft(
					ac.Name,
					ac.EntryIntoService,
					energy,
					ac.ConsumptionGain,
					ac.NOxGain,
					ac.SootGain,
					ac.DOCNonEnergyGain,
				)
				if err != nil {
					return nil, fmt.Errorf("category %s: %w", cc.Name, err)
				}
				sub.Aircraft = append(sub.Aircraft, *aircraft)
			}
			category.Subcategories = append(category.Subcategories, sub)
		}
		if err := category.Validate(); err != nil {
			return nil, err
		}
		scenario.Categories = append(scenario.Categories, category)
	}

	return scenario, nil
}

// Apply loads the scenario structure into the repositories
func (s *Scenario) Apply(pathwayRepo repositories.PathwayRepository, fleetRepo repositories.FleetRepository) error {
	if err := pathwayRepo.LoadPathways(s.Pathways); err != nil {
		return fmt.Errorf("failed to load pathways: %w", err)
	}
	if err := pathwayRepo.LoadResources(s.Resources); err != nil {
		return fmt.Errorf("failed to load resources: %w", err)
	}
	if err := pathwayRepo.LoadProcesses(s.Processes); err != nil {
		return fmt.Errorf("failed to load processes: %w", err)
	}
	if err := fleetRepo.LoadCategories(s.Categories); err != nil {
		return fmt.Errorf("failed to load fleet: %w", err)
	}
	return nil
}

// Encode converts the scenario back into its configuration form
func (s *Scenario) Encode() ScenarioFile {
	var f ScenarioFile
	for _, p := range s.Pathways {
		mandate := ""
		if p.Mandate != entities.NoMandate {
			mandate = p.Mandate.String()
		}
		f.Pathways = append(f.Pathways, PathwayConfig{
			Name:      p.Name,
			Carrier:   p.Carrier.String(),
			Model:     p.Model.String(),
			Default:   p.Default,
			Mandate:   mandate,
			Resources: p.Resources,
			Processes: p.Processes,
			Species:   p.Species,
		})
	}
	for _, r := range s.Resources {
		f.Resources = append(f.Resources, ResourceConfig{Name: r.Name, Unit: r.Unit})
	}
	for _, p := range s.Processes {
		f.Processes = append(f.Processes, ProcessConfig{Name: p.Name})
	}
	for _, c := range s.Categories {
		cc := CategoryConfig{Name: c.Name, Life: c.Life}
		for _, sub := range c.Subcategories {
			sc := SubcategoryConfig{
				Name:            sub.Name,
				Share:           sub.Share,
				OldReference:    sub.OldReference,
				RecentReference: sub.RecentReference,
			}
			for _, ac := range sub.Aircraft {
				sc.Aircraft = append(sc.Aircraft, AircraftConfig{
					Name:             ac.Name,
					EntryIntoService: ac.EntryIntoService,
					EnergyType:       ac.EnergyType.String(),
					ConsumptionGain:  ac.ConsumptionGain,
					NOxGain:          ac.NOxGain,
					SootGain:         ac.SootGain,
					DOCNonEnergyGain: ac.DOCNonEnergyGain,
				})
			}
			cc.Subcategories = append(cc.Subcategories, sc)
		}
		f.Fleet = append(f.Fleet, cc)
	}
	return f
}
