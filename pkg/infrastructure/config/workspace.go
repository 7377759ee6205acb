package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/aerosim/pkg/infrastructure/repositories/memory"
)

// Scenario directory layout
const (
	ScenarioFileName  = "scenario.yaml"
	ParameterFileName = "parameters.yaml"
	PathwaysFileName  = "pathways.csv"
	HistoryFileName   = "history.csv"
)

// Files locates the inputs of one scenario. Pathways and History are optional.
type Files struct {
	Scenario   string
	Parameters string
	Pathways   string
	History    string
}

// FilesInDir returns the conventional file locations of a scenario directory,
// leaving optional files empty when they do not exist
func FilesInDir(dir string) Files {
	files := Files{
		Scenario:   filepath.Join(dir, ScenarioFileName),
		Parameters: filepath.Join(dir, ParameterFileName),
	}
	if path := filepath.Join(dir, PathwaysFileName); fileExists(path) {
		files.Pathways = path
	}
	if path := filepath.Join(dir, HistoryFileName); fileExists(path) {
		files.History = path
	}
	return files
}

// Map lists the files in use by role, for reporting
func (f Files) Map() map[string]string {
	m := map[string]string{
		"Scenario":   f.Scenario,
		"Parameters": f.Parameters,
	}
	if f.Pathways != "" {
		m["Pathways"] = f.Pathways
	}
	if f.History != "" {
		m["History"] = f.History
	}
	return m
}

// Workspace is a fully loaded scenario definition
type Workspace struct {
	Files      Files
	Scenario   *Scenario
	Parameters *ParameterFile
}

// LoadWorkspace reads every file of a scenario. A pathways CSV replaces the
// pathways of the scenario YAML; history CSV series replace parameters of
// the same name.
func LoadWorkspace(files Files) (*Workspace, error) {
	for role, path := range files.Map() {
		if !fileExists(path) {
			return nil, fmt.Errorf("%s file not found: %s", role, path)
		}
	}

	scenario, err := LoadScenarioFile(files.Scenario)
	if err != nil {
		return nil, err
	}

	params, err := LoadParameterFile(files.Parameters)
	if err != nil {
		return nil, err
	}

	loader := csv.NewLoader()
	if files.Pathways != "" {
		pathways, err := loader.LoadPathways(files.Pathways)
		if err != nil {
			return nil, fmt.Errorf("error loading pathways: %w", err)
		}
		scenario.Pathways = pathways
	}

	if files.History != "" {
		history, err := loader.LoadSeries(files.History)
		if err != nil {
			return nil, fmt.Errorf("error loading history: %w", err)
		}
		if params.Parameters == nil {
			params.Parameters = make(map[string]entities.Value, len(history))
		}
		for name, v := range history {
			params.Parameters[name] = v
		}
	}

	return &Workspace{Files: files, Scenario: scenario, Parameters: params}, nil
}

// Repositories loads the workspace into fresh in-memory repositories
func (w *Workspace) Repositories() (*memory.PathwayRepository, *memory.FleetRepository, *memory.ParameterStore, error) {
	pathways := memory.NewPathwayRepository(len(w.Scenario.Pathways))
	fleet := memory.NewFleetRepository(len(w.Scenario.Categories))
	if err := w.Scenario.Apply(pathways, fleet); err != nil {
		return nil, nil, nil, err
	}

	params := memory.NewParameterStore(len(w.Parameters.Parameters))
	if err := w.Parameters.Apply(params); err != nil {
		return nil, nil, nil, err
	}
	return pathways, fleet, params, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
