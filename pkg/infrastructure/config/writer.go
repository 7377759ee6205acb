package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// WriteScenarioFile writes the scenario structure as YAML
func WriteScenarioFile(path string, s *Scenario) error {
	return writeYAML(path, s.Encode())
}

// WriteParameterFile writes a parameter file readable by LoadParameterFile.
// Series are written in full form; undefined years become null.
func WriteParameterFile(path string, f *ParameterFile) error {
	params := make(map[string]interface{}, len(f.Parameters))
	for name, v := range f.Parameters {
		switch v.Kind() {
		case entities.KindScalar:
			params[name] = v.Float()
		case entities.KindText:
			params[name] = v.Text()
		case entities.KindSeries:
			ts := v.Series()
			values := make([]interface{}, 0, ts.Len())
			for _, x := range ts.Values() {
				if math.IsNaN(x) {
					values = append(values, nil)
					continue
				}
				values = append(values, x)
			}
			params[name] = map[string]interface{}{
				"start_year": ts.Start(),
				"values":     values,
			}
		default:
			return fmt.Errorf("parameter %s: cannot write a %s", name, v.Kind())
		}
	}

	doc := map[string]interface{}{
		"time_index": map[string]int{
			"historic_start_year":    f.TimeIndex.HistoricStartYear,
			"prospection_start_year": f.TimeIndex.ProspectionStartYear,
			"end_year":               f.TimeIndex.EndYear,
		},
		"parameters": params,
	}
	if len(f.Info) > 0 {
		doc["data_information"] = f.Info
	}
	return writeYAML(path, doc)
}

func writeYAML(path string, v interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return encoder.Close()
}

// WriteWorkspace writes the scenario and parameter files of ws into dir and
// records their locations in ws.Files
func WriteWorkspace(dir string, ws *Workspace) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create scenario directory: %w", err)
	}

	files := Files{
		Scenario:   filepath.Join(dir, ScenarioFileName),
		Parameters: filepath.Join(dir, ParameterFileName),
	}
	if err := WriteScenarioFile(files.Scenario, ws.Scenario); err != nil {
		return err
	}
	if err := WriteParameterFile(files.Parameters, ws.Parameters); err != nil {
		return err
	}
	ws.Files = files
	return nil
}
