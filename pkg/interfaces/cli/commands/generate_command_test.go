package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vsinha/aerosim/pkg/infrastructure/config"
)

func generateConfig(dir string) GenerateConfig {
	return GenerateConfig{
		Categories:   3,
		BiofuelPaths: 2,
		EfuelPaths:   2,
		Hydrogen:     true,
		StartYear:    2000,
		Prospection:  2020,
		EndYear:      2050,
		OutputDir:    dir,
		Seed:         42,
	}
}

func TestGenerateCommand_WritesRunnableScenario(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "generated")
	if err := NewGenerateCommand(generateConfig(dir)).Execute(context.Background()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	files := config.FilesInDir(dir)
	if files.History == "" {
		t.Fatal("Expected history.csv to be generated")
	}

	ws, err := config.LoadWorkspace(files)
	if err != nil {
		t.Fatalf("Failed to load generated scenario: %v", err)
	}
	if len(ws.Scenario.Categories) != 3 {
		t.Errorf("Expected 3 categories, got %d", len(ws.Scenario.Categories))
	}
	// kerosene, 2 biofuels, 2 e-fuels, 2 hydrogen
	if len(ws.Scenario.Pathways) != 7 {
		t.Errorf("Expected 7 pathways, got %d", len(ws.Scenario.Pathways))
	}
	if _, ok := ws.Parameters.Parameters["rpk_init"]; !ok {
		t.Error("Expected rpk_init among the parameters")
	}

	var stdout bytes.Buffer
	err = NewRunCommand(Config{
		ScenarioDir: dir,
		Format:      "json",
		LogLevel:    "error",
		Stdout:      &stdout,
		Stderr:      io.Discard,
	}).Execute(context.Background())
	if err != nil {
		t.Fatalf("Run of generated scenario failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "efuel_1") {
		t.Error("Expected efuel_1 in the run output")
	}
}

func TestGenerateCommand_DropInOnly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dropin")
	cfg := generateConfig(dir)
	cfg.Hydrogen = false
	cfg.EfuelPaths = 0
	if err := NewGenerateCommand(cfg).Execute(context.Background()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	ws, err := config.LoadWorkspace(config.FilesInDir(dir))
	if err != nil {
		t.Fatalf("Failed to load generated scenario: %v", err)
	}
	if len(ws.Scenario.Resources) != 0 {
		t.Errorf("Expected no resources, got %d", len(ws.Scenario.Resources))
	}
	for _, category := range ws.Scenario.Categories {
		for _, sub := range category.Subcategories {
			for _, ac := range sub.Aircraft {
				if ac.EnergyType.String() != "dropin_fuel" {
					t.Errorf("Aircraft %s: expected dropin_fuel, got %s", ac.Name, ac.EnergyType)
				}
			}
		}
	}

	err = NewRunCommand(Config{
		ScenarioDir: dir,
		Format:      "text",
		LogLevel:    "error",
		Stdout:      io.Discard,
		Stderr:      io.Discard,
	}).Execute(context.Background())
	if err != nil {
		t.Fatalf("Run of generated scenario failed: %v", err)
	}
}

func TestGenerateCommand_IsReproducible(t *testing.T) {
	first := filepath.Join(t.TempDir(), "first")
	second := filepath.Join(t.TempDir(), "second")
	for _, dir := range []string{first, second} {
		if err := NewGenerateCommand(generateConfig(dir)).Execute(context.Background()); err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
	}

	for _, name := range []string{config.ScenarioFileName, config.ParameterFileName, config.HistoryFileName} {
		a, err := os.ReadFile(filepath.Join(first, name))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", name, err)
		}
		b, err := os.ReadFile(filepath.Join(second, name))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", name, err)
		}
		if string(a) != string(b) {
			t.Errorf("Expected %s to be identical for the same seed", name)
		}
	}
}

func TestGenerateCommand_Errors(t *testing.T) {
	cfg := generateConfig(t.TempDir())
	cfg.Categories = 0
	if err := NewGenerateCommand(cfg).Execute(context.Background()); err == nil {
		t.Error("Expected error for zero categories, got none")
	}

	cfg = generateConfig(t.TempDir())
	cfg.Prospection = 1990
	err := NewGenerateCommand(cfg).Execute(context.Background())
	if err == nil {
		t.Fatal("Expected error for an invalid horizon, got none")
	}
	if !strings.Contains(err.Error(), "invalid horizon") {
		t.Errorf("Expected invalid horizon error, got: %v", err)
	}
}
