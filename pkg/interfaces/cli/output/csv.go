package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vsinha/aerosim/pkg/application/dto"
)

// generateCSVOutput creates one CSV file per table
func generateCSVOutput(result *dto.ScenarioResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tables := []table{seriesTable(result), scalarTable(result), vintageTable(result)}
	written := make([]string, 0, len(tables))
	for _, t := range tables {
		filename := filepath.Join(config.OutputDir, t.name+".csv")
		if err := writeTableCSV(t, filename); err != nil {
			return fmt.Errorf("failed to write %s CSV: %w", t.name, err)
		}
		written = append(written, filename)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 CSV results saved to:\n")
		for _, filename := range written {
			fmt.Fprintf(config.writer(), "  %s\n", filename)
		}
	}
	return nil
}

func writeTableCSV(t table, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(t.header); err != nil {
		return err
	}
	record := make([]string, len(t.header))
	for _, row := range t.rows {
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := writer.Write(record[:len(row)]); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
