package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vsinha/aerosim/pkg/application/services/mda"
	"github.com/vsinha/aerosim/pkg/application/services/scenario"
	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/infrastructure/config"
	"github.com/vsinha/aerosim/pkg/infrastructure/events"
	"github.com/vsinha/aerosim/pkg/infrastructure/logging"
	"github.com/vsinha/aerosim/pkg/infrastructure/observability"
	"github.com/vsinha/aerosim/pkg/interfaces/cli/output"
)

// Config holds configuration for the run command
type Config struct {
	ScenarioDir    string
	ScenarioFile   string
	ParametersFile string
	PathwaysFile   string
	HistoryFile    string
	OutputDir      string
	Format         string
	Verbose        bool
	Help           bool

	// Model options
	PriceElasticity bool
	Baseline        string
	Overrides       []string // name=value scalar overrides

	// Orchestrator options
	Parallel      bool
	Tolerance     float64
	MaxIterations int

	// Ambient options
	Trace     bool
	LogLevel  string
	LogFormat string

	// Stdout and Stderr default to the process streams
	Stdout io.Writer
	Stderr io.Writer
}

func (c Config) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

func (c Config) stderr() io.Writer {
	if c.Stderr == nil {
		return os.Stderr
	}
	return c.Stderr
}

// RunCommand computes one scenario and writes its results
type RunCommand struct {
	config Config
}

// NewRunCommand creates a new run command with the given configuration
func NewRunCommand(config Config) *RunCommand {
	return &RunCommand{
		config: config,
	}
}

// Execute runs the scenario
func (c *RunCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	out := c.config.stdout()

	// Validate inputs
	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	overrides, err := ParseOverrides(c.config.Overrides)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	logger, err := logging.New(c.config.stderr(), logging.Config{Level: c.config.LogLevel, Format: c.config.LogFormat})
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled: c.config.Trace,
		Writer:  c.config.stderr(),
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialise tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, logger)

	// Load scenario files
	files := c.resolveInputFiles()
	if c.config.Verbose {
		c.printHeader(files)
		fmt.Fprintln(out, "📂 Loading scenario files...")
	}

	ws, err := config.LoadWorkspace(files)
	if err != nil {
		return fmt.Errorf("error loading scenario: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintf(out, "✅ Scenario loaded successfully:\n")
		fmt.Fprintf(out, "  Pathways: %d\n", len(ws.Scenario.Pathways))
		fmt.Fprintf(out, "  Resources: %d\n", len(ws.Scenario.Resources))
		fmt.Fprintf(out, "  Processes: %d\n", len(ws.Scenario.Processes))
		fmt.Fprintf(out, "  Fleet Categories: %d\n", len(ws.Scenario.Categories))
		fmt.Fprintf(out, "  Parameters: %d\n", len(ws.Parameters.Parameters))
		fmt.Fprintln(out)
	}

	// Assemble the scenario
	journal := events.NewInMemoryJournal(logger)
	collector, err := observability.NewRunCollector(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("failed to create run metrics: %w", err)
	}
	if err := collector.Attach(journal); err != nil {
		return fmt.Errorf("failed to attach run metrics: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintln(out, "🔧 Assembling disciplines...")
	}
	process, err := BuildProcess(ws, c.options(logger, journal), logger)
	if err != nil {
		return err
	}
	if err := ApplyOverrides(process, ws, overrides); err != nil {
		return err
	}
	if err := process.Validate(); err != nil {
		return fmt.Errorf("scenario is incomplete: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintf(out, "✅ %d disciplines registered\n", len(process.Orchestrator().Disciplines()))
		if process.Orchestrator().Graph().HasCycles() {
			fmt.Fprintln(out, "🔁 Feedback loops detected; iterating to a fixed point")
		}
		fmt.Fprintln(out, "🔄 Computing scenario...")
	}

	// Compute
	startTime := time.Now()
	result, err := process.Compute(ctx)
	runTime := time.Since(startTime)
	if err != nil {
		return fmt.Errorf("error computing scenario: %w", err)
	}

	if !result.Converged {
		level.Warn(logger).Log("msg", "scenario finished without convergence", "run_id", result.RunID)
	}
	if c.config.Verbose {
		fmt.Fprintf(out, "✅ Scenario computed in %v\n\n", runTime)
	}

	// Generate output
	outputConfig := output.Config{
		Format:     c.config.Format,
		OutputDir:  c.config.OutputDir,
		Verbose:    c.config.Verbose,
		RunTime:    runTime,
		InputFiles: files.Map(),
		Writer:     out,
	}
	if err := output.Generate(result, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintln(out, "🏁 Scenario analysis complete!")
	}
	return nil
}

func (c *RunCommand) options(logger log.Logger, journal events.Journal) scenario.Options {
	return scenario.Options{
		PriceElasticity: c.config.PriceElasticity,
		Baseline:        c.config.Baseline,
		MDA:             orchestratorConfig(c.config.Tolerance, c.config.MaxIterations, c.config.Parallel, logger, journal),
	}
}

// orchestratorConfig overrides the orchestrator defaults with any positive limits
func orchestratorConfig(tolerance float64, maxIterations int, parallel bool, logger log.Logger, journal events.Journal) mda.Config {
	cfg := mda.DefaultConfig()
	if tolerance > 0 {
		cfg.Tolerance = tolerance
	}
	if maxIterations > 0 {
		cfg.MaxIterations = maxIterations
	}
	cfg.Parallel = parallel
	cfg.Logger = logger
	cfg.Events = journal
	return cfg
}

// BuildProcess loads a workspace into fresh repositories and assembles its
// disciplines. The time index of opts is taken from the parameter file.
func BuildProcess(ws *config.Workspace, opts scenario.Options, logger log.Logger) (*scenario.Process, error) {
	pathwayRepo, fleetRepo, paramRepo, err := ws.Repositories()
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario into repositories: %w", err)
	}

	opts.TimeIndex = ws.Parameters.TimeIndex
	process, err := scenario.NewBuilder(pathwayRepo, fleetRepo, paramRepo, logger).Build(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble scenario: %w", err)
	}
	return process, nil
}

// ParseOverrides parses name=value pairs into scalar parameters
func ParseOverrides(pairs []string) (map[string]entities.Value, error) {
	overrides := make(map[string]entities.Value, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("override must be name=value, got %q", pair)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("override %s: not a number: %q", name, raw)
		}
		overrides[name] = entities.ScalarValue(value)
	}
	return overrides, nil
}

// ApplyOverrides sets each override on process. A scalar overriding a series
// parameter replaces its prospective years and keeps its history.
func ApplyOverrides(process *scenario.Process, ws *config.Workspace, overrides map[string]entities.Value) error {
	ti := process.TimeIndex()
	for name, value := range overrides {
		if current, ok := ws.Parameters.Parameters[name]; ok &&
			current.Kind() == entities.KindSeries && value.Kind() == entities.KindScalar {
			v := value.Float()
			value = entities.SeriesValue(current.Series().Map(func(year int, old float64) float64 {
				if year >= ti.ProspectionStartYear {
					return v
				}
				return old
			}))
		}
		if err := process.SetParameter(name, value); err != nil {
			return fmt.Errorf("invalid override %s: %w", name, err)
		}
	}
	return nil
}

// validateInputs validates the command configuration
func (c *RunCommand) validateInputs() error {
	if c.config.ScenarioDir == "" && (c.config.ScenarioFile == "" || c.config.ParametersFile == "") {
		return fmt.Errorf("must specify either -scenario directory or -structure and -parameters files")
	}
	switch c.config.Format {
	case "text", "json", "csv", "xlsx":
	default:
		return fmt.Errorf("unsupported output format: %s", c.config.Format)
	}
	return nil
}

// resolveInputFiles determines the actual file paths to use. Explicit files
// take precedence over the scenario directory.
func (c *RunCommand) resolveInputFiles() config.Files {
	var files config.Files
	if c.config.ScenarioDir != "" {
		files = config.FilesInDir(c.config.ScenarioDir)
	}
	if c.config.ScenarioFile != "" {
		files.Scenario = c.config.ScenarioFile
	}
	if c.config.ParametersFile != "" {
		files.Parameters = c.config.ParametersFile
	}
	if c.config.PathwaysFile != "" {
		files.Pathways = c.config.PathwaysFile
	}
	if c.config.HistoryFile != "" {
		files.History = c.config.HistoryFile
	}
	return files
}

// printHeader prints the command header information
func (c *RunCommand) printHeader(files config.Files) {
	out := c.config.stdout()
	fmt.Fprintf(out, "🚀 Aerosim Scenario CLI\n")
	fmt.Fprintf(out, "Input files:\n")
	fmt.Fprintf(out, "  Scenario: %s\n", files.Scenario)
	fmt.Fprintf(out, "  Parameters: %s\n", files.Parameters)
	if files.Pathways != "" {
		fmt.Fprintf(out, "  Pathways: %s\n", files.Pathways)
	}
	if files.History != "" {
		fmt.Fprintf(out, "  History: %s\n", files.History)
	}
	fmt.Fprintf(out, "Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(out, "Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Fprintln(out)
}

// showHelp displays the help message
func (c *RunCommand) showHelp() {
	fmt.Fprintf(c.config.stdout(), `Aerosim - Aviation transition scenario simulator

USAGE:
    aerosim run -scenario <directory>                       # Use scenario directory
    aerosim run -structure <file> -parameters <file> ...    # Use individual files

OPTIONS:
    -scenario <dir>       Path to scenario directory
    -structure <file>     Path to scenario structure YAML (pathways, fleet)
    -parameters <file>    Path to parameter YAML
    -pathways <file>      Path to pathways CSV (replaces YAML pathways)
    -history <file>       Path to historical series CSV (overrides parameters)
    -output <dir>         Output directory for results (optional)
    -format <fmt>         Output format: text, json, csv, xlsx (default: text)
    -elasticity           Close the airfare to traffic feedback loop
    -baseline <pathway>   Baseline pathway for cost comparison (default: drop-in default)
    -set name=value       Override a scalar parameter (repeatable)
    -parallel             Compute independent disciplines concurrently
    -tolerance <x>        Feedback loop convergence tolerance (default: 1e-9)
    -max-iter <n>         Maximum sweeps per feedback loop (default: 100)
    -trace                Export orchestrator spans to stderr
    -log-level <lvl>      debug, info, warn, error (default: info)
    -log-format <fmt>     logfmt or json (default: logfmt)
    -verbose              Enable verbose output
    -help                 Show this help message

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── scenario.yaml     # Pathways, resources, processes and fleet
    ├── parameters.yaml   # Time index, parameters, variable units
    ├── pathways.csv      # Optional pathway table
    └── history.csv       # Optional yearly series (year,<variable>...)

EXAMPLES:
    # Run the reference scenario
    aerosim run -scenario scenarios/reference -verbose

    # Close the price elasticity loop and export a workbook
    aerosim run -scenario scenarios/reference -elasticity -format xlsx -output results/

    # Explore a higher growth rate
    aerosim run -scenario scenarios/reference -set rpk_growth_rate=4
`)
}
