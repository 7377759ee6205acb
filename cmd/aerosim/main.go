package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vsinha/aerosim/pkg/interfaces/cli/commands"
)

// stringList collects a repeatable flag
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// executor is implemented by every subcommand
type executor interface {
	Execute(ctx context.Context) error
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var cmd executor
	switch os.Args[1] {
	case "run":
		cmd = runCommand(os.Args[2:])
	case "generate":
		cmd = generateCommand(os.Args[2:])
	case "serve":
		cmd = serveCommand(os.Args[2:])
	case "help", "-help", "--help", "-h":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func runCommand(args []string) executor {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var (
		scenarioDir = fs.String(
			"scenario",
			"",
			"Path to scenario directory containing scenario.yaml and parameters.yaml",
		)
		structureFile  = fs.String("structure", "", "Path to scenario structure YAML file")
		parametersFile = fs.String("parameters", "", "Path to parameters YAML file")
		pathwaysFile   = fs.String("pathways", "", "Path to pathways CSV file (optional)")
		historyFile    = fs.String("history", "", "Path to historic series CSV file (optional)")
		outputDir      = fs.String("output", "", "Output directory for results (optional)")
		format         = fs.String("format", "text", "Output format: text, json, csv, xlsx")
		elasticity     = fs.Bool("elasticity", false, "Close the airfare/traffic price elasticity loop")
		baseline       = fs.String("baseline", "", "Top-down pathway used as the cost baseline")
		parallel       = fs.Bool("parallel", false, "Compute independent disciplines concurrently")
		tolerance      = fs.Float64("tolerance", 0, "Feedback loop convergence tolerance (default 1e-9)")
		maxIter        = fs.Int("max-iter", 0, "Maximum sweeps per feedback loop (default 100)")
		trace          = fs.Bool("trace", false, "Export orchestrator spans to stderr")
		logLevel       = fs.String("log-level", "info", "Log level: debug, info, warn, error")
		logFormat      = fs.String("log-format", "logfmt", "Log format: logfmt, json")
		verbose        = fs.Bool("verbose", false, "Enable verbose output")
		help           = fs.Bool("help", false, "Show help message")
	)
	var overrides stringList
	fs.Var(&overrides, "set", "Override a parameter, name=value (repeatable)")
	fs.Parse(args)

	return commands.NewRunCommand(commands.Config{
		ScenarioDir:     *scenarioDir,
		ScenarioFile:    *structureFile,
		ParametersFile:  *parametersFile,
		PathwaysFile:    *pathwaysFile,
		HistoryFile:     *historyFile,
		OutputDir:       *outputDir,
		Format:          *format,
		Verbose:         *verbose,
		Help:            *help,
		PriceElasticity: *elasticity,
		Baseline:        *baseline,
		Overrides:       overrides,
		Parallel:        *parallel,
		Tolerance:       *tolerance,
		MaxIterations:   *maxIter,
		Trace:           *trace,
		LogLevel:        *logLevel,
		LogFormat:       *logFormat,
	})
}

func generateCommand(args []string) executor {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		categories  = fs.Int("categories", 3, "Number of fleet categories")
		biofuels    = fs.Int("biofuels", 2, "Number of biofuel pathways")
		efuels      = fs.Int("efuels", 1, "Number of e-fuel pathways")
		hydrogen    = fs.Bool("hydrogen", true, "Add hydrogen pathways and aircraft")
		startYear   = fs.Int("start", 2000, "First historic year")
		prospection = fs.Int("prospection", 2020, "First prospective year")
		endYear     = fs.Int("end", 2050, "Last year of the horizon")
		outputDir   = fs.String("output", "scenario", "Output directory for generated files")
		seed        = fs.Int64("seed", 0, "Random seed (default: current time)")
		verbose     = fs.Bool("verbose", false, "Enable verbose output")
		help        = fs.Bool("help", false, "Show help message")
	)
	fs.Parse(args)

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	return commands.NewGenerateCommand(commands.GenerateConfig{
		Categories:   *categories,
		BiofuelPaths: *biofuels,
		EfuelPaths:   *efuels,
		Hydrogen:     *hydrogen,
		StartYear:    *startYear,
		Prospection:  *prospection,
		EndYear:      *endYear,
		OutputDir:    *outputDir,
		Seed:         *seed,
		Verbose:      *verbose,
		Help:         *help,
	})
}

func serveCommand(args []string) executor {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		scenarioDir = fs.String("scenario", "", "Path to scenario directory")
		addr        = fs.String("addr", ":4000", "Listen address")
		parallel    = fs.Bool("parallel", false, "Compute independent disciplines concurrently")
		tolerance   = fs.Float64("tolerance", 0, "Feedback loop convergence tolerance (default 1e-9)")
		maxIter     = fs.Int("max-iter", 0, "Maximum sweeps per feedback loop (default 100)")
		timeout     = fs.Duration("timeout", 0, "Per-run timeout (default: none)")
		trace       = fs.Bool("trace", false, "Export orchestrator spans to stderr")
		logLevel    = fs.String("log-level", "info", "Log level: debug, info, warn, error")
		logFormat   = fs.String("log-format", "logfmt", "Log format: logfmt, json")
		help        = fs.Bool("help", false, "Show help message")
	)
	fs.Parse(args)

	return commands.NewServeCommand(commands.ServeConfig{
		ScenarioDir:   *scenarioDir,
		Addr:          *addr,
		Parallel:      *parallel,
		Tolerance:     *tolerance,
		MaxIterations: *maxIter,
		RunTimeout:    *timeout,
		Trace:         *trace,
		LogLevel:      *logLevel,
		LogFormat:     *logFormat,
		Help:          *help,
	})
}

func usage() {
	fmt.Fprintf(os.Stderr, `Aerosim - aviation scenario simulator

USAGE:
    aerosim <command> [OPTIONS]

COMMANDS:
    run         Compute a scenario and write its results
    generate    Generate a synthetic scenario directory
    serve       Serve a scenario over HTTP

Run 'aerosim <command> -help' for command options.
`)
}
