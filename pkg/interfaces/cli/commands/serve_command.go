package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vsinha/aerosim/pkg/application/dto"
	"github.com/vsinha/aerosim/pkg/application/services/scenario"
	"github.com/vsinha/aerosim/pkg/domain/entities"
	"github.com/vsinha/aerosim/pkg/infrastructure/config"
	"github.com/vsinha/aerosim/pkg/infrastructure/events"
	"github.com/vsinha/aerosim/pkg/infrastructure/logging"
	"github.com/vsinha/aerosim/pkg/infrastructure/observability"
	"github.com/vsinha/aerosim/pkg/interfaces/api"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	ScenarioDir   string
	Addr          string
	Parallel      bool
	Tolerance     float64
	MaxIterations int
	RunTimeout    time.Duration
	Trace         bool
	LogLevel      string
	LogFormat     string
	Help          bool

	// Stderr defaults to the process stream
	Stderr io.Writer
}

// ServeCommand exposes one scenario over HTTP
type ServeCommand struct {
	config ServeConfig
}

// NewServeCommand creates a new serve command
func NewServeCommand(config ServeConfig) *ServeCommand {
	return &ServeCommand{config: config}
}

// Execute serves until ctx is cancelled
func (c *ServeCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}
	if c.config.ScenarioDir == "" {
		return fmt.Errorf("validation error: must specify -scenario directory")
	}

	errOut := c.config.Stderr
	if errOut == nil {
		errOut = os.Stderr
	}
	logger, err := logging.New(errOut, logging.Config{Level: c.config.LogLevel, Format: c.config.LogFormat})
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled: c.config.Trace,
		Writer:  errOut,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialise tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	handler, err := c.Handler(logger)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", c.addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.addr(), err)
	}
	return Serve(ctx, listener, handler, logger)
}

// Handler loads the scenario and builds the API handler serving it
func (c *ServeCommand) Handler(logger log.Logger) (http.Handler, error) {
	ws, err := config.LoadWorkspace(config.FilesInDir(c.config.ScenarioDir))
	if err != nil {
		return nil, fmt.Errorf("error loading scenario: %w", err)
	}

	registry := prometheus.NewRegistry()
	collector, err := observability.NewRunCollector(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create run metrics: %w", err)
	}

	run := func(ctx context.Context, req api.RunRequest) (*dto.ScenarioResult, error) {
		if c.config.RunTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.config.RunTimeout)
			defer cancel()
		}

		journal := events.NewInMemoryJournal(logger)
		if err := collector.Attach(journal); err != nil {
			return nil, err
		}

		process, err := BuildProcess(ws, scenario.Options{
			PriceElasticity: req.PriceElasticity,
			Baseline:        req.Baseline,
			MDA:             orchestratorConfig(c.config.Tolerance, c.config.MaxIterations, c.config.Parallel, logger, journal),
		}, logger)
		if errors.Is(err, scenario.ErrUnknownBaseline) {
			return nil, fmt.Errorf("%w: %v", api.ErrBadRequest, err)
		}
		if err != nil {
			return nil, err
		}

		overrides := make(map[string]entities.Value, len(req.Overrides))
		for name, v := range req.Overrides {
			overrides[name] = entities.ScalarValue(v)
		}
		if err := ApplyOverrides(process, ws, overrides); err != nil {
			return nil, fmt.Errorf("%w: %v", api.ErrBadRequest, err)
		}
		if err := process.Validate(); err != nil {
			return nil, err
		}
		return process.Compute(ctx)
	}

	level.Info(logger).Log(
		"msg", "scenario loaded",
		"dir", c.config.ScenarioDir,
		"pathways", len(ws.Scenario.Pathways),
		"categories", len(ws.Scenario.Categories),
	)
	return api.New(run, collector.Handler(), logger), nil
}

// Serve runs an HTTP server on listener until ctx is cancelled, then shuts it down gracefully
func Serve(ctx context.Context, listener net.Listener, handler http.Handler, logger log.Logger) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		level.Info(logger).Log("msg", "server listening", "addr", listener.Addr().String())
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		level.Info(logger).Log("msg", "shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}

func (c *ServeCommand) addr() string {
	if c.config.Addr == "" {
		return ":4000"
	}
	return c.config.Addr
}

// showHelp displays the help message
func (c *ServeCommand) showHelp() {
	fmt.Printf(`Aerosim Scenario Server

USAGE:
    aerosim serve -scenario <directory> [OPTIONS]

OPTIONS:
    -scenario <dir>     Path to scenario directory (required)
    -addr <addr>        Listen address (default: :4000)
    -parallel           Compute independent disciplines concurrently
    -tolerance <x>      Feedback loop convergence tolerance (default: 1e-9)
    -max-iter <n>       Maximum sweeps per feedback loop (default: 100)
    -timeout <d>        Per-run timeout, e.g. 30s (default: none)
    -trace              Export orchestrator spans to stderr
    -log-level <lvl>    debug, info, warn, error (default: info)
    -log-format <fmt>   logfmt or json (default: logfmt)
    -help               Show this help message

ENDPOINTS:
    GET  /health                          Liveness probe
    GET  /metrics                         Prometheus run metrics
    POST /scenarios/run                   Compute the scenario
         {"price_elasticity": true, "baseline": "fossil_kerosene",
          "overrides": {"carbon_price": 150}}
    GET  /scenarios/{runID}               Fetch a recent result
    GET  /scenarios/{runID}/series/{name} Fetch one series of a recent result
`)
}
