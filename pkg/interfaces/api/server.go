package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/vsinha/aerosim/pkg/application/dto"
	"github.com/vsinha/aerosim/pkg/domain/entities"
)

// RunRequest selects the options and parameter overrides of one computation
type RunRequest struct {
	PriceElasticity bool               `json:"price_elasticity"`
	Baseline        string             `json:"baseline,omitempty"`
	Overrides       map[string]float64 `json:"overrides,omitempty"`
}

// RunFunc computes the served scenario for one request
type RunFunc func(ctx context.Context, req RunRequest) (*dto.ScenarioResult, error)

// ErrBadRequest marks RunFunc errors caused by the request itself
var ErrBadRequest = errors.New("bad request")

// maxStoredRuns bounds the results kept for GET /scenarios/{runID}
const maxStoredRuns = 32

type Server struct {
	run    RunFunc
	logger log.Logger

	mu      sync.RWMutex
	results map[string]*dto.ScenarioResult
	order   []string
}

// New constructs the HTTP router. metrics may be nil.
func New(run RunFunc, metrics http.Handler, logger log.Logger) http.Handler {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	s := &Server{
		run:     run,
		logger:  logger,
		results: make(map[string]*dto.ScenarioResult, maxStoredRuns),
	}

	r := chi.NewRouter()
	r.Use(s.logRequests)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/scenarios", func(r chi.Router) {
		r.Post("/run", s.handleRun)
		r.Get("/{runID}", s.handleResult)
		r.Get("/{runID}/series/{name}", s.handleSeries)
	})

	return r
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "bad request")
			return
		}
	}

	result, err := s.run(r.Context(), req)
	if err != nil {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			status = http.StatusServiceUnavailable
		case isClientError(err):
			status = http.StatusBadRequest
		}
		level.Warn(s.logger).Log("msg", "scenario run failed", "err", err)
		writeJSONError(w, status, err.Error())
		return
	}

	s.store(result)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	result, ok := s.lookup(chi.URLParam(r, "runID"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	result, ok := s.lookup(chi.URLParam(r, "runID"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "run not found")
		return
	}
	name := chi.URLParam(r, "name")
	ts, ok := result.Series(name)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "series not found: "+name)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Name   string              `json:"name"`
		Unit   string              `json:"unit,omitempty"`
		Series entities.TimeSeries `json:"series"`
	}{Name: name, Unit: result.Info[name].Unit, Series: ts})
}

// store keeps result for later lookup, evicting the oldest run
func (s *Server) store(result *dto.ScenarioResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) >= maxStoredRuns {
		delete(s.results, s.order[0])
		s.order = s.order[1:]
	}
	s.results[result.RunID] = result
	s.order = append(s.order, result.RunID)
}

func (s *Server) lookup(runID string) (*dto.ScenarioResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[runID]
	return result, ok
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		level.Debug(s.logger).Log("msg", "request served", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

// isClientError reports whether err stems from the request rather than the
// served scenario. Missing inputs or kind mismatches raised while computing
// are faults of the loaded scenario and stay 422.
func isClientError(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
