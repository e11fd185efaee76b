// Package api serves the harness's local status API: stack state, run
// history, and on-demand connectivity checks, aggregated for dashboards and
// scripts that would otherwise shell out to kubectl.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/lukecassidy/kind-stack-dev/internal/core/catalog"
	"github.com/lukecassidy/kind-stack-dev/internal/core/domain"
	"github.com/lukecassidy/kind-stack-dev/internal/core/health"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/checks"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/store"
)

// =============================================================================
// Collaborator Interfaces
// =============================================================================

// StateProvider reads workload state from the cluster.
type StateProvider interface {
	Ping(ctx context.Context) (string, error)
	ServiceStates(ctx context.Context, namespace string, cat catalog.Catalog) ([]domain.ServiceState, error)
	DatabaseState(ctx context.Context, namespace string, cat catalog.Catalog) (domain.ServiceState, error)
}

// CheckRunner probes stack endpoints.
type CheckRunner interface {
	Run(ctx context.Context, targets []domain.CheckTarget) []domain.CheckResult
}

// =============================================================================
// Handler
// =============================================================================

// Config configures the API handler.
type Config struct {
	// Namespace is the stack namespace to report on.
	Namespace string

	// CheckHost is the host checks are probed against.
	// Default: 127.0.0.1.
	CheckHost string

	// Version is reported by the health endpoint.
	Version string
}

// Handler provides HTTP handlers for the status API.
type Handler struct {
	store   store.Store
	cluster StateProvider
	checker CheckRunner
	catalog catalog.Catalog
	config  Config
	logger  *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, cluster StateProvider, checker CheckRunner, cat catalog.Catalog, config Config, logger *slog.Logger) *Handler {
	if config.CheckHost == "" {
		config.CheckHost = "127.0.0.1"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:   s,
		cluster: cluster,
		checker: checker,
		catalog: cat,
		config:  config,
		logger:  logger.With("component", "api"),
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.requestIDHeader)
	r.Use(requestMetrics)

	r.Get("/health", h.handleHealth)
	r.Get("/openapi.json", h.handleOpenAPI)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.handleStatus)
		r.Post("/checks", h.handleChecks)

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.handleListRuns)
			r.Get("/{id}", h.handleGetRun)
		})
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handler
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: h.config.Version,
	})
}

// =============================================================================
// Status Handler
// =============================================================================

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := StatusResponse{}

	version, err := h.cluster.Ping(ctx)
	if err != nil {
		// The cluster being down is a status, not a server error. History
		// still comes from the local store.
		resp.Cluster = ClusterStatus{Reachable: false, Error: err.Error()}
		if run, lrErr := h.store.LatestRun(ctx); lrErr == nil {
			resp.LastRun = run
		}
		h.writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Cluster = ClusterStatus{Reachable: true, Version: version}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		states, err := h.cluster.ServiceStates(gctx, h.config.Namespace, h.catalog)
		if err != nil {
			return err
		}
		resp.Services = states
		return nil
	})
	g.Go(func() error {
		state, err := h.cluster.DatabaseState(gctx, h.config.Namespace, h.catalog)
		if err != nil {
			return err
		}
		resp.Database = state
		return nil
	})
	g.Go(func() error {
		run, err := h.store.LatestRun(gctx)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		resp.LastRun = run
		return nil
	})

	if err := g.Wait(); err != nil {
		h.logger.Error("failed to aggregate status", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to read stack state", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Run Handlers
// =============================================================================

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	opts := store.DefaultListOptions()
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}
	opts = opts.Normalize()

	runs, err := h.store.ListRuns(r.Context(), opts)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list runs", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, RunListResponse{
		Runs:   runs,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.store.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "run not found", "run_not_found")
			return
		}
		h.logger.Error("failed to get run", "run_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get run", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, run)
}

// =============================================================================
// Check Handler
// =============================================================================

func (h *Handler) handleChecks(w http.ResponseWriter, r *http.Request) {
	targets := checks.Targets(h.catalog, h.config.CheckHost)
	results := h.checker.Run(r.Context(), targets)

	for _, result := range results {
		outcome := "unhealthy"
		if result.Healthy {
			outcome = "healthy"
		}
		checksTotal.WithLabelValues(result.Service, outcome).Inc()
	}

	h.writeJSON(w, http.StatusOK, ChecksResponse{
		Health:  health.Aggregate(results),
		Results: results,
	})
}

// =============================================================================
// Response Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
