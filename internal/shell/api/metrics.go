package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lukecassidy/kind-stack-dev/internal/shell/store"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kindstack_http_requests_total",
			Help: "Number of API requests by method, route and status code.",
		},
		[]string{"method", "route", "code"},
	)

	checksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kindstack_checks_total",
			Help: "Number of connectivity check probes by service and outcome.",
		},
		[]string{"service", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		checksTotal,
	)
}

// =============================================================================
// Run History Collector
// =============================================================================

var (
	runsTotalDesc = prometheus.NewDesc(
		"kindstack_runs_total",
		"Number of recorded runs by terminal status.",
		[]string{"status"}, nil,
	)
	lastDeployDurationDesc = prometheus.NewDesc(
		"kindstack_last_deploy_duration_seconds",
		"Wall time of the most recent finished run.",
		nil, nil,
	)
)

// runsCollector exports run history as metrics at scrape time. Deploys happen
// in separate short-lived processes, so the store is the only shared record.
type runsCollector struct {
	store  store.Store
	logger *slog.Logger
}

// RegisterRunsCollector registers the run history collector. Registering the
// same store twice is tolerated so restarts of the serve loop stay clean.
func RegisterRunsCollector(s store.Store, logger *slog.Logger) {
	c := &runsCollector{store: s, logger: logger}
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			logger.Error("failed to register runs collector", "error", err)
		}
	}
}

func (c *runsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- runsTotalDesc
	ch <- lastDeployDurationDesc
}

func (c *runsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := c.store.CountRunsByStatus(ctx)
	if err != nil {
		c.logger.Error("failed to collect run counts", "error", err)
		return
	}
	for status, count := range counts {
		ch <- prometheus.MustNewConstMetric(runsTotalDesc, prometheus.GaugeValue, float64(count), string(status))
	}

	run, err := c.store.LatestRun(ctx)
	if err != nil || !run.Finished() {
		return
	}
	ch <- prometheus.MustNewConstMetric(lastDeployDurationDesc, prometheus.GaugeValue, run.Duration().Seconds())
}

// requestMetrics counts requests against the matched route pattern so
// per-run IDs do not explode label cardinality.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
	})
}
