// Package checks probes the stack's HTTP endpoints from the host side and
// reports per-service connectivity. It does not decide health policy;
// aggregation lives in the core.
package checks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lukecassidy/kind-stack-dev/internal/core/catalog"
	"github.com/lukecassidy/kind-stack-dev/internal/core/domain"
)

// =============================================================================
// Configuration
// =============================================================================

// Config configures the connectivity checker.
type Config struct {
	// Timeout is the per-request timeout.
	// Default: 5 seconds.
	Timeout time.Duration

	// Attempts is how many times a target is probed before it is reported
	// unhealthy.
	// Default: 3.
	Attempts int

	// Interval is the pause between attempts on the same target.
	// Default: 2 seconds.
	Interval time.Duration
}

// DefaultConfig returns the default checker configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:  5 * time.Second,
		Attempts: 3,
		Interval: 2 * time.Second,
	}
}

// =============================================================================
// Checker
// =============================================================================

// Checker probes check targets over HTTP.
type Checker struct {
	client *http.Client
	config Config
	logger *slog.Logger
}

// New creates a connectivity checker.
func New(config Config, logger *slog.Logger) *Checker {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Attempts == 0 {
		config.Attempts = 3
	}
	if config.Interval == 0 {
		config.Interval = 2 * time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Checker{
		client: &http.Client{Timeout: config.Timeout},
		config: config,
		logger: logger.With("component", "checks"),
	}
}

// Targets builds probe URLs for every cataloged service on host. Service
// ports are reachable on the host via kind's port mappings or an active
// forward session.
func Targets(cat catalog.Catalog, host string) []domain.CheckTarget {
	targets := make([]domain.CheckTarget, 0, len(cat.Services))
	for _, svc := range cat.Services {
		targets = append(targets, domain.CheckTarget{
			Service: svc.Name,
			URL:     fmt.Sprintf("http://%s:%d%s", host, svc.Port, svc.HealthPath),
		})
	}
	return targets
}

// Run probes each target in order and returns one result per target. A
// cancelled context stops retrying but still yields a result for every
// target so callers can always aggregate.
func (c *Checker) Run(ctx context.Context, targets []domain.CheckTarget) []domain.CheckResult {
	results := make([]domain.CheckResult, 0, len(targets))
	for _, target := range targets {
		result := c.probe(ctx, target)

		if result.Healthy {
			c.logger.Info("check passed",
				"service", target.Service,
				"status", result.StatusCode,
				"latency", result.Latency.String())
		} else {
			c.logger.Warn("check failed",
				"service", target.Service,
				"error", result.Error)
		}

		results = append(results, result)
	}
	return results
}

// probe requests a single target, retrying up to the configured attempts.
func (c *Checker) probe(ctx context.Context, target domain.CheckTarget) domain.CheckResult {
	result := domain.CheckResult{
		Service:   target.Service,
		URL:       target.URL,
		CheckedAt: time.Now().UTC(),
	}

	for attempt := 1; attempt <= c.config.Attempts; attempt++ {
		status, latency, err := c.request(ctx, target.URL)
		if err == nil && status >= 200 && status < 300 {
			result.Healthy = true
			result.StatusCode = status
			result.Latency = latency
			result.Error = ""
			return result
		}

		if err != nil {
			result.Error = err.Error()
		} else {
			result.StatusCode = status
			result.Error = fmt.Sprintf("unexpected status %d", status)
		}

		if attempt == c.config.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			result.Error = ctx.Err().Error()
			return result
		case <-time.After(c.config.Interval):
		}
	}

	return result
}

// request performs one GET and measures its latency.
func (c *Checker) request(ctx context.Context, url string) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, err
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return 0, latency, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, latency, nil
}
