// Package health provides pure functions for aggregating connectivity check
// results into a stack-level verdict. No I/O happens here; the checker hands
// in results, this package judges them.
package health

import "github.com/lukecassidy/kind-stack-dev/internal/core/domain"

// =============================================================================
// Health Aggregation
// =============================================================================

// Aggregate determines overall stack health from individual check results.
//
// No results means we know nothing. Every check passing is healthy, every
// check failing is down, anything in between is degraded.
func Aggregate(results []domain.CheckResult) domain.StackHealth {
	if len(results) == 0 {
		return domain.StackUnknown
	}

	healthy := 0
	for _, r := range results {
		if r.Healthy {
			healthy++
		}
	}

	switch healthy {
	case len(results):
		return domain.StackHealthy
	case 0:
		return domain.StackDown
	default:
		return domain.StackDegraded
	}
}

// Unhealthy filters results down to the failing ones.
func Unhealthy(results []domain.CheckResult) []domain.CheckResult {
	var failed []domain.CheckResult
	for _, r := range results {
		if !r.Healthy {
			failed = append(failed, r)
		}
	}
	return failed
}
