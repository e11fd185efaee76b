package api

import (
	"github.com/lukecassidy/kind-stack-dev/internal/core/domain"
)

// =============================================================================
// Response Types
// =============================================================================

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// ErrorResponse is the error envelope for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ClusterStatus describes API server reachability.
type ClusterStatus struct {
	Reachable bool   `json:"reachable"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// StatusResponse is the aggregated view of the deployed stack.
type StatusResponse struct {
	Cluster  ClusterStatus         `json:"cluster"`
	Database domain.ServiceState   `json:"database"`
	Services []domain.ServiceState `json:"services"`
	LastRun  *domain.Run           `json:"last_run,omitempty"`
}

// RunListResponse is a page of run history.
type RunListResponse struct {
	Runs   []domain.Run `json:"runs"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// ChecksResponse is the outcome of an on-demand connectivity check.
type ChecksResponse struct {
	Health  domain.StackHealth   `json:"health"`
	Results []domain.CheckResult `json:"results"`
}
