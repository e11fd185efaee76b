// Package domain holds the shared value types of the harness. It contains no
// I/O; every other package depends on it and it depends on nothing internal.
package domain

import "time"

// =============================================================================
// Service Mode
// =============================================================================

// Mode is the deployment flavor of a catalog service: a real build or a
// lightweight mock stand-in.
type Mode string

const (
	ModeReal Mode = "real"
	ModeMock Mode = "mock"
)

// ModeAnnotation is set on workload pods so the cluster itself records which
// flavor is running. Status reads it back instead of trusting local state.
const ModeAnnotation = "kind-stack.dev/mode"

// =============================================================================
// Service State
// =============================================================================

// ServiceState is the observed state of one stack workload in the cluster.
type ServiceState struct {
	Name            string     `json:"name"`
	Mode            Mode       `json:"mode,omitempty"`
	Found           bool       `json:"found"`
	Ready           bool       `json:"ready"`
	ReadyReplicas   int32      `json:"ready_replicas"`
	DesiredReplicas int32      `json:"desired_replicas"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

// =============================================================================
// Connectivity Checks
// =============================================================================

// CheckTarget identifies one endpoint the connectivity checker probes.
type CheckTarget struct {
	Service string `json:"service"`
	URL     string `json:"url"`
}

// CheckResult is the outcome of probing a single target.
type CheckResult struct {
	Service    string        `json:"service"`
	URL        string        `json:"url"`
	Healthy    bool          `json:"healthy"`
	StatusCode int           `json:"status_code,omitempty"`
	Latency    time.Duration `json:"latency_ms"`
	Error      string        `json:"error,omitempty"`
	CheckedAt  time.Time     `json:"checked_at"`
}

// =============================================================================
// Stack Health
// =============================================================================

// StackHealth is the aggregate health of the deployed stack.
type StackHealth string

const (
	StackHealthy  StackHealth = "healthy"
	StackDegraded StackHealth = "degraded"
	StackDown     StackHealth = "down"
	StackUnknown  StackHealth = "unknown"
)
