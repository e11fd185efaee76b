package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Run Errors
// =============================================================================

var (
	ErrRunFinished       = errors.New("run is already finished")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// =============================================================================
// Run Status
// =============================================================================

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// validTransitions defines the allowed run status transitions.
var validTransitions = map[RunStatus][]RunStatus{
	RunStatusRunning:   {RunStatusSucceeded, RunStatusFailed},
	RunStatusSucceeded: {}, // Terminal state
	RunStatusFailed:    {}, // Terminal state
}

// ValidateTransition checks if a run status transition is valid.
func ValidateTransition(from, to RunStatus) error {
	allowed, exists := validTransitions[from]
	if !exists {
		return ErrInvalidTransition
	}

	for _, s := range allowed {
		if s == to {
			return nil
		}
	}

	return ErrInvalidTransition
}

// =============================================================================
// Run
// =============================================================================

// Run represents a single invocation of the stack deployment. It records the
// resolved decisions, not just the raw input, so history stays interpretable
// after catalog changes.
type Run struct {
	ID           string          `json:"id"`
	Cluster      string          `json:"cluster"`
	Namespace    string          `json:"namespace"`
	RealServices []string        `json:"real_services,omitempty"`
	Seed         bool            `json:"seed"`
	Database     bool            `json:"database"`
	Modes        map[string]Mode `json:"modes"`
	Status       RunStatus       `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
}

// NewRun creates a run in the running state.
func NewRun(cluster, namespace string, realServices []string, seed bool) *Run {
	return &Run{
		ID:           uuid.New().String(),
		Cluster:      cluster,
		Namespace:    namespace,
		RealServices: realServices,
		Seed:         seed,
		Modes:        make(map[string]Mode),
		Status:       RunStatusRunning,
		StartedAt:    time.Now().UTC(),
	}
}

// Complete finishes the run. A nil error marks it succeeded, anything else
// failed with the error message recorded.
func (r *Run) Complete(err error) error {
	to := RunStatusSucceeded
	if err != nil {
		to = RunStatusFailed
	}

	if vErr := ValidateTransition(r.Status, to); vErr != nil {
		return ErrRunFinished
	}

	r.Status = to
	if err != nil {
		r.ErrorMessage = err.Error()
	}
	now := time.Now().UTC()
	r.FinishedAt = &now

	return nil
}

// Finished reports whether the run reached a terminal status.
func (r *Run) Finished() bool {
	return r.Status == RunStatusSucceeded || r.Status == RunStatusFailed
}

// Duration returns the elapsed wall time of the run. For unfinished runs it
// measures up to now.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt != nil {
		return r.FinishedAt.Sub(r.StartedAt)
	}
	return time.Since(r.StartedAt)
}
