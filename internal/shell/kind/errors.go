// Package kind manages the local kind cluster: creating and deleting it
// through the kind CLI, and detecting a running one through the Docker
// daemon, where kind clusters live as labeled node containers.
package kind

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrDockerUnavailable is returned when the Docker daemon cannot be reached.
	ErrDockerUnavailable = errors.New("docker daemon unavailable")

	// ErrClusterNotFound is returned when no node containers exist for the
	// cluster name.
	ErrClusterNotFound = errors.New("kind cluster not found")

	// ErrKindNotFound is returned when the kind binary is not on PATH.
	ErrKindNotFound = errors.New("kind binary not found")
)

// Error wraps a failed cluster operation.
type Error struct {
	Op      string // e.g. "CreateCluster"
	Cluster string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Cluster != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Cluster, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new kind Error.
func NewError(op, cluster, message string, err error) *Error {
	return &Error{
		Op:      op,
		Cluster: cluster,
		Message: message,
		Err:     err,
	}
}
