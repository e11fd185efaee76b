// Package helm shells out to the helm CLI. Helm is an external collaborator:
// the harness composes arguments and passes failures through verbatim, it
// never reimplements chart logic.
package helm

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrHelmNotFound is returned when the helm binary is not on PATH.
	ErrHelmNotFound = errors.New("helm binary not found")

	// ErrReleaseNotFound is returned when uninstalling a release that does
	// not exist.
	ErrReleaseNotFound = errors.New("release not found")
)

// Error wraps a failed helm invocation. Output carries helm's combined
// stdout/stderr so the operator sees exactly what helm said.
type Error struct {
	Op      string // e.g. "UpgradeInstall"
	Release string
	Output  string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("helm %s", e.Op)
	if e.Release != "" {
		msg += " " + e.Release
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		return fmt.Sprintf("%s: %v: %s", msg, e.Err, out)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new helm Error.
func NewError(op, release, output string, err error) *Error {
	return &Error{
		Op:      op,
		Release: release,
		Output:  output,
		Err:     err,
	}
}
