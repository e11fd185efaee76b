// Package kubectl shells out to kubectl for the few operations client-go is
// a poor fit for, chiefly long-lived port-forward sessions.
package kubectl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrKubectlNotFound is returned when the kubectl binary is not on PATH.
	ErrKubectlNotFound = errors.New("kubectl binary not found")
)

// Error wraps a failed kubectl invocation.
type Error struct {
	Op     string // e.g. "PortForward"
	Target string
	Output string
	Err    error
}

func (e *Error) Error() string {
	if out := strings.TrimSpace(e.Output); out != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Target, out)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new kubectl Error.
func NewError(op, target, output string, err error) *Error {
	return &Error{
		Op:     op,
		Target: target,
		Output: output,
		Err:    err,
	}
}

// =============================================================================
// CLI Wrapper
// =============================================================================

// CLI runs kubectl against a fixed context.
type CLI struct {
	bin         string
	kubeContext string
	logger      *slog.Logger
}

// NewCLI creates a kubectl wrapper pinned to kubeContext.
func NewCLI(kubeContext string, logger *slog.Logger) *CLI {
	return &CLI{
		bin:         "kubectl",
		kubeContext: kubeContext,
		logger:      logger.With("component", "kubectl"),
	}
}

// portForwardArgs builds the argv for a port-forward session.
func portForwardArgs(namespace, target string, localPort, remotePort int, kubeContext string) []string {
	return []string{
		"port-forward", target,
		fmt.Sprintf("%d:%d", localPort, remotePort),
		"--namespace", namespace,
		"--context", kubeContext,
	}
}

// PortForward forwards localPort to remotePort on target (e.g.
// "deployment/api") and blocks until ctx is cancelled or the session drops.
// Context cancellation is the normal way to end a session and is not
// reported as an error.
func (c *CLI) PortForward(ctx context.Context, namespace, target string, localPort, remotePort int) error {
	c.logger.Info("forwarding port",
		"target", target,
		"local_port", localPort,
		"remote_port", remotePort)

	args := portForwardArgs(namespace, target, localPort, remotePort, c.kubeContext)
	cmd := exec.CommandContext(ctx, c.bin, args...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return NewError("PortForward", target, string(out), ErrKubectlNotFound)
		}
		return NewError("PortForward", target, string(out), err)
	}

	return nil
}

// Version returns kubectl's client version output.
func (c *CLI) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, c.bin, "version", "--client")
	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", NewError("Version", "client", string(out), ErrKubectlNotFound)
		}
		return "", NewError("Version", "client", string(out), err)
	}
	return strings.TrimSpace(string(out)), nil
}
