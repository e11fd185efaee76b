// kindstack is a local Kubernetes development harness. It deploys a small
// service stack into a kind cluster with per-service real or mock modes,
// records deploy history, and serves a status API over the result.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lukecassidy/kind-stack-dev/internal/shell/helm"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/kind"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/kube"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/store"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitConfigError  = 1
	ExitClusterError = 2
	ExitDeployError  = 3
	ExitStoreError   = 4
	ExitCheckFailed  = 5
)

// Version information (set by build flags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// ExitError carries an explicit exit code through cobra's error return.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		return exitCode(err)
	}

	return ExitSuccess
}

// exitCode maps an error to a process exit code based on which layer it
// came from.
func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		return ExitStoreError
	}

	var kindErr *kind.Error
	if errors.As(err, &kindErr) {
		return ExitClusterError
	}

	var kubeErr *kube.Error
	if errors.As(err, &kubeErr) {
		return ExitClusterError
	}

	var helmErr *helm.Error
	if errors.As(err, &helmErr) {
		return ExitDeployError
	}

	return ExitConfigError
}

func printError(err error) {
	if logger != nil {
		logger.Error("command failed", "error", err)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
