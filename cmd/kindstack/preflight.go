package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lukecassidy/kind-stack-dev/internal/core/preflight"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/helm"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/kind"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/kubectl"
)

// collectToolVersions runs each tool's version command. Tools that fail or
// are missing stay out of the map so evaluation reports them as absent.
func collectToolVersions(ctx context.Context) map[string]string {
	versions := make(map[string]string)

	if out, err := kind.NewCLI(logger).Version(ctx); err == nil {
		versions["kind"] = out
	}
	if out, err := kubectl.NewCLI("", logger).Version(ctx); err == nil {
		versions["kubectl"] = out
	}
	if out, err := helm.NewCLI("", logger).Version(ctx); err == nil {
		versions["helm"] = out
	}

	return versions
}

// runPreflight verifies external tool versions before a deploy touches
// anything. Every failure is reported before the command aborts.
func runPreflight(ctx context.Context) error {
	results := preflight.Evaluate(preflight.DefaultRequirements(), collectToolVersions(ctx))

	failed := preflight.Failed(results)
	if len(failed) == 0 {
		for _, r := range results {
			logger.Debug("preflight check passed", "tool", r.Tool, "version", r.Version)
		}
		return nil
	}

	for _, r := range failed {
		if r.Missing {
			fmt.Fprintf(os.Stderr, "preflight: %s %s\n", r.Tool, r.Detail)
			continue
		}
		fmt.Fprintf(os.Stderr, "preflight: %s: %s\n", r.Tool, r.Detail)
	}

	return &ExitError{
		Code: ExitConfigError,
		Err:  fmt.Errorf("preflight failed: %d tool(s) missing or too old", len(failed)),
	}
}
