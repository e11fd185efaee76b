package helm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/lukecassidy/kind-stack-dev/internal/core/values"
)

// =============================================================================
// Runner Interface
// =============================================================================

// Release describes one helm release the harness manages.
type Release struct {
	Name      string
	Chart     string
	Namespace string
	Values    map[string]any
	Timeout   time.Duration
}

// Runner abstracts helm operations so orchestration can be tested without a
// cluster.
type Runner interface {
	UpgradeInstall(ctx context.Context, rel Release) error
	Uninstall(ctx context.Context, name, namespace string) error
	Lint(ctx context.Context, chartPath string) (string, error)
	Version(ctx context.Context) (string, error)
}

// =============================================================================
// CLI Runner
// =============================================================================

// CLI runs helm through its command-line binary.
type CLI struct {
	bin         string
	kubeContext string
	logger      *slog.Logger
}

// NewCLI creates a helm CLI runner pinned to a kubeconfig context.
func NewCLI(kubeContext string, logger *slog.Logger) *CLI {
	return &CLI{
		bin:         "helm",
		kubeContext: kubeContext,
		logger:      logger.With("component", "helm"),
	}
}

// upgradeArgs builds the argv for an upgrade --install invocation.
func upgradeArgs(rel Release, kubeContext, valuesFile string) []string {
	args := []string{
		"upgrade", "--install", rel.Name, rel.Chart,
		"--namespace", rel.Namespace,
	}
	if kubeContext != "" {
		args = append(args, "--kube-context", kubeContext)
	}
	if valuesFile != "" {
		args = append(args, "--values", valuesFile)
	}
	if rel.Timeout > 0 {
		args = append(args, "--timeout", rel.Timeout.String())
	}
	return args
}

// uninstallArgs builds the argv for an uninstall invocation.
func uninstallArgs(name, namespace, kubeContext string) []string {
	args := []string{"uninstall", name, "--namespace", namespace}
	if kubeContext != "" {
		args = append(args, "--kube-context", kubeContext)
	}
	return args
}

// UpgradeInstall installs or upgrades a release. Values are rendered to a
// temporary file for the duration of the call; readiness is the caller's
// concern, helm only needs to get the manifests applied.
func (c *CLI) UpgradeInstall(ctx context.Context, rel Release) error {
	valuesFile := ""
	if len(rel.Values) > 0 {
		rendered, err := values.Render(rel.Values)
		if err != nil {
			return NewError("UpgradeInstall", rel.Name, "", err)
		}

		f, err := os.CreateTemp("", values.ValuesFileName(rel.Name))
		if err != nil {
			return NewError("UpgradeInstall", rel.Name, "", err)
		}
		defer os.Remove(f.Name())

		if _, err := f.Write(rendered); err != nil {
			f.Close()
			return NewError("UpgradeInstall", rel.Name, "", err)
		}
		if err := f.Close(); err != nil {
			return NewError("UpgradeInstall", rel.Name, "", err)
		}
		valuesFile = f.Name()
	}

	args := upgradeArgs(rel, c.kubeContext, valuesFile)
	c.logger.Debug("running helm", "args", strings.Join(args, " "))

	out, err := c.run(ctx, args...)
	if err != nil {
		return NewError("UpgradeInstall", rel.Name, out, err)
	}

	c.logger.Info("release applied", "release", rel.Name, "chart", rel.Chart)
	return nil
}

// Uninstall removes a release. A release that does not exist returns
// ErrReleaseNotFound, which teardown treats as already done.
func (c *CLI) Uninstall(ctx context.Context, name, namespace string) error {
	out, err := c.run(ctx, uninstallArgs(name, namespace, c.kubeContext)...)
	if err != nil {
		if strings.Contains(out, "not found") {
			return NewError("Uninstall", name, out, ErrReleaseNotFound)
		}
		return NewError("Uninstall", name, out, err)
	}

	c.logger.Info("release uninstalled", "release", name)
	return nil
}

// Lint runs helm lint on a chart and returns helm's report.
func (c *CLI) Lint(ctx context.Context, chartPath string) (string, error) {
	out, err := c.run(ctx, "lint", chartPath)
	if err != nil {
		return out, NewError("Lint", "", out, err)
	}
	return out, nil
}

// Version returns helm's raw version output.
func (c *CLI) Version(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "version", "--short")
	if err != nil {
		return "", NewError("Version", "", out, err)
	}
	return strings.TrimSpace(out), nil
}

// run executes helm and returns its combined output.
func (c *CLI) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return string(out), fmt.Errorf("%w: install helm or add it to PATH", ErrHelmNotFound)
		}
		return string(out), err
	}
	return string(out), nil
}
