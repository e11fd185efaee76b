package kind

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// =============================================================================
// CLI Wrapper
// =============================================================================

// CLI runs cluster lifecycle operations through the kind binary. Cluster
// provisioning stays kind's job; the harness only passes arguments through.
type CLI struct {
	bin    string
	logger *slog.Logger
}

// NewCLI creates a kind CLI wrapper.
func NewCLI(logger *slog.Logger) *CLI {
	return &CLI{
		bin:    "kind",
		logger: logger.With("component", "kind"),
	}
}

// createArgs builds the argv for cluster creation.
func createArgs(name, configPath, nodeImage string) []string {
	args := []string{"create", "cluster", "--name", name}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	if nodeImage != "" {
		args = append(args, "--image", nodeImage)
	}
	return args
}

// CreateCluster creates a kind cluster. configPath and nodeImage are
// optional pass-throughs to kind.
func (c *CLI) CreateCluster(ctx context.Context, name, configPath, nodeImage string) error {
	c.logger.Info("creating cluster", "cluster", name)

	out, err := c.run(ctx, createArgs(name, configPath, nodeImage)...)
	if err != nil {
		if strings.Contains(out, "already exist") {
			c.logger.Info("cluster already exists", "cluster", name)
			return nil
		}
		return NewError("CreateCluster", name, strings.TrimSpace(out), err)
	}

	return nil
}

// DeleteCluster deletes a kind cluster. Deleting an absent cluster is a no-op
// for kind itself, so no special handling is needed.
func (c *CLI) DeleteCluster(ctx context.Context, name string) error {
	c.logger.Info("deleting cluster", "cluster", name)

	out, err := c.run(ctx, "delete", "cluster", "--name", name)
	if err != nil {
		return NewError("DeleteCluster", name, strings.TrimSpace(out), err)
	}

	return nil
}

// ListClusters returns the names of existing kind clusters.
func (c *CLI) ListClusters(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "get", "clusters")
	if err != nil {
		return nil, NewError("ListClusters", "", strings.TrimSpace(out), err)
	}

	var clusters []string
	for _, line := range strings.Split(out, "\n") {
		if name := strings.TrimSpace(line); name != "" && name != "No kind clusters found." {
			clusters = append(clusters, name)
		}
	}
	return clusters, nil
}

// Version returns kind's raw version output.
func (c *CLI) Version(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "version")
	if err != nil {
		return "", NewError("Version", "", strings.TrimSpace(out), err)
	}
	return strings.TrimSpace(out), nil
}

// run executes kind and returns its combined output.
func (c *CLI) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return string(out), fmt.Errorf("%w: install kind or add it to PATH", ErrKindNotFound)
		}
		return string(out), err
	}
	return string(out), nil
}
