package helm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Argument Construction Tests
// =============================================================================

func TestUpgradeArgs(t *testing.T) {
	rel := Release{
		Name:      "devstack-api",
		Chart:     "charts/api",
		Namespace: "dev",
		Timeout:   2 * time.Minute,
	}

	args := upgradeArgs(rel, "kind-devstack", "/tmp/devstack-api-values.yaml")

	assert.Equal(t, []string{
		"upgrade", "--install", "devstack-api", "charts/api",
		"--namespace", "dev",
		"--kube-context", "kind-devstack",
		"--values", "/tmp/devstack-api-values.yaml",
		"--timeout", "2m0s",
	}, args)
}

func TestUpgradeArgs_Minimal(t *testing.T) {
	rel := Release{Name: "devstack-frontend", Chart: "charts/frontend", Namespace: "dev"}

	args := upgradeArgs(rel, "", "")

	assert.Equal(t, []string{
		"upgrade", "--install", "devstack-frontend", "charts/frontend",
		"--namespace", "dev",
	}, args)
}

func TestUninstallArgs(t *testing.T) {
	args := uninstallArgs("devstack-postgres", "dev", "kind-devstack")

	assert.Equal(t, []string{
		"uninstall", "devstack-postgres",
		"--namespace", "dev",
		"--kube-context", "kind-devstack",
	}, args)
}

// =============================================================================
// Error Tests
// =============================================================================

func TestError_IncludesHelmOutput(t *testing.T) {
	err := NewError("UpgradeInstall", "devstack-api", "Error: chart not found\n", errors.New("exit status 1"))

	assert.Contains(t, err.Error(), "devstack-api")
	assert.Contains(t, err.Error(), "chart not found")
}

func TestError_Unwrap(t *testing.T) {
	err := NewError("Uninstall", "devstack-api", "release: not found", ErrReleaseNotFound)

	assert.ErrorIs(t, err, ErrReleaseNotFound)
}
