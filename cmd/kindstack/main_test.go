package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lukecassidy/kind-stack-dev/internal/shell/helm"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/kind"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/kube"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/store"
)

// =============================================================================
// Exit Code Tests
// =============================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "explicit exit error",
			err:  &ExitError{Code: ExitCheckFailed, Err: errors.New("2 services unhealthy")},
			want: ExitCheckFailed,
		},
		{
			name: "store error",
			err:  store.NewStoreError("create", "run", "abc", "insert failed", store.ErrDuplicateID),
			want: ExitStoreError,
		},
		{
			name: "kind error",
			err:  kind.NewError("Detect", "dev", "no node containers", kind.ErrClusterNotFound),
			want: ExitClusterError,
		},
		{
			name: "kube error",
			err:  kube.NewError("wait", "deployment/api", "not ready after 90s", kube.ErrWaitTimeout),
			want: ExitClusterError,
		},
		{
			name: "helm error",
			err:  helm.NewError("upgrade", "kindstack-api", "chart render failed", errors.New("exit status 1")),
			want: ExitDeployError,
		},
		{
			name: "wrapped helm error",
			err:  fmt.Errorf("deploy failed: %w", helm.NewError("upgrade", "kindstack-api", "", errors.New("exit status 1"))),
			want: ExitDeployError,
		},
		{
			name: "plain error",
			err:  errors.New("failed to unmarshal config"),
			want: ExitConfigError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestExitErrorUnwrap(t *testing.T) {
	inner := errors.New("preflight failed")
	err := &ExitError{Code: ExitConfigError, Err: inner}

	assert.Equal(t, "preflight failed", err.Error())
	assert.ErrorIs(t, err, inner)
}
