package kind

import (
	"errors"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Argument Builder Tests
// =============================================================================

func TestCreateArgs(t *testing.T) {
	tests := []struct {
		name       string
		cluster    string
		configPath string
		nodeImage  string
		want       []string
	}{
		{
			name:    "name only",
			cluster: "dev",
			want:    []string{"create", "cluster", "--name", "dev"},
		},
		{
			name:       "with config",
			cluster:    "dev",
			configPath: "kind.yaml",
			want:       []string{"create", "cluster", "--name", "dev", "--config", "kind.yaml"},
		},
		{
			name:      "with node image",
			cluster:   "dev",
			nodeImage: "kindest/node:v1.29.2",
			want:      []string{"create", "cluster", "--name", "dev", "--image", "kindest/node:v1.29.2"},
		},
		{
			name:       "with config and image",
			cluster:    "ci",
			configPath: "kind.yaml",
			nodeImage:  "kindest/node:v1.29.2",
			want: []string{
				"create", "cluster", "--name", "ci",
				"--config", "kind.yaml",
				"--image", "kindest/node:v1.29.2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, createArgs(tt.cluster, tt.configPath, tt.nodeImage))
		})
	}
}

// =============================================================================
// Cluster Info Tests
// =============================================================================

func TestClusterInfoRunning(t *testing.T) {
	t.Run("all nodes running", func(t *testing.T) {
		info := ClusterInfo{
			Name: "dev",
			Nodes: []Node{
				{Name: "dev-control-plane", Role: controlPlaneRole, Running: true},
				{Name: "dev-worker", Role: "worker", Running: true},
			},
		}
		assert.True(t, info.Running())
	})

	t.Run("one node stopped", func(t *testing.T) {
		info := ClusterInfo{
			Name: "dev",
			Nodes: []Node{
				{Name: "dev-control-plane", Role: controlPlaneRole, Running: true},
				{Name: "dev-worker", Role: "worker", Running: false},
			},
		}
		assert.False(t, info.Running())
	})

	t.Run("no nodes", func(t *testing.T) {
		assert.False(t, ClusterInfo{Name: "dev"}.Running())
	})
}

func TestHostPortFor(t *testing.T) {
	t.Run("published port", func(t *testing.T) {
		ports := nat.PortMap{
			apiServerPort: []nat.PortBinding{
				{HostIP: "127.0.0.1", HostPort: "33445"},
			},
		}

		port, err := hostPortFor(ports, apiServerPort)
		require.NoError(t, err)
		assert.Equal(t, 33445, port)
	})

	t.Run("unpublished port", func(t *testing.T) {
		_, err := hostPortFor(nat.PortMap{}, apiServerPort)
		assert.Error(t, err)
	})

	t.Run("empty bindings", func(t *testing.T) {
		ports := nat.PortMap{apiServerPort: nil}
		_, err := hostPortFor(ports, apiServerPort)
		assert.Error(t, err)
	})

	t.Run("garbage host port", func(t *testing.T) {
		ports := nat.PortMap{
			apiServerPort: []nat.PortBinding{{HostPort: "nope"}},
		}
		_, err := hostPortFor(ports, apiServerPort)
		assert.Error(t, err)
	})
}

// =============================================================================
// Error Tests
// =============================================================================

func TestErrorFormat(t *testing.T) {
	err := NewError("CreateCluster", "dev", "docker not running", ErrDockerUnavailable)
	assert.Equal(t, "CreateCluster dev: docker not running", err.Error())
	assert.True(t, errors.Is(err, ErrDockerUnavailable))
}

func TestErrorWithoutCluster(t *testing.T) {
	err := NewError("ListClusters", "", "exec failed", ErrKindNotFound)
	assert.Equal(t, "ListClusters: exec failed", err.Error())
	assert.True(t, errors.Is(err, ErrKindNotFound))
}
