package kind

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// kind labels its node containers; these are the upstream label keys.
const (
	clusterLabel = "io.x-k8s.kind.cluster"
	roleLabel    = "io.x-k8s.kind.role"

	controlPlaneRole = "control-plane"
	apiServerPort    = nat.Port("6443/tcp")
)

// =============================================================================
// Cluster Info
// =============================================================================

// Node is one kind node container.
type Node struct {
	Name    string `json:"name"`
	Role    string `json:"role"`
	Image   string `json:"image"`
	State   string `json:"state"`
	Running bool   `json:"running"`
}

// ClusterInfo describes a detected kind cluster.
type ClusterInfo struct {
	Name              string `json:"name"`
	Nodes             []Node `json:"nodes"`
	APIServerHostPort int    `json:"api_server_host_port,omitempty"`
}

// Running reports whether every node container is up.
func (c ClusterInfo) Running() bool {
	if len(c.Nodes) == 0 {
		return false
	}
	for _, n := range c.Nodes {
		if !n.Running {
			return false
		}
	}
	return true
}

// =============================================================================
// Docker Detector
// =============================================================================

// Detector finds kind clusters by asking the Docker daemon for node
// containers. It never talks to the cluster itself.
type Detector struct {
	cli *client.Client
}

// NewDetector creates a detector against the environment's Docker daemon.
func NewDetector() (*Detector, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, NewError("NewDetector", "", "failed to create docker client", ErrDockerUnavailable)
	}
	return &Detector{cli: cli}, nil
}

// Close releases the docker client.
func (d *Detector) Close() error {
	return d.cli.Close()
}

// Detect looks up the node containers of a named cluster. The control-plane
// node's published API server port is resolved so status output can show
// where the kubeconfig points.
func (d *Detector) Detect(ctx context.Context, clusterName string) (*ClusterInfo, error) {
	f := filters.NewArgs()
	f.Add("label", fmt.Sprintf("%s=%s", clusterLabel, clusterName))

	containers, err := d.cli.ContainerList(ctx, container.ListOptions{All: true, Filters: f})
	if err != nil {
		return nil, NewError("Detect", clusterName, err.Error(), ErrDockerUnavailable)
	}
	if len(containers) == 0 {
		return nil, NewError("Detect", clusterName, "no node containers", ErrClusterNotFound)
	}

	info := &ClusterInfo{Name: clusterName}
	controlPlaneID := ""

	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}

		role := c.Labels[roleLabel]
		if role == controlPlaneRole && controlPlaneID == "" {
			controlPlaneID = c.ID
		}

		info.Nodes = append(info.Nodes, Node{
			Name:    name,
			Role:    role,
			Image:   c.Image,
			State:   c.State,
			Running: c.State == "running",
		})
	}

	if controlPlaneID != "" {
		if port, err := d.apiServerHostPort(ctx, controlPlaneID); err == nil {
			info.APIServerHostPort = port
		}
	}

	return info, nil
}

// apiServerHostPort reads the host port the control-plane container publishes
// the API server on.
func (d *Detector) apiServerHostPort(ctx context.Context, containerID string) (int, error) {
	resp, err := d.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return 0, NewError("Detect", "", err.Error(), ErrDockerUnavailable)
	}
	if resp.NetworkSettings == nil {
		return 0, NewError("Detect", "", "no network settings", ErrClusterNotFound)
	}

	return hostPortFor(resp.NetworkSettings.Ports, apiServerPort)
}

// hostPortFor extracts the first bound host port for a container port.
func hostPortFor(ports nat.PortMap, target nat.Port) (int, error) {
	bindings, ok := ports[target]
	if !ok || len(bindings) == 0 {
		return 0, fmt.Errorf("port %s not published", target)
	}

	var hostPort int
	if _, err := fmt.Sscanf(bindings[0].HostPort, "%d", &hostPort); err != nil {
		return 0, fmt.Errorf("unparseable host port %q", bindings[0].HostPort)
	}
	return hostPort, nil
}
