package kube

import (
	"context"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/lukecassidy/kind-stack-dev/internal/core/catalog"
	"github.com/lukecassidy/kind-stack-dev/internal/core/domain"
)

// =============================================================================
// Workload State
// =============================================================================

// deploymentState reads one workload's deployment into a ServiceState. A
// missing deployment is reported with Found=false rather than an error, so
// status output can show what is and is not installed.
func (c *Client) deploymentState(ctx context.Context, namespace, serviceName, workload string) (domain.ServiceState, error) {
	state := domain.ServiceState{Name: serviceName}

	dep, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, workload, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return state, nil
		}
		return state, NewError("DeploymentState", workload, err.Error(), ErrClusterUnreachable)
	}

	state.Found = true
	state.Mode = domain.Mode(dep.Spec.Template.Annotations[domain.ModeAnnotation])
	state.Ready = deploymentReady(dep)
	state.ReadyReplicas = dep.Status.ReadyReplicas
	if dep.Spec.Replicas != nil {
		state.DesiredReplicas = *dep.Spec.Replicas
	}
	created := dep.CreationTimestamp.Time
	state.CreatedAt = &created

	return state, nil
}

// ServiceStates reads the state of every cataloged service's workload.
func (c *Client) ServiceStates(ctx context.Context, namespace string, cat catalog.Catalog) ([]domain.ServiceState, error) {
	states := make([]domain.ServiceState, 0, len(cat.Services))
	for _, svc := range cat.Services {
		state, err := c.deploymentState(ctx, namespace, svc.Name, svc.WorkloadName())
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

// DatabaseState reads the state of the database workload.
func (c *Client) DatabaseState(ctx context.Context, namespace string, cat catalog.Catalog) (domain.ServiceState, error) {
	return c.deploymentState(ctx, namespace, "database", cat.Database.Workload)
}
