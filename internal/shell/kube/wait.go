package kube

import (
	"context"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// pollInterval is how often readiness is re-checked while waiting.
const pollInterval = 2 * time.Second

// deploymentReady reports whether a deployment's observed state has caught
// up with its spec: the controller has seen the latest generation and the
// desired replica count is both updated and ready.
func deploymentReady(dep *appsv1.Deployment) bool {
	if dep.Status.ObservedGeneration < dep.Generation {
		return false
	}

	desired := int32(1)
	if dep.Spec.Replicas != nil {
		desired = *dep.Spec.Replicas
	}

	return dep.Status.UpdatedReplicas >= desired && dep.Status.ReadyReplicas >= desired
}

// WaitDeploymentReady polls until the named deployment is ready or timeout
// elapses. A deployment that does not exist yet counts as not ready: helm
// returns before the controller has created anything, so absence right after
// an install is expected.
func (c *Client) WaitDeploymentReady(ctx context.Context, namespace, name string, timeout time.Duration) error {
	c.logger.Info("waiting for deployment",
		"namespace", namespace,
		"deployment", name,
		"timeout", timeout.String())

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		dep, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		if err == nil && deploymentReady(dep) {
			c.logger.Info("deployment ready", "deployment", name)
			return nil
		}
		if err != nil && !apierrors.IsNotFound(err) {
			return NewError("WaitDeploymentReady", name, err.Error(), ErrClusterUnreachable)
		}

		if time.Now().After(deadline) {
			return NewError("WaitDeploymentReady", name,
				"not ready after "+timeout.String(), ErrWaitTimeout)
		}

		select {
		case <-ctx.Done():
			return NewError("WaitDeploymentReady", name, "wait cancelled", ctx.Err())
		case <-ticker.C:
		}
	}
}
