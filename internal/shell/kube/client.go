// Package kube talks to the kind cluster's API server through client-go. It
// covers the harness's needs after helm has done the installing: namespace
// setup, deployment readiness, and workload state for status output.
package kube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrClusterUnreachable is returned when the API server cannot be reached.
	ErrClusterUnreachable = errors.New("cluster unreachable")

	// ErrWaitTimeout is returned when a deployment does not become ready in time.
	ErrWaitTimeout = errors.New("timed out waiting for deployment")
)

// Error wraps a failed cluster operation.
type Error struct {
	Op       string // e.g. "EnsureNamespace"
	Resource string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Resource, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new kube Error.
func NewError(op, resource, message string, err error) *Error {
	return &Error{
		Op:       op,
		Resource: resource,
		Message:  message,
		Err:      err,
	}
}

// =============================================================================
// Client
// =============================================================================

// Client wraps a kubernetes clientset for one cluster context.
type Client struct {
	clientset kubernetes.Interface
	logger    *slog.Logger
}

// New builds a client from kubeconfig rules. kubeconfigPath is optional;
// empty means the standard loading chain (KUBECONFIG, ~/.kube/config).
// contextName pins the kubeconfig context, which for kind clusters is
// "kind-<cluster>".
func New(kubeconfigPath, contextName string, logger *slog.Logger) (*Client, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		loadingRules.ExplicitPath = kubeconfigPath
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: contextName}

	config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
	if err != nil {
		return nil, NewError("New", contextName, "failed to load kubeconfig", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, NewError("New", contextName, "failed to create clientset", err)
	}

	return NewWithClientset(clientset, logger), nil
}

// NewWithClientset wraps an existing clientset. Tests inject fakes here.
func NewWithClientset(clientset kubernetes.Interface, logger *slog.Logger) *Client {
	return &Client{
		clientset: clientset,
		logger:    logger.With("component", "kube"),
	}
}

// Ping verifies the API server is reachable and returns its version.
func (c *Client) Ping(ctx context.Context) (string, error) {
	version, err := c.clientset.Discovery().ServerVersion()
	if err != nil {
		return "", NewError("Ping", "", err.Error(), ErrClusterUnreachable)
	}
	return version.GitVersion, nil
}

// EnsureNamespace creates the namespace if it does not exist.
func (c *Client) EnsureNamespace(ctx context.Context, name string) error {
	_, err := c.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsNotFound(err) {
		return NewError("EnsureNamespace", name, err.Error(), ErrClusterUnreachable)
	}

	c.logger.Info("creating namespace", "namespace", name)

	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}
	if _, err := c.clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{}); err != nil {
		// Lost a race with another creator; the namespace exists either way.
		if apierrors.IsAlreadyExists(err) {
			return nil
		}
		return NewError("EnsureNamespace", name, err.Error(), err)
	}

	return nil
}
