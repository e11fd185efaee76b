package values

import "fmt"

// =============================================================================
// Naming Conventions
// =============================================================================

// ReleaseName builds the Helm release name for a stack component. All harness
// releases share a prefix so `helm list` groups them and teardown can find
// them without local state.
func ReleaseName(prefix, component string) string {
	return fmt.Sprintf("%s-%s", prefix, component)
}

// KubeContext builds the kubeconfig context name for a kind cluster. kind
// always registers clusters as "kind-<name>".
func KubeContext(cluster string) string {
	return fmt.Sprintf("kind-%s", cluster)
}

// ValuesFileName builds the file name for a release's rendered values.
func ValuesFileName(release string) string {
	return fmt.Sprintf("%s-values.yaml", release)
}
