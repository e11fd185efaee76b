package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lukecassidy/kind-stack-dev/internal/core/values"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/deploy"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/helm"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/kube"
)

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Remove the stack from the kind cluster",
	Long: `Uninstall every stack release from the cluster, services first, then
the database. Releases that were never installed are skipped. The cluster
itself is left running; use "kindstack cluster delete" to remove it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		kubeContext := values.KubeContext(cfg.Cluster.Name)

		kubeClient, err := kube.New(cfg.Cluster.Kubeconfig, kubeContext, logger)
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		orch := deploy.NewOrchestrator(helm.NewCLI(kubeContext, logger), kubeClient, s, deploy.Config{
			Cluster:       cfg.Cluster.Name,
			Namespace:     cfg.Stack.Namespace,
			ReleasePrefix: cfg.Stack.ReleasePrefix,
		}, logger)

		if err := orch.Down(ctx, cfg.Catalog()); err != nil {
			return err
		}

		fmt.Printf("Stack removed from cluster %q\n", cfg.Cluster.Name)
		return nil
	},
}
