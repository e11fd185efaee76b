package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lukecassidy/kind-stack-dev/internal/core/values"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/kind"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Manage the kind cluster",
}

var clusterCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the kind cluster",
	Long: `Create the configured kind cluster if it does not already exist. An
existing running cluster is left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		detector, err := kind.NewDetector()
		if err != nil {
			return err
		}
		defer detector.Close()

		info, err := detector.Detect(ctx, cfg.Cluster.Name)
		if err == nil && info.Running() {
			fmt.Printf("Cluster %q is already running (%d node(s))\n", info.Name, len(info.Nodes))
			return nil
		}
		if err != nil && !errors.Is(err, kind.ErrClusterNotFound) {
			return err
		}

		if err := kind.NewCLI(logger).CreateCluster(ctx, cfg.Cluster.Name, cfg.Cluster.ConfigPath, cfg.Cluster.NodeImage); err != nil {
			return err
		}

		fmt.Printf("Cluster %q created, kube context %q\n", cfg.Cluster.Name, values.KubeContext(cfg.Cluster.Name))
		return nil
	},
}

var clusterDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the kind cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := kind.NewCLI(logger).DeleteCluster(cmd.Context(), cfg.Cluster.Name); err != nil {
			return err
		}

		fmt.Printf("Cluster %q deleted\n", cfg.Cluster.Name)
		return nil
	},
}

func init() {
	clusterCmd.AddCommand(clusterCreateCmd)
	clusterCmd.AddCommand(clusterDeleteCmd)
}
