package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lukecassidy/kind-stack-dev/internal/core/resolver"
	"github.com/lukecassidy/kind-stack-dev/internal/core/values"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/deploy"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/helm"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/kube"
)

var (
	upReal string
	upSeed bool
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Deploy the stack to the kind cluster",
	Long: `Deploy every stack service into the kind cluster.

Services listed with --real run their real configuration; all others run
mocked. The database is provisioned only when a real service needs it or
--seed asks for sample data. Running up again with different flags converges
the cluster to the new selection.`,
	Example: `  kindstack up
  kindstack up --real api
  kindstack up --real frontend,api --seed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := runPreflight(ctx); err != nil {
			return err
		}

		cat := cfg.Catalog()
		plan := resolver.Resolve(cat, resolver.Input{
			RealServices: resolver.ParseRealServices(upReal),
			Seed:         upSeed,
		})

		for _, name := range plan.Unknown {
			fmt.Fprintf(os.Stderr, "warning: %q is not a stack service, ignoring\n", name)
		}

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
			Cluster:              cfg.Cluster.Name,
			Namespace:            cfg.Stack.Namespace,
			ReleasePrefix:        cfg.Stack.ReleasePrefix,
			DatabaseReadyTimeout: cfg.Stack.DatabaseReadyTimeout,
			ServiceReadyTimeout:  cfg.Stack.ServiceReadyTimeout,
		}, logger)

		run, err := orch.Up(ctx, cat, plan)
		if err != nil {
			return err
		}

		fmt.Printf("Stack deployed to cluster %q, namespace %q\n\n", cfg.Cluster.Name, cfg.Stack.Namespace)
		for _, svc := range cat.Services {
			fmt.Printf("  %-10s %s\n", svc.Name, plan.Modes[svc.Name])
		}
		if plan.Database {
			if plan.Seed {
				fmt.Printf("  %-10s provisioned (seeded)\n", "database")
			} else {
				fmt.Printf("  %-10s provisioned\n", "database")
			}
		} else {
			fmt.Printf("  %-10s skipped\n", "database")
		}
		fmt.Printf("\nRun %s recorded\n", run.ID)

		return nil
	},
}

func init() {
	upCmd.Flags().StringVar(&upReal, "real", "", "comma-separated services to run in real mode")
	upCmd.Flags().BoolVar(&upSeed, "seed", false, "seed the database with sample data")
}
