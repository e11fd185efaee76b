package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lukecassidy/kind-stack-dev/internal/core/values"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/kubectl"
)

var forwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "Port-forward every stack service to localhost",
	Long: `Forward each service's port from the cluster to localhost and keep the
forwards open until interrupted. One forward failing stops them all.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cat := cfg.Catalog()

		kubectlCLI := kubectl.NewCLI(values.KubeContext(cfg.Cluster.Name), logger)

		for _, svc := range cat.Services {
			fmt.Printf("Forwarding %-10s http://%s:%d\n", svc.Name, cfg.Checks.Host, svc.Port)
		}
		fmt.Println("\nPress Ctrl-C to stop.")

		g, gctx := errgroup.WithContext(ctx)
		for _, svc := range cat.Services {
			target := "deployment/" + svc.WorkloadName()
			port := svc.Port
			g.Go(func() error {
				return kubectlCLI.PortForward(gctx, cfg.Stack.Namespace, target, port, port)
			})
		}

		return g.Wait()
	},
}
