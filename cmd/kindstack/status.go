package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lukecassidy/kind-stack-dev/internal/core/domain"
	"github.com/lukecassidy/kind-stack-dev/internal/core/values"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/kind"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/kube"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cluster and stack status",
	Long: `Show the kind cluster, every stack workload with its deployed mode and
readiness, the database, and the most recent deploy run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		detector, err := kind.NewDetector()
		if err != nil {
			return err
		}
		defer detector.Close()

		info, err := detector.Detect(ctx, cfg.Cluster.Name)
		if err != nil {
			if errors.Is(err, kind.ErrClusterNotFound) {
				fmt.Printf("Cluster %q is not running.\n", cfg.Cluster.Name)
				fmt.Println("Create it with: kindstack cluster create")
				return nil
			}
			return err
		}

		fmt.Printf("Cluster:   %s (%d node(s))\n", info.Name, len(info.Nodes))

		kubeClient, err := kube.New(cfg.Cluster.Kubeconfig, values.KubeContext(cfg.Cluster.Name), logger)
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		version, err := kubeClient.Ping(ctx)
		if err != nil {
			fmt.Printf("Server:    unreachable (%v)\n", err)
			if run, lrErr := s.LatestRun(ctx); lrErr == nil {
				fmt.Printf("\nLast run:  %s  %s\n", run.ID, run.Status)
			}
			return nil
		}
		fmt.Printf("Server:    %s\n", version)

		cat := cfg.Catalog()

		var (
			services []domain.ServiceState
			database domain.ServiceState
			lastRun  *domain.Run
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var sErr error
			services, sErr = kubeClient.ServiceStates(gctx, cfg.Stack.Namespace, cat)
			return sErr
		})
		g.Go(func() error {
			var dErr error
			database, dErr = kubeClient.DatabaseState(gctx, cfg.Stack.Namespace, cat)
			return dErr
		})
		g.Go(func() error {
			run, lrErr := s.LatestRun(gctx)
			if lrErr != nil {
				if errors.Is(lrErr, store.ErrNotFound) {
					return nil
				}
				return lrErr
			}
			lastRun = run
			return nil
		})
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Printf("\n%-10s %-6s %-7s %s\n", "SERVICE", "MODE", "READY", "STATUS")
		for _, st := range services {
			fmt.Printf("%-10s %-6s %-7s %s\n", st.Name, modeLabel(st), readyLabel(st), stateLabel(st))
		}
		fmt.Printf("%-10s %-6s %-7s %s\n", "database", "-", readyLabel(database), stateLabel(database))

		if lastRun != nil {
			fmt.Printf("\nLast run:  %s  %s  started %s\n",
				lastRun.ID, lastRun.Status, lastRun.StartedAt.Format(time.RFC3339))
		} else {
			fmt.Println("\nLast run:  none recorded")
		}

		return nil
	},
}

func modeLabel(st domain.ServiceState) string {
	if !st.Found || st.Mode == "" {
		return "-"
	}
	return string(st.Mode)
}

func readyLabel(st domain.ServiceState) string {
	if !st.Found {
		return "-"
	}
	return fmt.Sprintf("%d/%d", st.ReadyReplicas, st.DesiredReplicas)
}

func stateLabel(st domain.ServiceState) string {
	switch {
	case !st.Found:
		return "not deployed"
	case st.Ready:
		return "ready"
	default:
		return "not ready"
	}
}
