package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukecassidy/kind-stack-dev/internal/core/values"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/api"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/checks"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/kube"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the status API",
	Long: `Serve an HTTP API over the cluster state and run history: stack status,
recent runs, on-demand connectivity checks, Prometheus metrics, and the
OpenAPI document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		addr := cfg.Serve.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		kubeClient, err := kube.New(cfg.Cluster.Kubeconfig, values.KubeContext(cfg.Cluster.Name), logger)
		if err != nil {
			return err
		}

		checker := checks.New(checks.Config{
			Timeout:  cfg.Checks.Timeout,
			Attempts: cfg.Checks.Attempts,
			Interval: cfg.Checks.Interval,
		}, logger)

		handler := api.NewHandler(s, kubeClient, checker, cfg.Catalog(), api.Config{
			Namespace: cfg.Stack.Namespace,
			CheckHost: cfg.Checks.Host,
			Version:   Version,
		}, logger)

		api.RegisterRunsCollector(s, logger)

		server := api.NewServer(addr, handler.Routes(), logger)
		server.Start()

		fmt.Printf("Status API listening on http://%s\n", addr)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}
