package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukecassidy/kind-stack-dev/internal/core/health"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/checks"
)

var checkTimeout time.Duration

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe every service health endpoint",
	Long: `Probe the health endpoint of every stack service through its forwarded
port and report aggregate health. Run "kindstack forward" in another terminal
first so the ports are reachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		checkCfg := checks.Config{
			Timeout:  cfg.Checks.Timeout,
			Attempts: cfg.Checks.Attempts,
			Interval: cfg.Checks.Interval,
		}
		if checkTimeout > 0 {
			checkCfg.Timeout = checkTimeout
		}

		checker := checks.New(checkCfg, logger)
		results := checker.Run(ctx, checks.Targets(cfg.Catalog(), cfg.Checks.Host))

		fmt.Printf("%-10s %-36s %-9s %s\n", "SERVICE", "URL", "STATUS", "LATENCY")
		for _, r := range results {
			status := "healthy"
			if !r.Healthy {
				status = "unhealthy"
			}
			fmt.Printf("%-10s %-36s %-9s %s\n", r.Service, r.URL, status, r.Latency.Round(time.Millisecond))
			if r.Error != "" {
				fmt.Printf("%-10s   %s\n", "", r.Error)
			}
		}

		overall := health.Aggregate(results)
		fmt.Printf("\nStack health: %s\n", overall)

		if unhealthy := health.Unhealthy(results); len(unhealthy) > 0 {
			return &ExitError{
				Code: ExitCheckFailed,
				Err:  fmt.Errorf("%d of %d services unhealthy", len(unhealthy), len(results)),
			}
		}

		return nil
	},
}

func init() {
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 0, "per-request timeout (overrides config)")
}
