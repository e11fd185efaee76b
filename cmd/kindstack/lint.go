package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lukecassidy/kind-stack-dev/internal/shell/helm"
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Lint every stack chart",
	Long:  `Run helm lint over the database chart and every service chart, reporting all failures before exiting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cat := cfg.Catalog()

		// Lint needs no cluster, so no kube context is set.
		helmCLI := helm.NewCLI("", logger)

		charts := []string{cat.Database.Chart}
		for _, svc := range cat.Services {
			charts = append(charts, svc.Chart)
		}

		var failures []string
		for _, chart := range charts {
			out, err := helmCLI.Lint(ctx, chart)
			if err != nil {
				fmt.Printf("FAIL  %s\n", chart)
				if trimmed := strings.TrimSpace(out); trimmed != "" {
					fmt.Println(indent(trimmed))
				}
				failures = append(failures, chart)
				continue
			}
			fmt.Printf("ok    %s\n", chart)
		}

		if len(failures) > 0 {
			return &ExitError{
				Code: ExitDeployError,
				Err:  fmt.Errorf("lint failed for %s", strings.Join(failures, ", ")),
			}
		}

		return nil
	},
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "      " + line
	}
	return strings.Join(lines, "\n")
}
