package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lukecassidy/kind-stack-dev/internal/core/preflight"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show kindstack and tool versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("kindstack %s (built %s)\n\n", Version, BuildTime)

		results := preflight.Evaluate(preflight.DefaultRequirements(), collectToolVersions(cmd.Context()))
		for _, r := range results {
			switch {
			case r.Missing:
				fmt.Printf("%-8s not found\n", r.Tool)
			case r.Satisfied:
				fmt.Printf("%-8s %s\n", r.Tool, r.Version)
			default:
				fmt.Printf("%-8s %s (%s)\n", r.Tool, r.Version, r.Detail)
			}
		}

		return nil
	},
}
