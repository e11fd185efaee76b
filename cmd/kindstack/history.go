package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukecassidy/kind-stack-dev/internal/shell/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent deploy runs",
	Long:  `List recorded deploy runs, newest first, with their resolved selection and outcome.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.DefaultListOptions()
		if historyLimit > 0 {
			opts.Limit = historyLimit
		}

		runs, err := s.ListRuns(ctx, opts)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded yet. Deploy with: kindstack up")
			return nil
		}

		fmt.Printf("%-36s %-9s %-22s %-5s %-9s %-20s %s\n",
			"RUN", "STATUS", "REAL", "SEED", "DATABASE", "STARTED", "DURATION")
		for _, run := range runs {
			real := strings.Join(run.RealServices, ",")
			if real == "" {
				real = "-"
			}
			fmt.Printf("%-36s %-9s %-22s %-5s %-9s %-20s %s\n",
				run.ID,
				run.Status,
				real,
				yesNo(run.Seed),
				yesNo(run.Database),
				run.StartedAt.Format("2006-01-02 15:04:05"),
				run.Duration().Round(time.Second))
		}

		return nil
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "maximum runs to list (default 20)")
}
