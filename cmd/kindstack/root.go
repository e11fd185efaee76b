package main

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lukecassidy/kind-stack-dev/internal/shell/store"
)

var (
	cfgFile string
	cfg     *Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kindstack",
	Short: "Local Kubernetes development harness",
	Long: `kindstack deploys a small service stack into a local kind cluster.

Each service runs in either real or mock mode. Services named with --real
get their real chart configuration; everything else is mocked. The database
is provisioned only when something needs it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file is optional; absence is not an error.
		_ = godotenv.Load()

		var err error
		cfg, err = LoadConfig(cfgFile)
		if err != nil {
			return err
		}

		logger = SetupLogger(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default kindstack.yaml in current directory)")

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(forwardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(versionCmd)
}

// openStore opens the run history database at the configured path.
func openStore() (store.Store, error) {
	s, err := store.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history at %s: %w", cfg.History.Path, err)
	}
	return s, nil
}
