package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/incdrops/server/internal/config"
	"codeberg.org/incdrops/server/internal/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "incdrops-admin",
	Short: "Operator tooling for the Incdrops server",
	Long: `Runs schema migrations and inspects or adjusts account usage and tiers.

Connection settings come from the same environment (or .env file) as the server:
DATABASE_URL, REDIS_URL, QUOTA_STORE, SQLITE_PATH and TIER_LIMITS_FILE.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// keep log lines off stdout, which carries command output
		logger.SetOutput(cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, usageCmd, tierCmd, tokenCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}
