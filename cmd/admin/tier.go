package main

import (
	"errors"
	"fmt"
	"strings"

	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/internal/quota"
	"codeberg.org/incdrops/server/internal/storage"
	"github.com/spf13/cobra"
)

var tierCmd = &cobra.Command{
	Use:   "tier",
	Short: "Manage account subscription tiers",
}

var tierSetCmd = &cobra.Command{
	Use:   "set ACCOUNT_ID TIER",
	Short: "Change an account's tier",
	Long: `Changes the tier without touching billing. The current period's usage is kept,
only the ceiling it is measured against changes.`,
	Example: `  incdrops-admin tier set 3f1c... pro`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		accountID := args[0]
		tier := strings.ToLower(strings.TrimSpace(args[1]))

		if !quota.ValidTier(tier) {
			return fmt.Errorf("invalid tier %q, expected one of free, basic, pro, business", args[1])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		pool, err := storage.NewPool(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}

		defer pool.Close()

		account, err := accounts.NewRepository(pool).UpdateTier(cmd.Context(), accountID, tier)
		if errors.Is(err, accounts.ErrNotFound) {
			return fmt.Errorf("account %s not found", accountID)
		}

		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Account %s (%s) is now on the %s tier\n", account.ID, account.Email, account.Tier)
		return nil
	},
}

func init() {
	tierCmd.AddCommand(tierSetCmd)
}
