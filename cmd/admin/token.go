package main

import (
	"errors"
	"fmt"

	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/internal/auth"
	"codeberg.org/incdrops/server/internal/storage"
	"github.com/spf13/cobra"
)

const (
	testProvider   = "test"
	testProviderID = "test-user-123"
	testEmail      = "test@incdrops.com"
)

var testAccount bool

var tokenCmd = &cobra.Command{
	Use:   "token [ACCOUNT_ID]",
	Short: "Issue an API token for an account",
	Long: `Prints a signed JWT for the account, usable as INCDROPS_TOKEN for the terminal
client or as a bearer token against the API. Needs JWT_SECRET.

With --test a local test account is created (or reused) and its token printed.`,
	Example: `  export INCDROPS_TOKEN=$(incdrops-admin token --test)`,
	Args: func(cmd *cobra.Command, args []string) error {
		if testAccount {
			return cobra.NoArgs(cmd, args)
		}

		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			return fmt.Errorf("JWT_SECRET environment variable is required")
		}

		pool, err := storage.NewPool(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}

		defer pool.Close()

		repo := accounts.NewRepository(pool)

		var account *accounts.Account
		if testAccount {
			account, err = repo.FindOrCreateByProvider(cmd.Context(), testProvider, testProviderID, testEmail, "Test User", "")
		} else {
			account, err = repo.FindByID(cmd.Context(), args[0])
		}

		if errors.Is(err, accounts.ErrNotFound) && !testAccount {
			return fmt.Errorf("account %s not found", args[0])
		}

		if err != nil {
			return err
		}

		token, err := tokens.Issue(account.ID, account.Email)
		if err != nil {
			return fmt.Errorf("failed to generate token: %w", err)
		}

		fmt.Fprintln(cmd.ErrOrStderr(), "Token for account", account.ID, "("+account.Email+")")
		fmt.Fprintln(cmd.OutOrStdout(), token)

		return nil
	},
}

func init() {
	tokenCmd.Flags().BoolVar(&testAccount, "test", false, "issue a token for the local test account")
}
