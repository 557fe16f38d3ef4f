package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/incdrops/usage"
	"codeberg.org/incdrops/server/internal/quota"
	"codeberg.org/incdrops/server/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// concurrent lookups for usage get
const lookupConcurrency = 4

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Inspect and reset monthly generation usage",
}

var usageGetCmd = &cobra.Command{
	Use:   "get ACCOUNT_ID...",
	Short: "Show the current period's usage for one or more accounts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUsage(cmd.Context(), func(ctx context.Context, svc *usage.Service) error {
			snapshots := make([]*usage.Snapshot, len(args))

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(lookupConcurrency)

			for i, accountID := range args {
				g.Go(func() error {
					snap, err := svc.Snapshot(gctx, accountID)
					if err != nil {
						return fmt.Errorf("account %s: %w", accountID, err)
					}

					snapshots[i] = snap
					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}

			return writeSnapshots(cmd.OutOrStdout(), args, snapshots)
		})
	},
}

var usageResetCmd = &cobra.Command{
	Use:   "reset ACCOUNT_ID",
	Short: "Zero the account's counter for the current period",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUsage(cmd.Context(), func(ctx context.Context, svc *usage.Service) error {
			snap, err := svc.Reset(ctx, args[0])
			if err != nil {
				return err
			}

			return writeSnapshots(cmd.OutOrStdout(), args, []*usage.Snapshot{snap})
		})
	},
}

func init() {
	usageCmd.AddCommand(usageGetCmd, usageResetCmd)
}

// opens the configured quota store and runs fn against a usage service over it
func withUsage(ctx context.Context, fn func(ctx context.Context, svc *usage.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}

	defer backend.Close() //nolint:errcheck

	tracker := quota.NewTracker(backend.QuotaStore(), quota.WithLimits(cfg.TierLimits))
	svc := usage.NewService(tracker, accounts.NewRepository(backend.Pool()), nil)

	return fn(ctx, svc)
}

func writeSnapshots(w io.Writer, accountIDs []string, snapshots []*usage.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "ACCOUNT\tTIER\tPERIOD\tUSED\tRESETS")

	for i, snap := range snapshots {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			accountIDs[i],
			snap.Tier,
			snap.Period,
			formatUsage(snap.Count, snap.Limit),
			snap.ResetAt.Format(time.DateOnly),
		)
	}

	return tw.Flush()
}

func formatUsage(count, limit int64) string {
	return fmt.Sprintf("%d / %s", count, quota.Ceiling(limit))
}
