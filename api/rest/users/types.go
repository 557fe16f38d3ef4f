package users

import (
	"context"

	"codeberg.org/incdrops/server/incdrops/usage"
)

type UsageReader interface {
	Snapshot(ctx context.Context, accountID string) (*usage.Snapshot, error)
}

// limit and remaining are -1 for unbounded tiers; degraded means the quota
// store was unreachable and the numbers come from the server's cache
type UsageResponse = usage.Snapshot
