package usage

import (
	"context"
	"time"

	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/internal/quota"
	ws "codeberg.org/incdrops/server/internal/websocket"
)

// an account's usage as shown to clients. Limit and Remaining are -1 when the
// tier is unbounded
type Snapshot struct {
	Tier      string    `json:"tier"`
	Period    string    `json:"period"`
	Count     int64     `json:"count"`
	Limit     int64     `json:"limit"`
	Remaining int64     `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	Degraded  bool      `json:"degraded"`
}

type AccountFinder interface {
	FindByID(ctx context.Context, accountID string) (*accounts.Account, error)
}

// receives the account's counter after every change, implemented by the websocket hub
type Publisher interface {
	PublishUsage(accountID string, usage ws.UsageUpdatedPayload)
}

// ties the quota tracker to account tiers and the push channel
type Service struct {
	tracker   *quota.Tracker
	accounts  AccountFinder
	publisher Publisher
}
