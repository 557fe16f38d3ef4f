package tui

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/incdrops/server/incdrops/usage"
	"codeberg.org/incdrops/server/internal/auth"
	"codeberg.org/incdrops/server/internal/quota"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
)

func (s *remoteStore) Get(ctx context.Context, _ string) (quota.UsageRecord, bool, error) {
	snap, err := s.api.Usage(ctx)
	if err != nil {
		return quota.UsageRecord{}, false, err
	}

	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()

	return quota.UsageRecord{PeriodKey: quota.PeriodKey(snap.Period), Count: snap.Count}, true, nil
}

// the server counts generations itself
func (s *remoteStore) Set(context.Context, string, quota.UsageRecord) error {
	return quota.ErrReadOnlyStore
}

func (s *remoteStore) lastSnapshot() (usage.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return usage.Snapshot{}, false
	}

	return *s.last, true
}

// creates the shadow for accountID. cache outlives the process (bolt), so an
// offline start still shows the last count the server confirmed
func NewUsageShadow(api *APIClient, cache quota.Cache, accountID string) *UsageShadow {
	remote := &remoteStore{api: api}

	return &UsageShadow{
		accountID: accountID,
		tracker:   quota.NewTracker(remote, quota.WithCache(cache), quota.WithStoreTimeout(requestTimeout)),
		remote:    remote,
	}
}

// reconciles with the server, or falls back to the cached record when it is
// unreachable
func (s *UsageShadow) Load(ctx context.Context) (UsageView, error) {
	u, err := s.tracker.LoadUsage(ctx, s.accountID)
	if err != nil {
		return UsageView{}, err
	}

	view := UsageView{
		Loaded:   true,
		Period:   u.PeriodKey.String(),
		Count:    u.Count,
		ResetAt:  u.PeriodKey.ResetAt(),
		Degraded: u.Degraded,
		Limit:    int64(quota.Unbounded),
	}

	if snap, ok := s.remote.lastSnapshot(); ok {
		view.Tier = snap.Tier
		view.Limit = snap.Limit
	} else {
		// never reached the server this run, assume the free ceiling
		view.Tier = quota.TierFree
		view.Limit = int64(s.tracker.Limits().Ceiling(quota.TierFree))
	}

	return view, nil
}

// drops the cached record after the server counted a generation (ours or
// another session's) and reloads it
func (s *UsageShadow) Reconcile(ctx context.Context) (UsageView, error) {
	s.tracker.RecordExternalIncrement(ctx, s.accountID)
	return s.Load(ctx)
}

// returns a tea.Cmd that loads usage, reconciling first when reconcile is set
func (s *UsageShadow) LoadCmd(reconcile bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		load := s.Load
		if reconcile {
			load = s.Reconcile
		}

		view, err := load(ctx)
		if err != nil {
			return ErrorMsg{err: err}
		}

		return UsageLoadedMsg{usage: view}
	}
}

// generation is disabled at the ceiling
func (v UsageView) AtLimit() bool {
	return v.Limit >= 0 && v.Count >= v.Limit
}

func (v UsageView) String() string {
	if !v.Loaded {
		return "Usage this month: loading..."
	}

	line := fmt.Sprintf("Usage this month: %d / %s", v.Count, quota.Ceiling(v.Limit))
	if v.Tier != "" {
		line += fmt.Sprintf(" (%s)", strings.ToUpper(v.Tier[:1])+v.Tier[1:])
	}

	if v.Degraded {
		line += " · offline"
	}

	return line
}

// the account id carried in the token. the signature is not checked here,
// the server does that on every request
func AccountIDFromToken(token string) (string, error) {
	claims := &auth.Claims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if claims.UserID == "" {
		return "", fmt.Errorf("token has no user_id claim")
	}

	return claims.UserID, nil
}
