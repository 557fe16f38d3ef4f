package usage

import (
	"context"
	"sync"
	"testing"
	"time"

	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/internal/quota"
	ws "codeberg.org/incdrops/server/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts map[string]string

func (f fakeAccounts) FindByID(_ context.Context, accountID string) (*accounts.Account, error) {
	tier, ok := f[accountID]
	if !ok {
		return nil, accounts.ErrNotFound
	}

	return &accounts.Account{ID: accountID, Tier: tier}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.UsageUpdatedPayload
}

func (p *recordingPublisher) PublishUsage(_ string, u ws.UsageUpdatedPayload) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, u)
}

func newTestService(t *testing.T, tiers fakeAccounts) (*Service, *recordingPublisher) {
	t.Helper()

	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	tracker := quota.NewTracker(quota.NewMemoryStore(), quota.WithClock(func() time.Time { return now }))
	pub := &recordingPublisher{}

	return NewService(tracker, tiers, pub), pub
}

func TestService_ConsumeUntilCeiling(t *testing.T) {
	svc, pub := newTestService(t, fakeAccounts{"acc": quota.TierFree})
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		d, err := svc.Consume(ctx, "acc")
		require.NoError(t, err)
		require.True(t, d.Allowed)
		assert.Equal(t, int64(i), d.Count)
	}

	d, err := svc.Consume(ctx, "acc")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	// denied attempts are not pushed
	require.Len(t, pub.events, 5)
	assert.Equal(t, ws.UsageUpdatedPayload{Period: "2026-10", Count: 5, Limit: 5, Remaining: 0}, pub.events[4])
}

func TestService_Snapshot(t *testing.T) {
	svc, _ := newTestService(t, fakeAccounts{"acc": quota.TierBasic, "biz": quota.TierBusiness})
	ctx := context.Background()

	_, err := svc.Consume(ctx, "acc")
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx, "acc")
	require.NoError(t, err)
	assert.Equal(t, Snapshot{
		Tier:      quota.TierBasic,
		Period:    "2026-10",
		Count:     1,
		Limit:     50,
		Remaining: 49,
		ResetAt:   time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC),
	}, *snap)

	unbounded, err := svc.Snapshot(ctx, "biz")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), unbounded.Limit)
	assert.Equal(t, int64(-1), unbounded.Remaining)
}

func TestService_RefundAndReset(t *testing.T) {
	svc, pub := newTestService(t, fakeAccounts{"acc": quota.TierFree})
	ctx := context.Background()

	var last quota.Decision
	for range 3 {
		d, err := svc.Consume(ctx, "acc")
		require.NoError(t, err)
		last = d
	}

	snap, err := svc.Refund(ctx, "acc", last)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snap.Count)
	assert.Equal(t, int64(3), snap.Remaining)

	snap, err = svc.Reset(ctx, "acc")
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Count)

	require.Len(t, pub.events, 5)
	assert.Equal(t, int64(0), pub.events[4].Count)
}

func TestService_RefundUnrecordedChargeIsNotPublished(t *testing.T) {
	svc, pub := newTestService(t, fakeAccounts{"acc": quota.TierFree})

	snap, err := svc.Refund(context.Background(), "acc", quota.Decision{
		Allowed:   true,
		Tier:      quota.TierFree,
		Count:     1,
		PeriodKey: "2026-10",
		Degraded:  true,
	})
	require.NoError(t, err)

	assert.Zero(t, snap.Count)
	assert.True(t, snap.Degraded)
	assert.Empty(t, pub.events)
}

func TestService_RefundEndedPeriod(t *testing.T) {
	svc, _ := newTestService(t, fakeAccounts{"acc": quota.TierFree})

	_, err := svc.Refund(context.Background(), "acc", quota.Decision{
		Allowed:   true,
		Recorded:  true,
		Tier:      quota.TierFree,
		PeriodKey: "2026-09",
	})
	assert.ErrorIs(t, err, quota.ErrStalePeriod)
}

func TestService_UnknownAccount(t *testing.T) {
	svc, _ := newTestService(t, fakeAccounts{})

	_, err := svc.Consume(context.Background(), "missing")
	assert.ErrorIs(t, err, accounts.ErrNotFound)

	_, err = svc.Snapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}

func TestFromDecision(t *testing.T) {
	d := quota.Decision{
		Allowed:   true,
		Tier:      quota.TierPro,
		Count:     10,
		Ceiling:   200,
		Remaining: 190,
		PeriodKey: "2026-10",
		ResetAt:   time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC),
		Degraded:  true,
	}

	assert.Equal(t, Snapshot{
		Tier:      quota.TierPro,
		Period:    "2026-10",
		Count:     10,
		Limit:     200,
		Remaining: 190,
		ResetAt:   d.ResetAt,
		Degraded:  true,
	}, FromDecision(d))
}
