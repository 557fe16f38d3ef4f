package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/incdrops/server/incdrops/usage"
	"codeberg.org/incdrops/server/internal/auth"
	"codeberg.org/incdrops/server/internal/quota"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serves /users/usage from count, or 503 while down is set
func usageServer(t *testing.T, count *atomic.Int64, down *atomic.Bool) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}

		period := quota.PeriodOf(time.Now())
		json.NewEncoder(w).Encode(usage.Snapshot{ //nolint:errcheck
			Tier:   "free",
			Period: period.String(),
			Count:  count.Load(),
			Limit:  5,
		})
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestUsageShadow_ReconcilesAndFallsBack(t *testing.T) {
	var count atomic.Int64
	var down atomic.Bool
	srv := usageServer(t, &count, &down)

	cache, err := quota.OpenBoltCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	ctx := context.Background()
	shadow := NewUsageShadow(NewAPIClient(srv.URL, "tok"), cache, "acc-1")

	count.Store(3)
	view, err := shadow.Load(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, view.Count)
	assert.EqualValues(t, 5, view.Limit)
	assert.Equal(t, "free", view.Tier)
	assert.False(t, view.Degraded)
	assert.False(t, view.AtLimit())

	// the server counted two more generations
	count.Store(5)
	view, err = shadow.Reconcile(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, view.Count)
	assert.True(t, view.AtLimit())

	// offline: the cached record is served, marked degraded
	down.Store(true)
	view, err = shadow.Load(ctx)
	require.NoError(t, err)
	assert.True(t, view.Degraded)
	assert.EqualValues(t, 5, view.Count)

	// a fresh process reads the shadow from disk
	offline := NewUsageShadow(NewAPIClient(srv.URL, "tok"), cache, "acc-1")
	view, err = offline.Load(ctx)
	require.NoError(t, err)
	assert.True(t, view.Degraded)
	assert.EqualValues(t, 5, view.Count)
}

func TestRemoteStore_IsReadOnly(t *testing.T) {
	store := &remoteStore{api: NewAPIClient("http://127.0.0.1:0", "tok")}
	err := store.Set(context.Background(), "acc-1", quota.UsageRecord{PeriodKey: "2026-10", Count: 1})
	assert.ErrorIs(t, err, quota.ErrReadOnlyStore)
}

func TestUsageView_String(t *testing.T) {
	tests := []struct {
		name string
		view UsageView
		want string
	}{
		{"loading", UsageView{}, "Usage this month: loading..."},
		{"bounded", UsageView{Loaded: true, Tier: "basic", Count: 12, Limit: 50}, "Usage this month: 12 / 50 (Basic)"},
		{"unbounded", UsageView{Loaded: true, Tier: "business", Count: 400, Limit: -1}, "Usage this month: 400 / ∞ (Business)"},
		{"offline", UsageView{Loaded: true, Count: 2, Limit: 5, Degraded: true}, "Usage this month: 2 / 5 · offline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestAccountIDFromToken(t *testing.T) {
	tokens, err := auth.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := tokens.Issue("acc-42", "owner@example.com")
	require.NoError(t, err)

	id, err := AccountIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-42", id)

	_, err = AccountIDFromToken("not-a-token")
	assert.Error(t, err)
}
