package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/incdrops/ideas"
	"codeberg.org/incdrops/server/incdrops/usage"
	"codeberg.org/incdrops/server/internal/auth"
	"codeberg.org/incdrops/server/internal/generator"
	"codeberg.org/incdrops/server/internal/quota"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokens, _ = auth.NewTokens("generate-secret", 0)

type fakeAccounts map[string]string

func (f fakeAccounts) FindByID(_ context.Context, accountID string) (*accounts.Account, error) {
	tier, ok := f[accountID]
	if !ok {
		return nil, accounts.ErrNotFound
	}

	return &accounts.Account{ID: accountID, Tier: tier}, nil
}

type stubGenerator struct {
	err   error
	calls int
}

func (s *stubGenerator) Generate(_ context.Context, brief generator.Brief) (*generator.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	now := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	return &generator.Result{
		Ideas: []generator.Idea{{ID: "idea-1", Title: "Behind the scenes", Platforms: []string{"Instagram"}, Type: "Reel", Timestamp: now, ContentType: brief.ContentType}},
		Model: "stub-model",
	}, nil
}

type recordingHistory struct {
	mu      sync.Mutex
	entries []generator.Brief
}

func (h *recordingHistory) AddHistory(_ context.Context, _ string, brief generator.Brief, _ []generator.Idea, _ bool) (*ideas.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, brief)
	return &ideas.HistoryEntry{}, nil
}

type fixture struct {
	router  *gin.Engine
	gen     *stubGenerator
	history *recordingHistory
	tracker *quota.Tracker
}

// a memory store whose next increments fail
type outageStore struct {
	*quota.MemoryStore
	mu    sync.Mutex
	fails int
}

func (s *outageStore) Increment(ctx context.Context, accountID string, period quota.PeriodKey, delta int64) (quota.UsageRecord, error) {
	s.mu.Lock()
	if s.fails > 0 {
		s.fails--
		s.mu.Unlock()
		return quota.UsageRecord{}, fmt.Errorf("dial tcp: connection refused")
	}
	s.mu.Unlock()

	return s.MemoryStore.Increment(ctx, accountID, period, delta)
}

func newFixture(t *testing.T, tier string) *fixture {
	return newFixtureWithStore(t, tier, quota.NewMemoryStore())
}

func newFixtureWithStore(t *testing.T, tier string, store quota.Store) *fixture {
	t.Helper()

	gin.SetMode(gin.TestMode)

	now := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	tracker := quota.NewTracker(store, quota.WithClock(func() time.Time { return now }))

	f := &fixture{
		gen:     &stubGenerator{},
		history: &recordingHistory{},
		tracker: tracker,
	}

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), testTokens, Deps{
		Quota:     usage.NewService(tracker, fakeAccounts{"acc-1": tier}, nil),
		Generator: f.gen,
		History:   f.history,
	})
	f.router = r

	return f
}

func (f *fixture) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	token, err := testTokens.Issue("acc-1", "a@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

const brief = `{"industry":"Coffee","targetAudience":"Students","services":"Espresso","contentType":"social"}`

func TestGenerate_ConsumesQuota(t *testing.T) {
	f := newFixture(t, quota.TierFree)

	w := f.post(t, "/api/v1/generate", brief)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Ideas, 1)
	assert.Equal(t, "stub-model", resp.Model)
	assert.Equal(t, int64(1), resp.Usage.Count)
	assert.Equal(t, int64(5), resp.Usage.Limit)
	assert.Equal(t, int64(4), resp.Usage.Remaining)
	assert.Equal(t, "2026-10", resp.Usage.Period)

	require.Len(t, f.history.entries, 1)
	assert.Equal(t, "Coffee", f.history.entries[0].Industry)
}

func TestGenerate_QuotaExceeded(t *testing.T) {
	f := newFixture(t, quota.TierFree)

	for range 5 {
		require.Equal(t, http.StatusOK, f.post(t, "/api/v1/generate", brief).Code)
	}

	w := f.post(t, "/api/v1/generate", brief)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.JSONEq(t, `{
		"error": "quota_exceeded",
		"message": "monthly generation limit reached, upgrade your tier for more generations",
		"tier": "free",
		"count": 5,
		"limit": 5,
		"period": "2026-10",
		"reset_at": "2026-11-01T00:00:00Z",
		"upgrade_to": "basic"
	}`, w.Body.String())

	// the denied attempt never reached the provider
	assert.Equal(t, 5, f.gen.calls)
}

func TestGenerate_UpstreamFailureRefunds(t *testing.T) {
	f := newFixture(t, quota.TierFree)
	f.gen.err = fmt.Errorf("%w: 503 from provider", generator.ErrUpstream)

	w := f.post(t, "/api/v1/generate", brief)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	u, err := f.tracker.LoadUsage(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.Count)
	assert.Empty(t, f.history.entries)
}

func TestGenerate_UpstreamFailureAfterUnrecordedCharge(t *testing.T) {
	ctx := context.Background()
	store := &outageStore{MemoryStore: quota.NewMemoryStore(), fails: 1}
	require.NoError(t, store.Set(ctx, "acc-1", quota.UsageRecord{PeriodKey: "2026-10", Count: 3}))

	f := newFixtureWithStore(t, quota.TierFree, store)
	f.gen.err = fmt.Errorf("%w: 503 from provider", generator.ErrUpstream)

	w := f.post(t, "/api/v1/generate", brief)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	rec, _, err := store.Get(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, quota.UsageRecord{PeriodKey: "2026-10", Count: 3}, rec)

	u, err := f.tracker.LoadUsage(ctx, "acc-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, u.Count)
	assert.False(t, u.Degraded)
}

func TestGenerate_InvalidContentTypeDoesNotConsume(t *testing.T) {
	f := newFixture(t, quota.TierFree)

	w := f.post(t, "/api/v1/generate", `{"contentType":"podcast"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	u, err := f.tracker.LoadUsage(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.Count)
	assert.Zero(t, f.gen.calls)
}

func TestGenerate_UnboundedTier(t *testing.T) {
	f := newFixture(t, quota.TierBusiness)

	w := f.post(t, "/api/v1/generate", brief)
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(-1), resp.Usage.Limit)
	assert.Equal(t, int64(-1), resp.Usage.Remaining)
}

func TestCandidatesHandler(t *testing.T) {
	f := newFixture(t, quota.TierBasic)

	w := f.post(t, "/api/v1/generate/candidates", brief)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope generator.CandidatesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Candidates, 1)
	require.Len(t, envelope.Candidates[0].Content.Parts, 1)
	assert.Contains(t, envelope.Candidates[0].Content.Parts[0].Text, "Behind the scenes")
}
