package users

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/incdrops/usage"
	"codeberg.org/incdrops/server/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokens, _ = auth.NewTokens("users-secret", 0)

type stubReader struct {
	snap *usage.Snapshot
	err  error
}

func (s stubReader) Snapshot(context.Context, string) (*usage.Snapshot, error) {
	return s.snap, s.err
}

func doGet(t *testing.T, reader UsageReader) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), testTokens, reader)

	token, err := testTokens.Issue("acc-1", "a@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/usage", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetUsage(t *testing.T) {
	w := doGet(t, stubReader{snap: &usage.Snapshot{
		Tier:      "business",
		Period:    "2026-10",
		Count:     812,
		Limit:     -1,
		Remaining: -1,
		ResetAt:   time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC),
	}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"tier": "business",
		"period": "2026-10",
		"count": 812,
		"limit": -1,
		"remaining": -1,
		"reset_at": "2026-11-01T00:00:00Z",
		"degraded": false
	}`, w.Body.String())
}

func TestGetUsage_Errors(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, doGet(t, stubReader{err: fmt.Errorf("wrapped: %w", accounts.ErrNotFound)}).Code)
	assert.Equal(t, http.StatusInternalServerError, doGet(t, stubReader{err: fmt.Errorf("db down")}).Code)
}
