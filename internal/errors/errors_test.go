package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestClassifyError(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	tests := []struct {
		name      string
		err       error
		category  string
		sanitized string
	}{
		{"no rows", fmt.Errorf("find account: %w", pgx.ErrNoRows), CategoryNotFound, "resource not found"},
		{"deadline", fmt.Errorf("increment: %w", context.DeadlineExceeded), CategoryTimeout, "request timed out"},
		{"canceled", context.Canceled, CategoryTimeout, "request canceled"},
		{"redis", fmt.Errorf("redis: connection pool exhausted"), CategoryDatabase, "database operation failed"},
		{"dial", fmt.Errorf("dial tcp 127.0.0.1:5432"), CategoryNetwork, "connection error occurred"},
		{"unknown", fmt.Errorf("boom"), CategoryUnknown, "an error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := classifyError(tt.err)
			assert.Equal(t, tt.category, info.category)
			assert.Equal(t, tt.sanitized, info.sanitized)
		})
	}
}

func TestSanitizeError_DevelopmentKeepsMessage(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	assert.Equal(t, "dial tcp: refused", sanitizeError(fmt.Errorf("dial tcp: refused")))
	assert.Empty(t, sanitizeError(nil))
}

func TestQuotaExceeded(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	QuotaExceeded(c, QuotaErrorResponse{Tier: "free", Count: 5, Limit: 5, Period: "2025-02"})

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, CodeQuotaExceeded, body["error"])
	assert.Equal(t, "free", body["tier"])
	assert.EqualValues(t, 5, body["limit"])
	assert.NotEmpty(t, body["message"])
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("3F2504E0-4F89-11D3-9A0C-0305E82C3301"))
	assert.False(t, IsValidUUID(""))
	assert.False(t, IsValidUUID("not-a-uuid"))
}
