package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, rate string) *gin.Engine {
	t.Helper()

	l, err := New(rate, nil, func(c *gin.Context) string {
		return c.GetHeader("X-Account")
	})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/generate", l.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r
}

func call(r *gin.Engine, account string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	if account != "" {
		req.Header.Set("X-Account", account)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware_LimitsPerAccount(t *testing.T) {
	r := newRouter(t, "2-M")

	assert.Equal(t, http.StatusOK, call(r, "a").Code)

	second := call(r, "a")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "2", second.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := call(r, "a")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Contains(t, third.Body.String(), "too_many_requests")

	// another account has its own budget
	assert.Equal(t, http.StatusOK, call(r, "b").Code)
}

func TestMiddleware_FallsBackToClientIP(t *testing.T) {
	r := newRouter(t, "1-M")

	assert.Equal(t, http.StatusOK, call(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, call(r, "").Code)

	// the account key does not share the ip bucket
	assert.Equal(t, http.StatusOK, call(r, "a").Code)
}

func TestNew_InvalidRate(t *testing.T) {
	_, err := New("ten per minute", nil, nil)
	assert.Error(t, err)
}
