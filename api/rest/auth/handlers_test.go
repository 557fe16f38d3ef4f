package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokens, _ = auth.NewTokens("auth-handler-secret", 0)

type fakeAccountStore struct {
	accounts map[string]*accounts.Account
}

func (f *fakeAccountStore) FindOrCreateByProvider(_ context.Context, provider, providerID, email, name, avatarURL string) (*accounts.Account, error) {
	a := &accounts.Account{ID: "acc-" + providerID, Email: email, Provider: provider, Name: name, AvatarURL: avatarURL, Tier: "free"}
	f.accounts[a.ID] = a
	return a, nil
}

func (f *fakeAccountStore) FindByID(_ context.Context, accountID string) (*accounts.Account, error) {
	a, ok := f.accounts[accountID]
	if !ok {
		return nil, accounts.ErrNotFound
	}

	return a, nil
}

func (f *fakeAccountStore) UpdateProfile(_ context.Context, accountID, name, avatarURL string) (*accounts.Account, error) {
	a, ok := f.accounts[accountID]
	if !ok {
		return nil, accounts.ErrNotFound
	}

	a.Name = name
	a.AvatarURL = avatarURL
	return a, nil
}

func setup(t *testing.T) (*gin.Engine, *fakeAccountStore) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	store := &fakeAccountStore{accounts: map[string]*accounts.Account{
		"acc-1": {ID: "acc-1", Email: "owner@example.com", Name: "Owner", Tier: "pro"},
	}}

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), testTokens, store)

	return r, store
}

func authed(t *testing.T, method, path, body, accountID string) *http.Request {
	t.Helper()

	token, err := testTokens.Issue(accountID, "owner@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func TestGetCurrentAccount(t *testing.T) {
	r, _ := setup(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(t, http.MethodGet, "/api/v1/auth/me", "", "acc-1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tier":"pro"`)
	assert.Contains(t, w.Body.String(), `"email":"owner@example.com"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(t, http.MethodGet, "/api/v1/auth/me", "", "ghost"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	r, store := setup(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(t, http.MethodPut, "/api/v1/auth/me", `{"name":"New Name","avatar_url":"https://cdn.example.com/a.png"}`, "acc-1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New Name", store.accounts["acc-1"].Name)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, authed(t, http.MethodPut, "/api/v1/auth/me", `{"avatar_url":"not a url"}`, "acc-1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBeginAuth_InvalidProvider(t *testing.T) {
	r, _ := setup(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/myspace", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid provider")
}
