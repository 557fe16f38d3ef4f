package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing"

func newTestTokens(t *testing.T) *Tokens {
	t.Helper()

	tokens, err := NewTokens(testSecret, 0)
	require.NoError(t, err)

	return tokens
}

func TestNewTokens_RequiresSecret(t *testing.T) {
	_, err := NewTokens("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssue(t *testing.T) {
	token, err := newTestTokens(t).Issue("acc-123", "test@example.com")

	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3, "JWT should have 3 parts")
}

func TestValidate_ValidToken(t *testing.T) {
	tokens := newTestTokens(t)

	token, err := tokens.Issue("acc-123", "test@example.com")
	require.NoError(t, err)

	claims, err := tokens.Validate(token)

	require.NoError(t, err)
	assert.Equal(t, "acc-123", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "incdrops", claims.Issuer)
}

func TestValidate_ExpiredToken(t *testing.T) {
	tokens, err := NewTokens(testSecret, time.Hour)
	require.NoError(t, err)

	issued := time.Date(2026, time.October, 1, 9, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	token, err := tokens.Issue("acc-123", "test@example.com")
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Hour) }

	_, err = tokens.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_TamperedToken(t *testing.T) {
	tokens := newTestTokens(t)

	token, err := tokens.Issue("acc-123", "test@example.com")
	require.NoError(t, err)

	_, err = tokens.Validate(token[:len(token)-5] + "XXXXX")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := newTestTokens(t).Issue("acc-123", "test@example.com")
	require.NoError(t, err)

	other, err := NewTokens("different-secret-key", 0)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		UserID: "attacker",
		Email:  "attacker@evil.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestTokens(t).Validate(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsMissingAccount(t *testing.T) {
	tokens := newTestTokens(t)

	token, err := tokens.Issue("", "nobody@example.com")
	require.NoError(t, err)

	_, err = tokens.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_MalformedToken(t *testing.T) {
	tokens := newTestTokens(t)

	for _, token := range []string{
		"",
		"not.a.jwt",
		"only.two",
		"too.many.parts.in.this.token",
		"<script>alert('xss')</script>",
	} {
		_, err := tokens.Validate(token)
		assert.Error(t, err, "malformed token %q should be rejected", token)
	}
}

func TestIssue_Expiration(t *testing.T) {
	tokens, err := NewTokens(testSecret, 48*time.Hour)
	require.NoError(t, err)

	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }

	token, err := tokens.Issue("acc-123", "test@example.com")
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Time.Equal(now.Add(48*time.Hour)))
}

func TestNewTokens_DefaultTTL(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, newTestTokens(t).ttl)
}
