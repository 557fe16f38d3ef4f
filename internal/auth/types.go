package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// represents JWT claims. the tier is not part of the token, it is read from
// the account on each request so upgrades apply immediately
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
