package auth

import (
	"context"

	"codeberg.org/incdrops/server/incdrops/accounts"
)

// the account operations the auth handlers need
type AccountStore interface {
	FindOrCreateByProvider(ctx context.Context, provider, providerID, email, name, avatarURL string) (*accounts.Account, error)
	FindByID(ctx context.Context, accountID string) (*accounts.Account, error)
	UpdateProfile(ctx context.Context, accountID, name, avatarURL string) (*accounts.Account, error)
}

// signs the token handed out after sign-in
type TokenIssuer interface {
	Issue(accountID, email string) (string, error)
}

// returned after successful OAuth callback
type AuthResponse struct {
	Account *accounts.Account `json:"account"`
	Token   string            `json:"token"`
}

type AccountResponse struct {
	Account *accounts.Account `json:"account"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
