package main

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/incdrops/server/incdrops/accounts"
	"codeberg.org/incdrops/server/internal/auth"
	"codeberg.org/incdrops/server/internal/billing"
	"codeberg.org/incdrops/server/internal/config"
	"codeberg.org/incdrops/server/internal/generator"
	"codeberg.org/incdrops/server/internal/metrics"
	"codeberg.org/incdrops/server/internal/ratelimit"
	ws "codeberg.org/incdrops/server/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// creates and configures all service clients
func InitializeServices(
	cfg *config.Config,
	redisClient *redis.Client,
	accountRepo *accounts.Repository,
	hub *ws.Hub,
	m *metrics.Metrics,
) (*Services, error) {
	provider, err := generator.NewProvider(cfg.Generator)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation provider: %w", err)
	}

	checkout := billing.NewService(cfg.Stripe)
	webhook := billing.NewWebhook(
		cfg.Stripe.WebhookSecret,
		checkout.Prices(),
		billingAccounts{repo: accountRepo},
		hub,
	)

	limiter, err := ratelimit.New(cfg.GenerateRateLimit, redisClient, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	return &Services{
		Generator: generator.New(provider, generator.WithObserver(m)),
		Checkout:  checkout,
		Webhook:   webhook,
		RateLimit: limiter,
	}, nil
}

// rate limit key for authenticated routes
func accountKey(c *gin.Context) string {
	accountID, _ := auth.GetUserID(c)
	return accountID
}

// adapts the accounts repository to the webhook, translating its not-found error
type billingAccounts struct {
	repo *accounts.Repository
}

func (b billingAccounts) ApplyTier(ctx context.Context, accountID, tier, customerID string) error {
	return translateNotFound(b.repo.ApplyTier(ctx, accountID, tier, customerID))
}

func (b billingAccounts) AccountIDForCustomer(ctx context.Context, customerID string) (string, error) {
	accountID, err := b.repo.AccountIDForCustomer(ctx, customerID)
	return accountID, translateNotFound(err)
}

func translateNotFound(err error) error {
	if errors.Is(err, accounts.ErrNotFound) {
		return billing.ErrAccountNotFound
	}

	return err
}
