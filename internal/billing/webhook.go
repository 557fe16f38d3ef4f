package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/incdrops/server/internal/logger"
	"codeberg.org/incdrops/server/internal/quota"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/tidwall/gjson"
)

const WebhookBodyLimit = 1024 * 1024 // 1 MiB

var (
	ErrWebhookNotConfigured = errors.New("webhook secret not configured")
	ErrMissingSignature     = errors.New("missing Stripe signature")
	ErrInvalidSignature     = errors.New("invalid Stripe signature")
	ErrAccountNotFound      = errors.New("account not found")
)

// the account side of tier changes, implemented by the accounts repository
type AccountUpdater interface {
	ApplyTier(ctx context.Context, accountID, tier, stripeCustomerID string) error
	AccountIDForCustomer(ctx context.Context, customerID string) (string, error)
}

// told about every applied tier change, implemented by the push hub
type TierNotifier interface {
	TierChanged(accountID, tier string)
}

type WebhookResult struct {
	EventID   string
	EventType string
	AccountID string
	Tier      string
	Handled   bool
}

// verifies and applies Stripe events
type Webhook struct {
	secret   string
	prices   Prices
	accounts AccountUpdater
	notifier TierNotifier
}

func NewWebhook(secret string, prices Prices, accounts AccountUpdater, notifier TierNotifier) *Webhook {
	return &Webhook{
		secret:   strings.TrimSpace(secret),
		prices:   prices,
		accounts: accounts,
		notifier: notifier,
	}
}

// verifies the signature of payload and applies the event. events that cannot
// be attributed to an account are acknowledged without effect since a retry
// would not change that; only failures to persist are returned as errors
func (w *Webhook) Handle(ctx context.Context, payload []byte, sigHeader string) (WebhookResult, error) {
	if w.secret == "" {
		return WebhookResult{}, ErrWebhookNotConfigured
	}

	if strings.TrimSpace(sigHeader) == "" {
		return WebhookResult{}, ErrMissingSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, w.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return WebhookResult{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	result := WebhookResult{EventID: event.ID, EventType: string(event.Type)}
	raw := []byte(event.Data.Raw)

	switch event.Type {
	case "checkout.session.completed":
		return w.applyCheckout(ctx, result, raw)

	case "customer.subscription.updated":
		return w.applySubscriptionUpdated(ctx, result, raw)

	case "customer.subscription.deleted":
		return w.applyTier(ctx, result, raw, quota.TierFree)

	default:
		logger.Info("stripe webhook ignored (unhandled type)",
			"type", result.EventType,
			"event_id", result.EventID,
		)

		return result, nil
	}
}

func (w *Webhook) applyCheckout(ctx context.Context, result WebhookResult, raw []byte) (WebhookResult, error) {
	tier := strings.ToLower(gjson.GetBytes(raw, "metadata."+metadataTierKey).String())

	if !quota.ValidTier(tier) || tier == quota.TierFree {
		// line items are only present when the event was expanded
		priceTier, ok := w.prices.TierForPrice(gjson.GetBytes(raw, "line_items.data.0.price.id").String())
		if !ok {
			logger.Warn("checkout completed without a known tier",
				"event_id", result.EventID,
				"metadata_tier", tier,
			)

			return result, nil
		}

		tier = priceTier
	}

	return w.applyTier(ctx, result, raw, tier)
}

func (w *Webhook) applySubscriptionUpdated(ctx context.Context, result WebhookResult, raw []byte) (WebhookResult, error) {
	status := gjson.GetBytes(raw, "status").String()

	switch status {
	case "active", "trialing":
		priceID := gjson.GetBytes(raw, "items.data.0.price.id").String()

		tier, ok := w.prices.TierForPrice(priceID)
		if !ok {
			logger.Warn("subscription updated with unknown price",
				"event_id", result.EventID,
				"price_id", priceID,
			)

			return result, nil
		}

		return w.applyTier(ctx, result, raw, tier)

	case "canceled", "unpaid", "incomplete_expired":
		return w.applyTier(ctx, result, raw, quota.TierFree)

	default:
		// past_due and incomplete keep the current tier until Stripe settles
		logger.Debug("subscription status left unapplied",
			"event_id", result.EventID,
			"status", status,
		)

		return result, nil
	}
}

func (w *Webhook) applyTier(ctx context.Context, result WebhookResult, raw []byte, tier string) (WebhookResult, error) {
	customerID := customerOf(raw)

	accountID, err := w.resolveAccount(ctx, raw, customerID)
	if err != nil {
		return result, err
	}

	if accountID == "" {
		logger.Warn("stripe event without a resolvable account",
			"event_id", result.EventID,
			"type", result.EventType,
			"customer", customerID,
		)

		return result, nil
	}

	if err := w.accounts.ApplyTier(ctx, accountID, tier, customerID); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			logger.Warn("stripe event for unknown account",
				"event_id", result.EventID,
				"account_id", accountID,
			)

			return result, nil
		}

		return result, fmt.Errorf("failed to apply tier: %w", err)
	}

	if w.notifier != nil {
		w.notifier.TierChanged(accountID, tier)
	}

	result.AccountID = accountID
	result.Tier = tier
	result.Handled = true

	logger.Info("account tier updated from stripe",
		"event_id", result.EventID,
		"account_id", accountID,
		"tier", tier,
	)

	return result, nil
}

func (w *Webhook) resolveAccount(ctx context.Context, raw []byte, customerID string) (string, error) {
	for _, path := range []string{
		"metadata." + metadataAccountKey,
		"metadata." + legacyAccountKey,
		"client_reference_id",
	} {
		if id := strings.TrimSpace(gjson.GetBytes(raw, path).String()); id != "" {
			return id, nil
		}
	}

	if customerID == "" {
		return "", nil
	}

	accountID, err := w.accounts.AccountIDForCustomer(ctx, customerID)
	if errors.Is(err, ErrAccountNotFound) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to look up customer: %w", err)
	}

	return accountID, nil
}

// the customer id, whether the event carries it as a string or expanded
func customerOf(raw []byte) string {
	customer := gjson.GetBytes(raw, "customer")
	if customer.IsObject() {
		return customer.Get("id").String()
	}

	return strings.TrimSpace(customer.String())
}
