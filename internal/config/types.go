package config

import (
	"time"

	"codeberg.org/incdrops/server/internal/quota"
)

type Config struct {
	Environment string
	Port        string
	LogLevel    string

	DatabaseURL string
	RedisURL    string

	// postgres, redis, sqlite or memory
	QuotaStore     string
	SQLitePath     string
	TierLimitsFile string
	TierLimits     quota.TierLimits

	Auth      AuthConfig
	Generator GeneratorConfig
	Stripe    StripeConfig

	HistoryPruneSchedule string
	AllowedOrigins       []string

	// per-account generation rate, ulule formatted ("10-M" is ten per minute)
	GenerateRateLimit string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration

	// signs the short lived OAuth state cookie
	SessionSecret string
	// public URL of the API, OAuth callbacks are registered under it
	BaseURL string

	Google OAuthCredentials
	GitHub OAuthCredentials
	Apple  OAuthCredentials
}

type OAuthCredentials struct {
	ClientID     string
	ClientSecret string
}

func (c OAuthCredentials) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type GeneratorConfig struct {
	Provider     string
	Model        string
	GeminiKey    string
	OpenAIKey    string
	AnthropicKey string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SiteURL       string

	// tier -> price id overrides, empty values keep the built-in prices
	Prices map[string]string
}
