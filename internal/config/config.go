package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"codeberg.org/incdrops/server/internal/quota"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"

	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loads only what the admin tooling needs: the database, redis and the quota store.
// generation and payment settings are not validated
func LoadStorageConfig() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	cfg := &Config{
		Environment:          getenv("ENVIRONMENT", "development"),
		Port:                 getenv("PORT", "8080"),
		LogLevel:             os.Getenv("LOG_LEVEL"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		QuotaStore:           strings.ToLower(getenv("QUOTA_STORE", StorePostgres)),
		SQLitePath:           getenv("SQLITE_PATH", "./data/usage.db"),
		TierLimitsFile:       os.Getenv("TIER_LIMITS_FILE"),
		HistoryPruneSchedule: getenv("HISTORY_PRUNE_SCHEDULE", "@daily"),
		GenerateRateLimit:    getenv("GENERATE_RATE_LIMIT", "10-M"),
		AllowedOrigins:       splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000,https://www.incdrops.com")),
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			SessionSecret: os.Getenv("SESSION_SECRET"),
			BaseURL:       strings.TrimRight(getenv("BASE_URL", "http://localhost:8080"), "/"),
			Google:        credentials("GOOGLE"),
			GitHub:        credentials("GITHUB"),
			Apple:         credentials("APPLE"),
		},
		Generator: GeneratorConfig{
			Provider:     strings.ToLower(getenv("GENERATOR_PROVIDER", ProviderGemini)),
			Model:        os.Getenv("GENERATOR_MODEL"),
			GeminiKey:    os.Getenv("GEMINI_API_KEY"),
			OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		},
		Stripe: StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			SiteURL:       strings.TrimRight(getenv("SITE_URL", "https://www.incdrops.com"), "/"),
			Prices: map[string]string{
				quota.TierBasic:    os.Getenv("STRIPE_PRICE_BASIC"),
				quota.TierPro:      os.Getenv("STRIPE_PRICE_PRO"),
				quota.TierBusiness: os.Getenv("STRIPE_PRICE_BUSINESS"),
			},
		},
	}

	ttl, err := time.ParseDuration(getenv("TOKEN_TTL", "168h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL %q", os.Getenv("TOKEN_TTL"))
	}

	cfg.Auth.TokenTTL = ttl

	limits, err := quota.LoadTierLimits(cfg.TierLimitsFile)
	if err != nil {
		return nil, err
	}

	cfg.TierLimits = limits

	return cfg, nil
}

func (c *Config) validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	switch c.Generator.Provider {
	case ProviderGemini:
		if c.Generator.GeminiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable is required")
		}
	case ProviderOpenAI:
		if c.Generator.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
	case ProviderAnthropic:
		if c.Generator.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable is required")
		}
	default:
		return fmt.Errorf("unknown GENERATOR_PROVIDER %q", c.Generator.Provider)
	}

	return nil
}

func (c *Config) validateStorage() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	switch c.QuotaStore {
	case StorePostgres, StoreSQLite, StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL environment variable is required when QUOTA_STORE=redis")
		}
	default:
		return fmt.Errorf("unknown QUOTA_STORE %q", c.QuotaStore)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// reads <PREFIX>_CLIENT_ID and <PREFIX>_CLIENT_SECRET
func credentials(prefix string) OAuthCredentials {
	return OAuthCredentials{
		ClientID:     os.Getenv(prefix + "_CLIENT_ID"),
		ClientSecret: os.Getenv(prefix + "_CLIENT_SECRET"),
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return fallback
}

func splitList(raw string) []string {
	var out []string

	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
