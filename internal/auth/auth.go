package auth

import (
	"fmt"
	"net/http"
	"strings"

	"codeberg.org/incdrops/server/internal/config"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/apple"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
)

// oauth state only lives for the redirect round trip
const oauthStateMaxAge = 300

// registers the configured OAuth providers with goth and the cookie store
// gothic keeps the OAuth state in. google is required, github and apple are
// enabled when their credentials are set
func InitializeProviders(cfg config.AuthConfig) error {
	if cfg.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must be set")
	}

	if !cfg.Google.Configured() {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}

	gothic.Store = newStateStore(cfg)
	goth.UseProviders(providers(cfg)...)

	return nil
}

func newStateStore(cfg config.AuthConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   oauthStateMaxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.BaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}

	return store
}

func providers(cfg config.AuthConfig) []goth.Provider {
	list := []goth.Provider{
		google.New(cfg.Google.ClientID, cfg.Google.ClientSecret, callbackURL(cfg, "google"), "email", "profile"),
	}

	if cfg.GitHub.Configured() {
		list = append(list, github.New(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, callbackURL(cfg, "github"), "user:email"))
	}

	if cfg.Apple.Configured() {
		list = append(list, apple.New(cfg.Apple.ClientID, cfg.Apple.ClientSecret, callbackURL(cfg, "apple"), nil,
			apple.ScopeName, apple.ScopeEmail))
	}

	return list
}

func callbackURL(cfg config.AuthConfig, provider string) string {
	return strings.TrimRight(cfg.BaseURL, "/") + "/api/v1/auth/" + provider + "/callback"
}
