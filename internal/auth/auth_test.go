package auth

import (
	"testing"

	"codeberg.org/incdrops/server/internal/config"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeProviders_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AuthConfig
		want string
	}{
		{"missing session secret", config.AuthConfig{Google: config.OAuthCredentials{ClientID: "id", ClientSecret: "secret"}}, "SESSION_SECRET"},
		{"missing google", config.AuthConfig{SessionSecret: "s"}, "GOOGLE_CLIENT_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitializeProviders(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestProviders(t *testing.T) {
	cfg := config.AuthConfig{
		SessionSecret: "s",
		BaseURL:       "https://api.incdrops.com/",
		Google:        config.OAuthCredentials{ClientID: "g-id", ClientSecret: "g-secret"},
		GitHub:        config.OAuthCredentials{ClientID: "gh-id", ClientSecret: "gh-secret"},
	}

	list := providers(cfg)

	var names []string
	for _, p := range list {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"google", "github"}, names)

	assert.Equal(t, "https://api.incdrops.com/api/v1/auth/github/callback", callbackURL(cfg, "github"))
}

func TestInitializeProviders_RegistersWithGoth(t *testing.T) {
	t.Cleanup(goth.ClearProviders)

	err := InitializeProviders(config.AuthConfig{
		SessionSecret: "s",
		BaseURL:       "http://localhost:8080",
		Google:        config.OAuthCredentials{ClientID: "g-id", ClientSecret: "g-secret"},
	})
	require.NoError(t, err)

	p, err := goth.GetProvider("google")
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())

	_, err = goth.GetProvider("apple")
	assert.Error(t, err)
}

func TestNewStateStore_SecureOnHTTPS(t *testing.T) {
	assert.True(t, newStateStore(config.AuthConfig{SessionSecret: "s", BaseURL: "https://api.incdrops.com"}).Options.Secure)
	assert.False(t, newStateStore(config.AuthConfig{SessionSecret: "s", BaseURL: "http://localhost:8080"}).Options.Secure)
}
