package auth

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"

	"codeberg.org/newsdesk/web/internal/config"
	"codeberg.org/newsdesk/web/internal/identity"
)

// creates the store backing the visitor cookie
func NewCookieStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.BaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}

	return store
}

// sets up the federated providers that have credentials configured and
// returns their names. Having none is valid: only email/password sign-in is offered.
func InitializeProviders(cfg *config.Config) []string {
	// initialize gothic session store
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))

	// configure cookie for OAuth redirects
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300, // 5 minutes, enough for OAuth flow
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.BaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}

	gothic.Store = store

	var (
		providers []goth.Provider
		names     []string
	)

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		providers = append(providers, google.New(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.BaseURL+"/auth/google/callback",
			"openid", "email", "profile",
		))
		names = append(names, string(identity.ProviderGoogle))
	}

	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		providers = append(providers, github.New(
			cfg.GitHubClientID,
			cfg.GitHubClientSecret,
			cfg.BaseURL+"/auth/github/callback",
			"user:email",
		))
		names = append(names, string(identity.ProviderGitHub))
	}

	goth.ClearProviders()
	goth.UseProviders(providers...)

	return names
}

// converts a completed OAuth flow into a credential the identity provider accepts
func CredentialFor(user goth.User) (identity.ProviderCredential, bool) {
	switch identity.ProviderKind(user.Provider) {
	case identity.ProviderGoogle:
		return identity.ProviderCredential{
			Kind:        identity.ProviderGoogle,
			IDToken:     user.IDToken,
			AccessToken: user.AccessToken,
		}, true
	case identity.ProviderGitHub:
		return identity.ProviderCredential{
			Kind:        identity.ProviderGitHub,
			AccessToken: user.AccessToken,
		}, true
	default:
		return identity.ProviderCredential{}, false
	}
}
