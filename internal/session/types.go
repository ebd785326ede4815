package session

import (
	"context"
	"errors"

	"codeberg.org/newsdesk/web/internal/identity"
)

var ErrDisposed = errors.New("session: disposed")

// identity provider operations the session delegates to
type Authenticator interface {
	OnAuthStateChanged(fn func(*identity.User)) (unsubscribe func())
	CreateUser(ctx context.Context, email, password string) (*identity.Credential, error)
	SignIn(ctx context.Context, email, password string) (*identity.Credential, error)
	SignInWithCredential(ctx context.Context, cred identity.ProviderCredential) (*identity.Credential, error)
	UpdateProfile(ctx context.Context, patch identity.ProfilePatch) error
	SendEmailVerification(ctx context.Context) error
	SignOut(ctx context.Context) error
}

// Authenticator plus the lifecycle hooks the visitor registry drives
type Identity interface {
	Authenticator
	Pending() bool
	Restore(ctx context.Context) error
	RefreshToken() string
	CurrentUser() *identity.User
}

// builds the identity for a new visitor from its persisted refresh token
type IdentityFactory func(refreshToken string) Identity

// readiness flag plus the current user projection
type State struct {
	User    *identity.User `json:"user"`
	Loading bool           `json:"loading"`
}

func (s State) SignedIn() bool {
	return !s.Loading && s.User != nil
}
