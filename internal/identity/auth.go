package identity

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// per-visitor view of the identity provider: the provider's current user, its tokens and
// the auth-state listeners. The current user is kept even when its email is unverified;
// filtering is the caller's policy.
type Auth struct {
	client *Client
	now    func() time.Time

	mu          sync.Mutex
	initialized bool
	pending     string
	generation  uint64
	user        *User
	tokens      tokens
	listeners   map[uint64]func(*User)
	nextID      uint64
}

// creates an Auth that will restore the session behind persistedRefreshToken on Restore
func NewAuth(client *Client, persistedRefreshToken string) *Auth {
	return &Auth{
		client:    client,
		now:       time.Now,
		pending:   persistedRefreshToken,
		listeners: make(map[uint64]func(*User)),
	}
}

// reports whether Restore has network work to do
func (a *Auth) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.initialized && a.pending != ""
}

// completes initialisation, restoring the persisted session if there is one.
// Listeners fire exactly once when it returns, with the restored user or nil.
func (a *Auth) Restore(ctx context.Context) error {
	a.mu.Lock()
	if a.initialized {
		a.mu.Unlock()
		return nil
	}
	refreshToken := a.pending
	gen := a.generation
	a.mu.Unlock()

	var (
		user *User
		tok  tokens
		err  error
	)

	if refreshToken != "" {
		user, tok, err = a.restore(ctx, refreshToken)
	}

	a.mu.Lock()
	a.initialized = true
	a.pending = ""
	// a sign-in or sign-out that landed while restoring wins
	if gen == a.generation && err == nil {
		a.user = user
		a.tokens = tok
	}
	a.mu.Unlock()

	a.notify()

	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	return nil
}

func (a *Auth) restore(ctx context.Context, refreshToken string) (*User, tokens, error) {
	refreshed, err := a.client.refresh(ctx, refreshToken)
	if err != nil {
		return nil, tokens{}, err
	}

	tok := tokens{
		idToken:      refreshed.IDToken,
		refreshToken: refreshed.RefreshToken,
		expiresAt:    tokenExpiry(refreshed.IDToken, refreshed.ExpiresIn, a.now()),
	}

	info, err := a.client.lookup(ctx, tok.idToken)
	if err != nil {
		return nil, tokens{}, err
	}

	return info.user(), tok, nil
}

// registers fn for auth-state changes. If initialisation already completed fn is
// called immediately with the current user.
func (a *Auth) OnAuthStateChanged(fn func(*User)) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	initialized := a.initialized
	current := a.user.Clone()
	a.mu.Unlock()

	if initialized {
		fn(current)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.listeners, id)
			a.mu.Unlock()
		})
	}
}

// returns a copy of the provider's current user, verified or not
func (a *Auth) CurrentUser() *User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user.Clone()
}

// returns the refresh token to persist across reloads, empty when signed out
func (a *Auth) RefreshToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized {
		return a.pending
	}

	return a.tokens.refreshToken
}

// creates an email/password account and signs it in
func (a *Auth) CreateUser(ctx context.Context, email, password string) (*Credential, error) {
	resp, err := a.client.signUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	cred, err := a.establish(ctx, resp, string(ProviderPassword))
	if err != nil {
		return nil, err
	}

	cred.IsNewUser = true
	return cred, nil
}

// signs in with email/password
func (a *Auth) SignIn(ctx context.Context, email, password string) (*Credential, error) {
	resp, err := a.client.signInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return a.establish(ctx, resp, string(ProviderPassword))
}

// signs in with a credential obtained from a federated provider
func (a *Auth) SignInWithCredential(ctx context.Context, cred ProviderCredential) (*Credential, error) {
	resp, err := a.client.signInWithIdp(ctx, cred)
	if err != nil {
		return nil, err
	}

	return a.establish(ctx, resp, cred.Kind.ProviderID())
}

// updates display name and/or photo URL of the current user
func (a *Auth) UpdateProfile(ctx context.Context, patch ProfilePatch) error {
	idToken, err := a.freshIDToken(ctx)
	if err != nil {
		return err
	}

	resp, err := a.client.update(ctx, idToken, patch)
	if err != nil {
		return err
	}

	a.mu.Lock()
	if a.user != nil {
		if patch.DisplayName != nil {
			a.user.DisplayName = *patch.DisplayName
		}
		if patch.PhotoURL != nil {
			a.user.PhotoURL = *patch.PhotoURL
		}
	}
	if resp.IDToken != "" {
		a.tokens = tokens{
			idToken:      resp.IDToken,
			refreshToken: resp.RefreshToken,
			expiresAt:    tokenExpiry(resp.IDToken, resp.ExpiresIn, a.now()),
		}
	}
	a.mu.Unlock()

	a.notify()
	return nil
}

// asks the provider to send a verification email to the current user
func (a *Auth) SendEmailVerification(ctx context.Context) error {
	idToken, err := a.freshIDToken(ctx)
	if err != nil {
		return err
	}

	return a.client.sendEmailVerification(ctx, idToken)
}

// drops the current user and tokens
func (a *Auth) SignOut(_ context.Context) error {
	a.mu.Lock()
	a.initialized = true
	a.pending = ""
	a.generation++
	a.user = nil
	a.tokens = tokens{}
	a.mu.Unlock()

	a.notify()
	return nil
}

// looks the account up with the new tokens so the user record carries the
// verified flag and profile fields, then makes it current
func (a *Auth) establish(ctx context.Context, resp *authResponse, providerID string) (*Credential, error) {
	tok := tokens{
		idToken:      resp.IDToken,
		refreshToken: resp.RefreshToken,
		expiresAt:    tokenExpiry(resp.IDToken, resp.ExpiresIn, a.now()),
	}

	info, err := a.client.lookup(ctx, tok.idToken)
	if err != nil {
		return nil, err
	}

	user := info.user()

	a.mu.Lock()
	a.initialized = true
	a.pending = ""
	a.generation++
	a.user = user
	a.tokens = tok
	a.mu.Unlock()

	a.notify()

	return &Credential{
		User:       user.Clone(),
		ProviderID: providerID,
		IsNewUser:  resp.IsNewUser,
	}, nil
}

func (a *Auth) freshIDToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	if a.user == nil {
		a.mu.Unlock()
		return "", ErrNoCurrentUser
	}
	tok := a.tokens
	gen := a.generation
	a.mu.Unlock()

	if !tok.stale(a.now()) {
		return tok.idToken, nil
	}

	refreshed, err := a.client.refresh(ctx, tok.refreshToken)
	if err != nil {
		return "", err
	}

	tok = tokens{
		idToken:      refreshed.IDToken,
		refreshToken: refreshed.RefreshToken,
		expiresAt:    tokenExpiry(refreshed.IDToken, refreshed.ExpiresIn, a.now()),
	}

	a.mu.Lock()
	if gen == a.generation {
		a.tokens = tok
	}
	a.mu.Unlock()

	return tok.idToken, nil
}

func (a *Auth) notify() {
	a.mu.Lock()
	fns := make([]func(*User), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	current := a.user.Clone()
	a.mu.Unlock()

	for _, fn := range fns {
		fn(current.Clone())
	}
}
