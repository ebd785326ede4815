package session

import (
	"context"
	"sync"

	"codeberg.org/newsdesk/web/internal/identity"
	"codeberg.org/newsdesk/web/internal/logger"
)

// identity context of one visitor: current-user projection, loading flag and the
// operations pages call. Lifecycle is explicit: Init subscribes, Dispose unsubscribes.
type Session struct {
	auth Authenticator

	mu          sync.RWMutex
	user        *identity.User
	loading     bool
	unsubscribe func()
	disposed    bool
	watchers    map[uint64]chan State
	nextWatcher uint64
}

// creates a session in the loading state
func New(auth Authenticator) *Session {
	return &Session{
		auth:     auth,
		loading:  true,
		watchers: make(map[uint64]chan State),
	}
}

// subscribes to auth-state changes. Calling it twice is a no-op.
func (s *Session) Init() {
	s.mu.Lock()
	if s.unsubscribe != nil || s.disposed {
		s.mu.Unlock()
		return
	}
	s.unsubscribe = func() {}
	s.mu.Unlock()

	unsubscribe := s.auth.OnAuthStateChanged(s.onAuthStateChanged)

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		unsubscribe()
		return
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
}

// unsubscribes and closes all watchers
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	unsubscribe := s.unsubscribe
	for id, ch := range s.watchers {
		close(ch)
		delete(s.watchers, id)
	}
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// returns a snapshot of the session state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{User: s.user.Clone(), Loading: s.loading}
}

// overrides the loading flag, used by pages after a failed sign-in
func (s *Session) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.broadcastLocked()
	s.mu.Unlock()
}

func (s *Session) CreateUser(ctx context.Context, email, password string) (*identity.Credential, error) {
	s.SetLoading(true)
	return s.auth.CreateUser(ctx, email, password)
}

func (s *Session) SignIn(ctx context.Context, email, password string) (*identity.Credential, error) {
	s.SetLoading(true)
	return s.auth.SignIn(ctx, email, password)
}

func (s *Session) ProviderLogin(ctx context.Context, cred identity.ProviderCredential) (*identity.Credential, error) {
	return s.auth.SignInWithCredential(ctx, cred)
}

func (s *Session) UpdateUserProfile(ctx context.Context, patch identity.ProfilePatch) error {
	return s.auth.UpdateProfile(ctx, patch)
}

func (s *Session) VerifyEmail(ctx context.Context) error {
	return s.auth.SendEmailVerification(ctx)
}

func (s *Session) LogOut(ctx context.Context) error {
	s.SetLoading(true)
	return s.auth.SignOut(ctx)
}

// streams state snapshots, starting with the current one. Slow readers only see
// the latest state. The channel closes on stop or Dispose.
func (s *Session) Watch() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ch
	ch <- State{User: s.user.Clone(), Loading: s.loading}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if w, ok := s.watchers[id]; ok {
				close(w)
				delete(s.watchers, id)
			}
		})
	}
}

// only verified accounts are surfaced as signed in
func (s *Session) onAuthStateChanged(u *identity.User) {
	if u != nil {
		logger.Debug("user auth state change", "uid", u.UID, "email_verified", u.EmailVerified)
	} else {
		logger.Debug("user auth state change", "uid", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u == nil || u.EmailVerified {
		s.user = u
	} else {
		s.user = nil
	}
	s.loading = false
	s.broadcastLocked()
}

func (s *Session) broadcastLocked() {
	state := State{User: s.user.Clone(), Loading: s.loading}

	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
}
