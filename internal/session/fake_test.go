package session

import (
	"context"
	"sync"

	"codeberg.org/newsdesk/web/internal/identity"
)

// in-memory Identity driven directly by tests
type fakeIdentity struct {
	mu        sync.Mutex
	user      *identity.User
	pending   bool
	listeners map[int]func(*identity.User)
	nextID    int
	calls     []string
	err       error

	restore func(ctx context.Context) error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{listeners: make(map[int]func(*identity.User))}
}

func (f *fakeIdentity) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeIdentity) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeIdentity) OnAuthStateChanged(fn func(*identity.User)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *fakeIdentity) listenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// reports u to every listener as the provider would
func (f *fakeIdentity) emit(u *identity.User) {
	f.mu.Lock()
	f.user = u
	fns := make([]func(*identity.User), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(u.Clone())
	}
}

func (f *fakeIdentity) CreateUser(_ context.Context, email, _ string) (*identity.Credential, error) {
	if err := f.record("CreateUser:" + email); err != nil {
		return nil, err
	}
	return &identity.Credential{User: &identity.User{UID: "u-new", Email: email}, IsNewUser: true}, nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, _ string) (*identity.Credential, error) {
	if err := f.record("SignIn:" + email); err != nil {
		return nil, err
	}
	return &identity.Credential{User: &identity.User{UID: "u-1", Email: email, EmailVerified: true}}, nil
}

func (f *fakeIdentity) SignInWithCredential(_ context.Context, cred identity.ProviderCredential) (*identity.Credential, error) {
	if err := f.record("SignInWithCredential:" + string(cred.Kind)); err != nil {
		return nil, err
	}
	return &identity.Credential{User: &identity.User{UID: "u-fed", EmailVerified: true}}, nil
}

func (f *fakeIdentity) UpdateProfile(_ context.Context, _ identity.ProfilePatch) error {
	return f.record("UpdateProfile")
}

func (f *fakeIdentity) SendEmailVerification(_ context.Context) error {
	return f.record("SendEmailVerification")
}

func (f *fakeIdentity) SignOut(_ context.Context) error {
	return f.record("SignOut")
}

func (f *fakeIdentity) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

func (f *fakeIdentity) Restore(ctx context.Context) error {
	f.mu.Lock()
	restore := f.restore
	f.pending = false
	f.mu.Unlock()

	if restore != nil {
		return restore(ctx)
	}
	f.emit(nil)
	return nil
}

func (f *fakeIdentity) RefreshToken() string { return "" }

func (f *fakeIdentity) CurrentUser() *identity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user.Clone()
}
