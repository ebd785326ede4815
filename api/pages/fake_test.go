package pages

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"codeberg.org/newsdesk/web/internal/backend"
	"codeberg.org/newsdesk/web/internal/identity"
)

// in-memory REST backend
type fakeBackend struct {
	mu        sync.Mutex
	posts     []backend.Post
	news      []backend.NewsItem
	calls     []string
	failWrite bool
}

func (b *fakeBackend) record(call string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
}

func (b *fakeBackend) setFailWrite(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failWrite = fail
}

func (b *fakeBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBackend) ListPosts(_ context.Context, userID string) ([]backend.Post, error) {
	b.record("GET /posts?userId=" + userID)

	b.mu.Lock()
	defer b.mu.Unlock()

	var out []backend.Post
	for _, p := range b.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (b *fakeBackend) UpdatePost(_ context.Context, update backend.PostUpdate) error {
	b.record("PUT /post " + update.ID.String() + " " + update.Name)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failWrite {
		return &backend.StatusError{Method: http.MethodPut, Path: "/post", Status: http.StatusInternalServerError}
	}

	for i, p := range b.posts {
		if p.ID == update.ID {
			b.posts[i].Name = update.Name
			b.posts[i].Image = update.Image
			b.posts[i].Content = update.Content
		}
	}
	return nil
}

func (b *fakeBackend) DeletePost(_ context.Context, id backend.PostID) error {
	b.record("DELETE /post/" + id.String())

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failWrite {
		return &backend.StatusError{Method: http.MethodDelete, Path: "/post/" + id.String(), Status: http.StatusInternalServerError}
	}

	kept := b.posts[:0]
	for _, p := range b.posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	b.posts = kept
	return nil
}

func (b *fakeBackend) jsonResponse(path string, v any, status int) (*backend.Response, error) {
	body := []byte("null")
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		body = data
	}
	return &backend.Response{Method: http.MethodGet, Path: path, Status: status, Body: body}, nil
}

func (b *fakeBackend) News(_ context.Context) (*backend.Response, error) {
	b.record("GET /news")

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.jsonResponse("/news", b.news, http.StatusOK)
}

func (b *fakeBackend) NewsByID(_ context.Context, id string) (*backend.Response, error) {
	b.record("GET /news/" + id)

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, n := range b.news {
		if n.ID == id {
			return b.jsonResponse("/news/"+id, n, http.StatusOK)
		}
	}
	return b.jsonResponse("/news/"+id, map[string]string{"error": "not found"}, http.StatusNotFound)
}

func (b *fakeBackend) Category(_ context.Context, id string) (*backend.Response, error) {
	b.record("GET /category/" + id)

	b.mu.Lock()
	defer b.mu.Unlock()

	var out []backend.NewsItem
	for _, n := range b.news {
		if n.CategoryID == id {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return b.jsonResponse("/category/"+id, nil, http.StatusNotFound)
	}
	return b.jsonResponse("/category/"+id, out, http.StatusOK)
}

type account struct {
	uid      string
	password string
	verified bool
	name     string
}

// identity provider shared by all visitors of a test site
type fakeDirectory struct {
	mu       sync.Mutex
	accounts map[string]*account
	calls    []string
	nextUID  int

	// every new visitor starts signed in as this user
	signedIn *identity.User
	// visitors with a persisted token stay loading until released
	hold chan struct{}
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{accounts: make(map[string]*account)}
}

func (d *fakeDirectory) add(email, password string, verified bool) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextUID++
	uid := "uid-" + strconv.Itoa(d.nextUID)
	d.accounts[email] = &account{uid: uid, password: password, verified: verified}
	return uid
}

func (d *fakeDirectory) record(call string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call)
}

func (d *fakeDirectory) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// per-visitor identity backed by the directory
type fakeIdentity struct {
	dir *fakeDirectory

	mu        sync.Mutex
	user      *identity.User
	token     string
	listeners map[int]func(*identity.User)
	nextID    int
}

func (d *fakeDirectory) newIdentity(token string) *fakeIdentity {
	return &fakeIdentity{dir: d, token: token, listeners: make(map[int]func(*identity.User))}
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

func (f *fakeIdentity) set(u *identity.User, token string) {
	f.mu.Lock()
	f.user = u
	f.token = token
	fns := make([]func(*identity.User), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(u.Clone())
	}
}

func (f *fakeIdentity) CreateUser(_ context.Context, email, password string) (*identity.Credential, error) {
	f.dir.record("CreateUser " + email)

	f.dir.mu.Lock()
	if _, exists := f.dir.accounts[email]; exists {
		f.dir.mu.Unlock()
		return nil, &identity.Error{Op: "accounts:signUp", Status: 400, Message: "EMAIL_EXISTS"}
	}
	f.dir.nextUID++
	acc := &account{uid: "uid-" + strconv.Itoa(f.dir.nextUID), password: password}
	f.dir.accounts[email] = acc
	f.dir.mu.Unlock()

	u := &identity.User{UID: acc.uid, Email: email}
	f.set(u, "refresh-"+acc.uid)
	return &identity.Credential{User: u.Clone(), IsNewUser: true}, nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*identity.Credential, error) {
	f.dir.record("SignIn " + email)

	f.dir.mu.Lock()
	acc, ok := f.dir.accounts[email]
	f.dir.mu.Unlock()

	if !ok || acc.password != password {
		return nil, &identity.Error{Op: "accounts:signInWithPassword", Status: 400, Message: "INVALID_LOGIN_CREDENTIALS"}
	}

	u := &identity.User{UID: acc.uid, Email: email, EmailVerified: acc.verified, DisplayName: acc.name}
	f.set(u, "refresh-"+acc.uid)
	return &identity.Credential{User: u.Clone()}, nil
}

func (f *fakeIdentity) SignInWithCredential(_ context.Context, cred identity.ProviderCredential) (*identity.Credential, error) {
	f.dir.record("SignInWithCredential " + string(cred.Kind))
	u := &identity.User{UID: "uid-fed", EmailVerified: true}
	f.set(u, "refresh-fed")
	return &identity.Credential{User: u.Clone()}, nil
}

func (f *fakeIdentity) UpdateProfile(_ context.Context, patch identity.ProfilePatch) error {
	name := ""
	if patch.DisplayName != nil {
		name = *patch.DisplayName
	}
	f.dir.record("UpdateProfile " + name)

	f.mu.Lock()
	if f.user == nil {
		f.mu.Unlock()
		return identity.ErrNoCurrentUser
	}
	f.user.DisplayName = name
	f.mu.Unlock()
	return nil
}

func (f *fakeIdentity) SendEmailVerification(_ context.Context) error {
	f.dir.record("SendEmailVerification")

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return identity.ErrNoCurrentUser
	}
	return nil
}

func (f *fakeIdentity) SignOut(_ context.Context) error {
	f.dir.record("SignOut")
	f.set(nil, "")
	return nil
}

func (f *fakeIdentity) Pending() bool {
	return f.dir.hold != nil
}

func (f *fakeIdentity) Restore(ctx context.Context) error {
	if f.dir.hold != nil {
		select {
		case <-f.dir.hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.set(f.dir.signedIn.Clone(), f.token)
	return nil
}

func (f *fakeIdentity) RefreshToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeIdentity) CurrentUser() *identity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user.Clone()
}
