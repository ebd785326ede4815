package identity

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

type fakeAccount struct {
	uid         string
	email       string
	password    string
	verified    bool
	displayName string
	photoURL    string
}

// in-memory stand-in for the Identity Toolkit and Secure Token APIs
type fakeProvider struct {
	mu        sync.Mutex
	accounts  map[string]*fakeAccount // by email
	idTokens  map[string]*fakeAccount
	refreshes map[string]*fakeAccount
	calls     []string
	issued    int
	oobSent   []string
	failNext  string
}

func newFakeProvider(t *testing.T) (*fakeProvider, *Client) {
	t.Helper()

	f := &fakeProvider{
		accounts:  make(map[string]*fakeAccount),
		idTokens:  make(map[string]*fakeAccount),
		refreshes: make(map[string]*fakeAccount),
	}

	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)

	client := NewClient("test-key", WithEndpoints(srv.URL+"/v1", srv.URL+"/st"), WithRequestURI("http://localhost:3000"))
	return f, client
}

func (f *fakeProvider) addAccount(a *fakeAccount) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[a.email] = a
}

func (f *fakeProvider) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeProvider) issue(a *fakeAccount) (string, string) {
	f.issued++
	id := fmt.Sprintf("id-%s-%d", a.uid, f.issued)
	refresh := fmt.Sprintf("refresh-%s-%d", a.uid, f.issued)
	f.idTokens[id] = a
	f.refreshes[refresh] = a
	return id, refresh
}

func (f *fakeProvider) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	method := strings.TrimPrefix(r.URL.Path, "/v1/accounts:")
	if r.URL.Path == "/st/token" {
		method = "token"
	}
	f.calls = append(f.calls, method)

	if r.URL.Query().Get("key") != "test-key" {
		writeProviderError(w, http.StatusBadRequest, "API_KEY_INVALID")
		return
	}

	if f.failNext != "" {
		msg := f.failNext
		f.failNext = ""
		writeProviderError(w, http.StatusBadRequest, msg)
		return
	}

	switch method {
	case "signUp":
		var req passwordRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if _, exists := f.accounts[req.Email]; exists {
			writeProviderError(w, http.StatusBadRequest, "EMAIL_EXISTS")
			return
		}
		a := &fakeAccount{uid: fmt.Sprintf("uid-%d", len(f.accounts)+1), email: req.Email, password: req.Password}
		f.accounts[req.Email] = a
		id, refresh := f.issue(a)
		writeJSON(w, authResponse{LocalID: a.uid, Email: a.email, IDToken: id, RefreshToken: refresh, ExpiresIn: "3600"})

	case "signInWithPassword":
		var req passwordRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a, ok := f.accounts[req.Email]
		if !ok || a.password != req.Password {
			writeProviderError(w, http.StatusBadRequest, "INVALID_LOGIN_CREDENTIALS")
			return
		}
		id, refresh := f.issue(a)
		writeJSON(w, authResponse{LocalID: a.uid, Email: a.email, IDToken: id, RefreshToken: refresh, ExpiresIn: "3600"})

	case "signInWithIdp":
		var req idpRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		body, _ := url.ParseQuery(req.PostBody)
		email := body.Get("providerId") + "-user@example.com"
		a, ok := f.accounts[email]
		if !ok {
			a = &fakeAccount{uid: "fed-" + body.Get("providerId"), email: email, verified: true}
			f.accounts[email] = a
		}
		id, refresh := f.issue(a)
		writeJSON(w, authResponse{LocalID: a.uid, Email: a.email, EmailVerified: true, IDToken: id, RefreshToken: refresh, ExpiresIn: "3600", IsNewUser: !ok})

	case "update":
		var req updateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a, ok := f.idTokens[req.IDToken]
		if !ok {
			writeProviderError(w, http.StatusBadRequest, "INVALID_ID_TOKEN")
			return
		}
		if req.DisplayName != "" {
			a.displayName = req.DisplayName
		}
		if req.PhotoURL != "" {
			a.photoURL = req.PhotoURL
		}
		for _, attr := range req.DeleteAttribute {
			switch attr {
			case "DISPLAY_NAME":
				a.displayName = ""
			case "PHOTO_URL":
				a.photoURL = ""
			}
		}
		writeJSON(w, authResponse{LocalID: a.uid, Email: a.email, DisplayName: a.displayName, PhotoURL: a.photoURL})

	case "sendOobCode":
		var req oobRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a, ok := f.idTokens[req.IDToken]
		if !ok || req.RequestType != "VERIFY_EMAIL" {
			writeProviderError(w, http.StatusBadRequest, "INVALID_ID_TOKEN")
			return
		}
		f.oobSent = append(f.oobSent, a.email)
		writeJSON(w, map[string]string{"email": a.email})

	case "lookup":
		var req lookupRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		a, ok := f.idTokens[req.IDToken]
		if !ok {
			writeProviderError(w, http.StatusBadRequest, "INVALID_ID_TOKEN")
			return
		}
		writeJSON(w, lookupResponse{Users: []accountInfo{{
			LocalID:       a.uid,
			Email:         a.email,
			EmailVerified: a.verified,
			DisplayName:   a.displayName,
			PhotoURL:      a.photoURL,
		}}})

	case "token":
		_ = r.ParseForm()
		a, ok := f.refreshes[r.PostForm.Get("refresh_token")]
		if !ok || r.PostForm.Get("grant_type") != "refresh_token" {
			writeProviderError(w, http.StatusBadRequest, "INVALID_REFRESH_TOKEN")
			return
		}
		id, refresh := f.issue(a)
		writeJSON(w, refreshResponse{IDToken: id, RefreshToken: refresh, ExpiresIn: "3600", UserID: a.uid})

	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeProviderError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": status, "message": message},
	})
}
