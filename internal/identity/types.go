package identity

import "time"

// identity-provider-issued user record, as projected into the application
type User struct {
	UID           string `json:"uid"`
	DisplayName   string `json:"displayName"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	PhotoURL      string `json:"photoURL,omitempty"`
	ProviderID    string `json:"providerId"`
}

// returns a copy safe to hand to another goroutine
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	c := *u
	return &c
}

// result of a successful sign-up or sign-in
type Credential struct {
	User       *User
	ProviderID string
	IsNewUser  bool
}

// partial profile update; nil fields are left untouched, empty strings delete the attribute
type ProfilePatch struct {
	DisplayName *string
	PhotoURL    *string
}

type ProviderKind string

const (
	ProviderPassword ProviderKind = "password"
	ProviderGoogle   ProviderKind = "google"
	ProviderGitHub   ProviderKind = "github"
)

// maps a provider kind to the identity provider's provider id
func (k ProviderKind) ProviderID() string {
	switch k {
	case ProviderGoogle:
		return "google.com"
	case ProviderGitHub:
		return "github.com"
	default:
		return string(k)
	}
}

// federated credential obtained from an OAuth flow
type ProviderCredential struct {
	Kind        ProviderKind
	IDToken     string
	AccessToken string
}

type tokens struct {
	idToken      string
	refreshToken string
	expiresAt    time.Time
}

// wire types for the Identity Toolkit REST API

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type idpRequest struct {
	PostBody            string `json:"postBody"`
	RequestURI          string `json:"requestUri"`
	ReturnSecureToken   bool   `json:"returnSecureToken"`
	ReturnIdpCredential bool   `json:"returnIdpCredential"`
}

type authResponse struct {
	LocalID       string `json:"localId"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	PhotoURL      string `json:"photoUrl"`
	EmailVerified bool   `json:"emailVerified"`
	IDToken       string `json:"idToken"`
	RefreshToken  string `json:"refreshToken"`
	ExpiresIn     string `json:"expiresIn"`
	ProviderID    string `json:"providerId"`
	IsNewUser     bool   `json:"isNewUser"`
}

type updateRequest struct {
	IDToken           string   `json:"idToken"`
	DisplayName       string   `json:"displayName,omitempty"`
	PhotoURL          string   `json:"photoUrl,omitempty"`
	DeleteAttribute   []string `json:"deleteAttribute,omitempty"`
	ReturnSecureToken bool     `json:"returnSecureToken"`
}

type oobRequest struct {
	RequestType string `json:"requestType"`
	IDToken     string `json:"idToken"`
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []accountInfo `json:"users"`
}

type accountInfo struct {
	LocalID          string         `json:"localId"`
	Email            string         `json:"email"`
	EmailVerified    bool           `json:"emailVerified"`
	DisplayName      string         `json:"displayName"`
	PhotoURL         string         `json:"photoUrl"`
	ProviderUserInfo []providerInfo `json:"providerUserInfo"`
}

type providerInfo struct {
	ProviderID string `json:"providerId"`
}

type refreshResponse struct {
	ExpiresIn    string `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	UserID       string `json:"user_id"`
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a accountInfo) user() *User {
	u := &User{
		UID:           a.LocalID,
		DisplayName:   a.DisplayName,
		Email:         a.Email,
		EmailVerified: a.EmailVerified,
		PhotoURL:      a.PhotoURL,
		ProviderID:    string(ProviderPassword),
	}

	if len(a.ProviderUserInfo) > 0 {
		u.ProviderID = a.ProviderUserInfo[0].ProviderID
	}

	return u
}
