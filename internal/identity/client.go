package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	defaultTokenURL   = "https://securetoken.googleapis.com/v1"
)

// talks to the Identity Toolkit and Secure Token REST APIs
type Client struct {
	apiKey     string
	toolkitURL string
	tokenURL   string
	requestURI string
	httpClient *http.Client
}

type Option func(*Client)

// routes all calls to a local auth emulator, e.g. "localhost:9099"
func WithEmulatorHost(host string) Option {
	return func(c *Client) {
		if host == "" {
			return
		}
		c.toolkitURL = "http://" + host + "/identitytoolkit.googleapis.com/v1"
		c.tokenURL = "http://" + host + "/securetoken.googleapis.com/v1"
	}
}

// overrides both API base URLs
func WithEndpoints(toolkitURL, tokenURL string) Option {
	return func(c *Client) {
		c.toolkitURL = strings.TrimSuffix(toolkitURL, "/")
		c.tokenURL = strings.TrimSuffix(tokenURL, "/")
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// sets the requestUri sent with federated sign-in
func WithRequestURI(uri string) Option {
	return func(c *Client) {
		c.requestURI = uri
	}
}

// creates a new identity provider client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		toolkitURL: defaultToolkitURL,
		tokenURL:   defaultTokenURL,
		requestURI: "http://localhost",
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// creates an email/password account
func (c *Client) signUp(ctx context.Context, email, password string) (*authResponse, error) {
	var out authResponse
	req := passwordRequest{Email: email, Password: password, ReturnSecureToken: true}

	if err := c.call(ctx, "accounts:signUp", req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// signs in with email/password
func (c *Client) signInWithPassword(ctx context.Context, email, password string) (*authResponse, error) {
	var out authResponse
	req := passwordRequest{Email: email, Password: password, ReturnSecureToken: true}

	if err := c.call(ctx, "accounts:signInWithPassword", req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// exchanges a federated provider credential for a session
func (c *Client) signInWithIdp(ctx context.Context, cred ProviderCredential) (*authResponse, error) {
	body := url.Values{}
	body.Set("providerId", cred.Kind.ProviderID())

	if cred.IDToken != "" {
		body.Set("id_token", cred.IDToken)
	}

	if cred.AccessToken != "" {
		body.Set("access_token", cred.AccessToken)
	}

	var out authResponse
	req := idpRequest{
		PostBody:            body.Encode(),
		RequestURI:          c.requestURI,
		ReturnSecureToken:   true,
		ReturnIdpCredential: true,
	}

	if err := c.call(ctx, "accounts:signInWithIdp", req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// applies a profile patch for the account owning idToken
func (c *Client) update(ctx context.Context, idToken string, patch ProfilePatch) (*authResponse, error) {
	req := updateRequest{IDToken: idToken, ReturnSecureToken: true}

	if patch.DisplayName != nil {
		if *patch.DisplayName == "" {
			req.DeleteAttribute = append(req.DeleteAttribute, "DISPLAY_NAME")
		} else {
			req.DisplayName = *patch.DisplayName
		}
	}

	if patch.PhotoURL != nil {
		if *patch.PhotoURL == "" {
			req.DeleteAttribute = append(req.DeleteAttribute, "PHOTO_URL")
		} else {
			req.PhotoURL = *patch.PhotoURL
		}
	}

	var out authResponse
	if err := c.call(ctx, "accounts:update", req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// asks the provider to deliver a verification email
func (c *Client) sendEmailVerification(ctx context.Context, idToken string) error {
	req := oobRequest{RequestType: "VERIFY_EMAIL", IDToken: idToken}
	return c.call(ctx, "accounts:sendOobCode", req, nil)
}

// fetches the account record owning idToken
func (c *Client) lookup(ctx context.Context, idToken string) (*accountInfo, error) {
	var out lookupResponse
	if err := c.call(ctx, "accounts:lookup", lookupRequest{IDToken: idToken}, &out); err != nil {
		return nil, err
	}

	if len(out.Users) == 0 {
		return nil, ErrUnknownUser
	}

	return &out.Users[0], nil
}

// trades a refresh token for a new id token
func (c *Client) refresh(ctx context.Context, refreshToken string) (*refreshResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := fmt.Sprintf("%s/token?key=%s", c.tokenURL, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out refreshResponse
	if err := c.do(req, "token", &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", c.toolkitURL, method, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.do(req, strings.TrimPrefix(method, "accounts:"), out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity: %s request failed: %w", op, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("identity: %s: failed to read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env errorEnvelope
		if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
			return &Error{Op: op, Status: resp.StatusCode, Message: env.Error.Message}
		}
		return &Error{Op: op, Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("identity: %s: failed to parse response: %w", op, err)
	}

	return nil
}
