package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxErrorBody = 512

// observes backend calls, implemented by the metrics collector
type Recorder interface {
	RecordBackendRequest(op string, status int, elapsed time.Duration)
}

// HTTP client for the external REST backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	recorder   Recorder
}

type Option func(*Client)

// total per-request timeout; zero means none
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// paces outgoing requests; zero or negative means unlimited
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	}
}

func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// creates a new backend client rooted at baseURL, e.g. http://localhost:5000
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Inf, 0),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GET /posts?userId={id}
func (c *Client) ListPosts(ctx context.Context, userID string) ([]Post, error) {
	q := url.Values{}
	q.Set("userId", userID)

	resp, err := c.send(ctx, "list_posts", http.MethodGet, "/posts?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	if !resp.OK() {
		return nil, statusError(http.MethodGet, "/posts", resp)
	}

	var posts []Post
	if err := resp.Decode(&posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// PUT /post
func (c *Client) UpdatePost(ctx context.Context, update PostUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal post: %w", err)
	}

	resp, err := c.send(ctx, "update_post", http.MethodPut, "/post", body)
	if err != nil {
		return err
	}

	if !resp.OK() {
		return statusError(http.MethodPut, "/post", resp)
	}

	return nil
}

// DELETE /post/{id}
func (c *Client) DeletePost(ctx context.Context, id PostID) error {
	path := "/post/" + url.PathEscape(id.String())

	resp, err := c.send(ctx, "delete_post", http.MethodDelete, path, nil)
	if err != nil {
		return err
	}

	if !resp.OK() {
		return statusError(http.MethodDelete, path, resp)
	}

	return nil
}

// GET /news
func (c *Client) News(ctx context.Context) (*Response, error) {
	return c.Fetch(ctx, "news", "/news")
}

// GET /news/{id}
func (c *Client) NewsByID(ctx context.Context, id string) (*Response, error) {
	return c.Fetch(ctx, "news_item", "/news/"+url.PathEscape(id))
}

// GET /category/{id}
func (c *Client) Category(ctx context.Context, id string) (*Response, error) {
	return c.Fetch(ctx, "category", "/category/"+url.PathEscape(id))
}

// performs a GET and returns the raw response whatever its status;
// only transport failures are errors
func (c *Client) Fetch(ctx context.Context, op, path string) (*Response, error) {
	return c.send(ctx, op, http.MethodGet, path, nil)
}

func (c *Client) send(ctx context.Context, op, method, path string, body []byte) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(op, 0, time.Since(start))
		return nil, fmt.Errorf("backend: %s %s: request failed: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	c.record(op, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("backend: %s %s: failed to read response: %w", method, path, err)
	}

	return &Response{Method: method, Path: path, Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) record(op string, status int, elapsed time.Duration) {
	if c.recorder != nil {
		c.recorder.RecordBackendRequest(op, status, elapsed)
	}
}

func statusError(method, path string, resp *Response) *StatusError {
	body := strings.TrimSpace(string(resp.Body))
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}

	return &StatusError{Method: method, Path: path, Status: resp.Status, Body: body}
}
