package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// backend-owned post identifier. The backend may use numbers or strings;
// the original form is kept so it is written back the same way.
type PostID struct {
	raw     string
	numeric bool
}

// builds an id from a path segment; integer literals are treated as numeric ids
func ParsePostID(s string) PostID {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return PostID{raw: s, numeric: true}
	}

	return PostID{raw: s}
}

func StringPostID(s string) PostID {
	return PostID{raw: s}
}

func (id PostID) String() string {
	return id.raw
}

func (id PostID) IsZero() bool {
	return id.raw == ""
}

func (id PostID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.raw), nil
	}

	return json.Marshal(id.raw)
}

func (id *PostID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PostID{raw: s}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("post id must be a string or number: %w", err)
	}

	*id = PostID{raw: n.String(), numeric: true}
	return nil
}

// post record as served by GET /posts
type Post struct {
	ID      PostID `json:"id"`
	Name    string `json:"name"`
	Image   string `json:"image"`
	Content string `json:"content"`
	UserID  string `json:"userId,omitempty"`
}

// body of PUT /post
type PostUpdate struct {
	ID      PostID `json:"id"`
	Name    string `json:"name"`
	Image   string `json:"image"`
	Content string `json:"content"`
}

// raw response handed to route loaders
type Response struct {
	Method string
	Path   string
	Status int
	Header http.Header
	Body   []byte
}

func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status <= 299
}

// returns a *StatusError for non-2xx responses
func (r *Response) Err() error {
	if r == nil {
		return fmt.Errorf("no response")
	}

	if r.OK() {
		return nil
	}

	return statusError(r.Method, r.Path, r)
}

func (r *Response) Decode(v any) error {
	if r == nil {
		return fmt.Errorf("no response")
	}

	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// news article served by /news, /news/{id} and /category/{id}
type NewsItem struct {
	ID         string      `json:"_id"`
	CategoryID string      `json:"category_id"`
	Title      string      `json:"title"`
	Details    string      `json:"details"`
	ImageURL   string      `json:"image_url"`
	Thumbnail  string      `json:"thumbnail_url"`
	TotalView  json.Number `json:"total_view"`
	Author     NewsAuthor  `json:"author"`
	Rating     NewsRating  `json:"rating"`
}

type NewsAuthor struct {
	Name          string `json:"name"`
	Image         string `json:"img"`
	PublishedDate string `json:"published_date"`
}

type NewsRating struct {
	Number json.Number `json:"number"`
	Badge  string      `json:"badge"`
}
