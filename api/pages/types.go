package pages

import (
	"context"
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"codeberg.org/newsdesk/web/internal/backend"
	"codeberg.org/newsdesk/web/internal/identity"
	"codeberg.org/newsdesk/web/internal/posts"
	"codeberg.org/newsdesk/web/internal/render"
	"codeberg.org/newsdesk/web/internal/session"
)

// REST backend calls the pages make
type Backend interface {
	ListPosts(ctx context.Context, userID string) ([]backend.Post, error)
	UpdatePost(ctx context.Context, update backend.PostUpdate) error
	DeletePost(ctx context.Context, id backend.PostID) error
	News(ctx context.Context) (*backend.Response, error)
	NewsByID(ctx context.Context, id string) (*backend.Response, error)
	Category(ctx context.Context, id string) (*backend.Response, error)
}

// page level metrics, optional
type Recorder interface {
	RecordPage(route, outcome string)
	RecordAuthOperation(op string, err error)
}

type Deps struct {
	Backend   Backend
	Store     sessions.Store
	Renderer  *render.Renderer
	Recorder  Recorder
	Providers []string

	// formatted ulule rate for login and register submissions, e.g. "10-M"
	LoginRateLimit string
}

// fetches the data a route renders; the raw response is handed to the page
type Loader func(ctx context.Context, b Backend, params gin.Params) (*backend.Response, error)

// renders a route once the guard let it through
type Page func(c *gin.Context, req *Request)

// one entry of the route table
type Route struct {
	Path    string
	Name    string
	Private bool
	Loader  Loader
	Page    Page
}

// what a page handler gets from the router
type Request struct {
	Visitor *session.Visitor
	State   session.State
	Data    *backend.Response
	Deps    *Deps
}

// data every template receives
type Frame struct {
	Title     string
	User      *identity.User
	Loading   bool
	Providers []string
	Path      string
}

type loadingPage struct {
	Frame
	Target string
}

type newsListPage struct {
	Frame
	Heading string
	Items   []backend.NewsItem
}

type newsPage struct {
	Frame
	Item    backend.NewsItem
	Details template.HTML
}

type formPage struct {
	Frame
	From    string
	Email   string
	Name    string
	Photo   string
	Error   string
	Notice  string
	Checked bool
}

type profilePage struct {
	Frame
	Email   string
	Name    string
	Photo   string
	Notice  string
	Posts   []postCard
	Profile posts.Profile
}

type postCard struct {
	Post    backend.Post
	Editing bool
	Buffers posts.Buffers
	Content template.HTML
}
