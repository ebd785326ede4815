package pages

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"codeberg.org/newsdesk/web/internal/auth"
	"codeberg.org/newsdesk/web/internal/backend"
	"codeberg.org/newsdesk/web/internal/errors"
)

// the route table; paths, loaders and guards in one place
func Routes() []Route {
	return []Route{
		{
			Path: "/",
			Name: "home",
			Loader: func(ctx context.Context, b Backend, _ gin.Params) (*backend.Response, error) {
				return b.News(ctx)
			},
			Page: homePage,
		},
		{
			Path: "/category/:id",
			Name: "category",
			Loader: func(ctx context.Context, b Backend, params gin.Params) (*backend.Response, error) {
				return b.Category(ctx, params.ByName("id"))
			},
			Page: categoryPage,
		},
		{
			Path:    "/news/:id",
			Name:    "news",
			Private: true,
			Loader: func(ctx context.Context, b Backend, params gin.Params) (*backend.Response, error) {
				return b.NewsByID(ctx, params.ByName("id"))
			},
			Page: newsDetailPage,
		},
		{Path: "/login", Name: "login", Page: loginPage},
		{Path: "/register", Name: "register", Page: registerPage},
		{Path: "/terms", Name: "terms", Page: termsPage},
		{Path: "/profile", Name: "profile", Private: true, Page: profileGetPage},
	}
}

// registers the page routes and the form actions behind them
func RegisterRoutes(router *gin.RouterGroup, deps *Deps) {
	for _, route := range Routes() {
		router.GET(route.Path, handle(route, deps))
	}

	registerAccountActions(router, deps)
	registerProfileActions(router, deps)
}

// runs the route loader alongside the guard and hands both results to the page.
// The loader is cancelled when the guard does not let the request through.
func handle(route Route, deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitor, ok := auth.GetVisitor(c)
		if !ok {
			errors.InternalError(c, "visitor missing", nil)
			return
		}

		var (
			data     *backend.Response
			decision auth.Decision
		)

		err := visitor.Tasks.Run(c.Request.Context(), func(ctx context.Context) error {
			loadCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			g, gctx := errgroup.WithContext(loadCtx)

			if route.Loader != nil {
				g.Go(func() error {
					resp, err := route.Loader(gctx, deps.Backend, c.Params)
					data = resp
					return err
				})
			}

			decision = auth.Allow
			if route.Private {
				decision = auth.Decide(visitor.Session.State())
			}

			if decision != auth.Allow {
				cancel()
			}

			return g.Wait()
		})

		deps.record(route.Name, decision.String())

		switch decision {
		case auth.Wait:
			renderLoading(c, visitor)
			return
		case auth.Login:
			c.Redirect(http.StatusFound, auth.LoginURL(c.Request.URL.RequestURI()))
			return
		}

		if err != nil {
			errors.Page(c, "failed to load "+route.Name, err)
			return
		}

		route.Page(c, &Request{
			Visitor: visitor,
			State:   visitor.Session.State(),
			Data:    data,
			Deps:    deps,
		})
	}
}

func (d *Deps) record(route, outcome string) {
	if d.Recorder != nil {
		d.Recorder.RecordPage(route, outcome)
	}
}

func (d *Deps) recordAuth(op string, err error) {
	if d.Recorder != nil {
		d.Recorder.RecordAuthOperation(op, err)
	}
}
