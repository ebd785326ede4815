package pages

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/newsdesk/web/internal/render"
	"codeberg.org/newsdesk/web/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// parses the page templates; install them with gin's SetHTMLTemplate
func Templates(r *render.Renderer) (*template.Template, error) {
	t, err := template.New("pages").Funcs(r.Funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	return t, nil
}

func frame(c *gin.Context, title string, state session.State, deps *Deps) Frame {
	f := Frame{
		Title:   title,
		User:    state.User,
		Loading: state.Loading,
		Path:    c.Request.URL.Path,
	}

	if deps != nil {
		f.Providers = deps.Providers
	}

	return f
}

// neutral placeholder shown while the session is still resolving. The page
// reloads itself once the session stream reports a resolved state.
func renderLoading(c *gin.Context, visitor *session.Visitor) {
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "loading", loadingPage{
		Frame:  frame(c, "Loading", visitor.Session.State(), nil),
		Target: c.Request.URL.RequestURI(),
	})
}
