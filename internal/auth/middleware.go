package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"codeberg.org/newsdesk/web/internal/identity"
	"codeberg.org/newsdesk/web/internal/logger"
	"codeberg.org/newsdesk/web/internal/session"
)

// resolves the visitor behind the request cookie, creating one when the cookie is
// missing or its visitor was swept. A swept visitor comes back through the refresh
// token stored alongside its id.
func VisitorMiddleware(store sessions.Store, manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := store.Get(c.Request, CookieName)
		if err != nil {
			// tampered or rotated-secret cookie, start afresh
			logger.Debug("discarding unreadable visitor cookie", "error", err)
		}

		id, _ := cookie.Values[keyVisitorID].(string)
		visitor, ok := manager.Get(id)

		if !ok {
			token, _ := cookie.Values[keyRefreshToken].(string)
			visitor = manager.Create(token)
			cookie.Values[keyVisitorID] = visitor.ID

			if err := cookie.Save(c.Request, c.Writer); err != nil {
				logger.ErrorErr(err, "failed to save visitor cookie", "visitor_id", visitor.ID)
			}
		}

		visitor.Touch()
		c.Set(ContextVisitor, visitor)
		c.Set(ContextVisitorID, visitor.ID)

		c.Next()
	}
}

// extracts the visitor set by VisitorMiddleware
func GetVisitor(c *gin.Context) (*session.Visitor, bool) {
	v, exists := c.Get(ContextVisitor)
	if !exists {
		return nil, false
	}

	visitor, ok := v.(*session.Visitor)
	return visitor, ok
}

// writes the visitor's current refresh token to its cookie. Must run before the
// response body, typically right before a redirect.
func Persist(c *gin.Context, store sessions.Store) {
	visitor, ok := GetVisitor(c)
	if !ok {
		return
	}

	cookie, _ := store.Get(c.Request, CookieName)
	cookie.Values[keyVisitorID] = visitor.ID

	if token := visitor.Identity.RefreshToken(); token != "" {
		cookie.Values[keyRefreshToken] = token
	} else {
		delete(cookie.Values, keyRefreshToken)
	}

	if err := cookie.Save(c.Request, c.Writer); err != nil {
		logger.ErrorErr(err, "failed to persist visitor session", "visitor_id", visitor.ID)
	}
}

// remembers where to send the visitor after a federated sign-in
func SetReturnTo(c *gin.Context, store sessions.Store, from string) {
	cookie, _ := store.Get(c.Request, CookieName)
	cookie.Values[keyReturnTo] = SafeRedirect(from)

	if err := cookie.Save(c.Request, c.Writer); err != nil {
		logger.ErrorErr(err, "failed to save return path")
	}
}

// returns and clears the path stored by SetReturnTo; the caller saves via Persist
func TakeReturnTo(c *gin.Context, store sessions.Store) string {
	cookie, _ := store.Get(c.Request, CookieName)
	from, _ := cookie.Values[keyReturnTo].(string)
	delete(cookie.Values, keyReturnTo)

	return SafeRedirect(from)
}

// outcome of the access guard for one session state
type Decision int

const (
	Allow Decision = iota
	Wait
	Login
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "rendered"
	case Wait:
		return "loading"
	default:
		return "redirected"
	}
}

// the guard: loading sessions wait, resolved sessions need a user
func Decide(state session.State) Decision {
	switch {
	case state.Loading:
		return Wait
	case state.User == nil:
		return Login
	default:
		return Allow
	}
}

// lets the request through only once the session resolved to a user. While the
// session is still loading, onLoading answers instead; without a user the visitor
// is sent to the login page with the requested path in "from".
func RequireUser(onLoading gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitor, ok := GetVisitor(c)
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		state := visitor.Session.State()

		switch Decide(state) {
		case Wait:
			onLoading(c)
			c.Abort()
		case Login:
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
		default:
			c.Set(ContextUser, state.User)
			c.Next()
		}
	}
}

// extracts the user set by RequireUser
func GetUser(c *gin.Context) (*identity.User, bool) {
	u, exists := c.Get(ContextUser)
	if !exists {
		return nil, false
	}

	user, ok := u.(*identity.User)
	return user, ok
}

func LoginURL(from string) string {
	return "/login?from=" + url.QueryEscape(from)
}

// keeps redirects on this site
func SafeRedirect(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") ||
		strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return "/"
	}

	return from
}
