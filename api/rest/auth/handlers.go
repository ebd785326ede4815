package auth

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"

	"codeberg.org/newsdesk/web/internal/auth"
	"codeberg.org/newsdesk/web/internal/errors"
	"codeberg.org/newsdesk/web/internal/logger"
)

// starts the OAuth flow with the provider, remembering where to return to
func BeginAuthHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(deps.Providers, provider) {
			errors.NotFound(c, "provider")
			return
		}

		auth.SetReturnTo(c, deps.Store, c.Query("from"))

		// set provider in query for gothic
		q := c.Request.URL.Query()
		q.Set("provider", provider)
		c.Request.URL.RawQuery = q.Encode()

		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// completes the OAuth flow and signs the visitor in with the provider credential
func CallbackHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(deps.Providers, provider) {
			errors.NotFound(c, "provider")
			return
		}

		visitor, ok := auth.GetVisitor(c)
		if !ok {
			errors.InternalError(c, "visitor missing", nil)
			return
		}

		q := c.Request.URL.Query()
		q.Set("provider", provider)
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			errors.Page(c, "authentication failed", err)
			return
		}

		cred, ok := auth.CredentialFor(gothUser)
		if !ok {
			errors.BadRequest(c, "unsupported provider", nil)
			return
		}

		_, err = visitor.Session.ProviderLogin(c.Request.Context(), cred)
		deps.record("provider_login", err)

		if err != nil {
			errors.Page(c, "sign in with "+provider+" failed", err)
			return
		}

		from := auth.TakeReturnTo(c, deps.Store)
		auth.Persist(c, deps.Store)

		logger.Info("federated sign in", "provider", provider, "visitor_id", visitor.ID)

		c.Redirect(http.StatusFound, from)
	}
}

func (d *Deps) record(op string, err error) {
	if d.Recorder != nil {
		d.Recorder.RecordAuthOperation(op, err)
	}
}
