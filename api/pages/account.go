package pages

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"codeberg.org/newsdesk/web/internal/auth"
	"codeberg.org/newsdesk/web/internal/errors"
	"codeberg.org/newsdesk/web/internal/identity"
	"codeberg.org/newsdesk/web/internal/logger"
)

const (
	defaultLoginRateLimit = "10-M"

	noticeUnverified   = "Your email is not verified. Please verify your email address."
	noticeVerifySent   = "Please verify your email address before login."
	errTermsNotChecked = "Please accept the terms and conditions."
)

func registerAccountActions(router *gin.RouterGroup, deps *Deps) {
	limit := loginLimiter(deps.LoginRateLimit)

	router.POST("/login", limit, loginSubmit(deps))
	router.POST("/register", limit, registerSubmit(deps))
	router.POST("/logout", logoutSubmit(deps))
	router.POST("/verify-email", limit, verifyEmailSubmit(deps))
}

// per client IP limit on credential submissions
func loginLimiter(formatted string) gin.HandlerFunc {
	if formatted == "" {
		formatted = defaultLoginRateLimit
	}

	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		logger.ErrorErr(err, "invalid login rate limit, using default", "rate", formatted)
		rate, _ = limiter.NewRateFromFormatted(defaultLoginRateLimit)
	}

	instance := limiter.New(memory.NewStore(), rate)

	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		errors.TooManyRequests(c, "too many attempts, try again later")
	}))
}

func loginPage(c *gin.Context, req *Request) {
	c.HTML(http.StatusOK, "login", formPage{
		Frame: frame(c, "Login", req.State, req.Deps),
		From:  auth.SafeRedirect(c.Query("from")),
	})
}

func registerPage(c *gin.Context, req *Request) {
	c.HTML(http.StatusOK, "register", formPage{
		Frame: frame(c, "Register", req.State, req.Deps),
	})
}

// signs in with email and password and returns to the page the guard sent the
// visitor away from. Unverified accounts stay on the form with a notice.
func loginSubmit(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitor, ok := auth.GetVisitor(c)
		if !ok {
			errors.InternalError(c, "visitor missing", nil)
			return
		}

		email := strings.TrimSpace(c.PostForm("email"))
		password := c.PostForm("password")
		from := auth.SafeRedirect(c.PostForm("from"))

		cred, err := visitor.Session.SignIn(c.Request.Context(), email, password)
		deps.recordAuth("sign_in", err)

		// the form is usable again whatever the result
		visitor.Session.SetLoading(false)

		page := formPage{From: from, Email: email}

		if err != nil {
			logger.ErrorErr(err, "sign in failed", "visitor_id", visitor.ID)
			page.Error = errors.Message(err)
			page.Frame = frame(c, "Login", visitor.Session.State(), deps)
			c.HTML(errors.Status(err), "login", page)
			return
		}

		auth.Persist(c, deps.Store)

		if !cred.User.EmailVerified {
			page.Notice = noticeUnverified
			page.Frame = frame(c, "Login", visitor.Session.State(), deps)
			c.HTML(http.StatusOK, "login", page)
			return
		}

		c.Redirect(http.StatusFound, from)
	}
}

// creates the account, then sets its profile and sends the verification mail.
// Failures of the two follow-up calls are only logged.
func registerSubmit(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitor, ok := auth.GetVisitor(c)
		if !ok {
			errors.InternalError(c, "visitor missing", nil)
			return
		}

		ctx := c.Request.Context()
		page := formPage{
			Email:   strings.TrimSpace(c.PostForm("email")),
			Name:    strings.TrimSpace(c.PostForm("name")),
			Photo:   strings.TrimSpace(c.PostForm("photoURL")),
			Checked: c.PostForm("terms") != "",
		}

		if !page.Checked {
			page.Error = errTermsNotChecked
			page.Frame = frame(c, "Register", visitor.Session.State(), deps)
			c.HTML(http.StatusBadRequest, "register", page)
			return
		}

		_, err := visitor.Session.CreateUser(ctx, page.Email, c.PostForm("password"))
		deps.recordAuth("create_user", err)

		if err != nil {
			logger.ErrorErr(err, "create user failed", "visitor_id", visitor.ID)
			visitor.Session.SetLoading(false)
			page.Error = errors.Message(err)
			page.Frame = frame(c, "Register", visitor.Session.State(), deps)
			c.HTML(errors.Status(err), "register", page)
			return
		}

		patch := identity.ProfilePatch{DisplayName: &page.Name, PhotoURL: &page.Photo}
		err = visitor.Session.UpdateUserProfile(ctx, patch)
		deps.recordAuth("update_profile", err)
		if err != nil {
			logger.ErrorErr(err, "failed to set profile after sign up", "visitor_id", visitor.ID)
		}

		err = visitor.Session.VerifyEmail(ctx)
		deps.recordAuth("send_verification", err)
		if err != nil {
			logger.ErrorErr(err, "failed to send verification email", "visitor_id", visitor.ID)
		}

		auth.Persist(c, deps.Store)

		c.HTML(http.StatusOK, "register", formPage{
			Frame:  frame(c, "Register", visitor.Session.State(), deps),
			Notice: noticeVerifySent,
		})
	}
}

func logoutSubmit(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitor, ok := auth.GetVisitor(c)
		if !ok {
			errors.InternalError(c, "visitor missing", nil)
			return
		}

		err := visitor.Session.LogOut(c.Request.Context())
		deps.recordAuth("sign_out", err)
		if err != nil {
			logger.ErrorErr(err, "sign out failed", "visitor_id", visitor.ID)
		}

		visitor.Profile.Reset()
		auth.Persist(c, deps.Store)

		c.Redirect(http.StatusFound, "/")
	}
}

// re-sends the verification mail to the account that signed in unverified
func verifyEmailSubmit(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitor, ok := auth.GetVisitor(c)
		if !ok {
			errors.InternalError(c, "visitor missing", nil)
			return
		}

		page := formPage{From: auth.SafeRedirect(c.PostForm("from"))}

		err := visitor.Session.VerifyEmail(c.Request.Context())
		deps.recordAuth("send_verification", err)

		if err != nil {
			logger.ErrorErr(err, "failed to resend verification email", "visitor_id", visitor.ID)
			page.Error = errors.Message(err)
		} else {
			page.Notice = noticeVerifySent
		}

		page.Frame = frame(c, "Login", visitor.Session.State(), deps)
		c.HTML(http.StatusOK, "login", page)
	}
}
