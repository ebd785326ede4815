package errors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/newsdesk/web/internal/logger"
)

// Error Handling Guidelines:
//
// For page and REST handlers:
//   - Use errors.Page() for failures that end the request on an HTML route
//   - Use errors.InternalError(), errors.BadRequest(), etc. on JSON routes
//     These functions handle both logging and HTTP response automatically
//   - Use logger.ErrorErr() only for non-critical errors where processing continues,
//     e.g. a failed post update that leaves the page state untouched
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For backend/identity/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Let the caller (handler) decide how to log and respond
//   - Do not log errors in non-handler code (avoid double logging)

// returns a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}

	respond(c, http.StatusUnauthorized, ErrorResponse{
		Error:   CodeUnauthorized,
		Message: message,
	})
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	respond(c, http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	// add details if error provided
	if err != nil {
		response.Details = classifyError(err).sanitized
	}

	respond(c, http.StatusBadRequest, response)
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	respond(c, http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	// log full error server-side with context
	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"visitor_id", c.GetString("visitor_id"),
	)

	// return sanitized error to client
	respond(c, http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: classifyError(err).sanitized,
	})
}

// logs err and answers with the status its category maps to
func Page(c *gin.Context, message string, err error) {
	info := classifyError(err)

	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"category", info.category,
		"visitor_id", c.GetString("visitor_id"),
	)

	code := CodeServerError
	switch info.category {
	case CategoryNotFound:
		code = CodeNotFound
	case CategoryIdentity:
		code = CodeIdentity
	case CategoryBackend, CategoryNetwork:
		code = CodeUpstream
	}

	respond(c, info.status, ErrorResponse{
		Error:   code,
		Message: message,
		Details: info.sanitized,
	})
}

// renders the "error" template for browsers, JSON for everything else
func respond(c *gin.Context, status int, resp ErrorResponse) {
	if wantsHTML(c) {
		c.HTML(status, "error", PageData{
			Status:  status,
			Code:    resp.Error,
			Message: resp.Message,
			Details: resp.Details,
		})
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(status, resp)
}

func wantsHTML(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return false
	}

	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
