package errors

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"codeberg.org/newsdesk/web/internal/backend"
	"codeberg.org/newsdesk/web/internal/identity"
)

// standard error codes
const (
	CodeUnauthorized    = "unauthorized"
	CodeNotFound        = "not_found"
	CodeServerError     = "server_error"
	CodeBadRequest      = "bad_request"
	CodeTooManyRequests = "too_many_requests"
	CodeUpstream        = "upstream_error"
	CodeIdentity        = "identity_error"
)

// error categories for classification
const (
	CategoryBackend  = "backend"
	CategoryIdentity = "identity"
	CategoryNetwork  = "network"
	CategoryNotFound = "not_found"
	CategoryTimeout  = "timeout"
	CategoryUnknown  = "unknown"
)

// analyzes an error and returns its category, sanitized message and the status
// a handler should answer with
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, "", http.StatusInternalServerError}
	}

	isProduction := os.Getenv("ENVIRONMENT") == "production"

	// backend answered with a non-2xx status
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Status == http.StatusNotFound {
			return ErrorInfo{
				category:  CategoryNotFound,
				sanitized: ternary(isProduction, "resource not found", err.Error()),
				status:    http.StatusNotFound,
			}
		}

		return ErrorInfo{
			category:  CategoryBackend,
			sanitized: ternary(isProduction, "backend request failed", err.Error()),
			status:    http.StatusBadGateway,
		}
	}

	// identity provider message codes are safe to show as they are
	var idErr *identity.Error
	if errors.As(err, &idErr) {
		return ErrorInfo{
			category:  CategoryIdentity,
			sanitized: idErr.Message,
			status:    ternary(idErr.Status >= 500, http.StatusBadGateway, http.StatusBadRequest),
		}
	}

	if errors.Is(err, identity.ErrNoCurrentUser) {
		return ErrorInfo{
			category:  CategoryIdentity,
			sanitized: "no signed in user",
			status:    http.StatusUnauthorized,
		}
	}

	// context errors
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{
			category:  CategoryTimeout,
			sanitized: ternary(isProduction, "request timed out", err.Error()),
			status:    http.StatusGatewayTimeout,
		}
	}

	if errors.Is(err, context.Canceled) {
		return ErrorInfo{
			category:  CategoryTimeout,
			sanitized: ternary(isProduction, "request canceled", err.Error()),
			status:    http.StatusServiceUnavailable,
		}
	}

	// fallback to string matching for unknown error types
	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dial") {
		return ErrorInfo{
			category:  CategoryNetwork,
			sanitized: ternary(isProduction, "connection error occurred", err.Error()),
			status:    http.StatusBadGateway,
		}
	}

	if strings.Contains(errMsg, "not found") {
		return ErrorInfo{
			category:  CategoryNotFound,
			sanitized: ternary(isProduction, "resource not found", err.Error()),
			status:    http.StatusNotFound,
		}
	}

	return ErrorInfo{
		category:  CategoryUnknown,
		sanitized: ternary(isProduction, "an error occurred", err.Error()),
		status:    http.StatusInternalServerError,
	}
}

// ternary helper for cleaner conditional assignment
func ternary[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}

	return falseVal
}

// returns the user-facing text for err
func Message(err error) string {
	return classifyError(err).sanitized
}

// returns the HTTP status a handler should use for err
func Status(err error) int {
	return classifyError(err).status
}
