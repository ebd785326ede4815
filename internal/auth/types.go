package auth

const (
	// signed cookie holding the visitor id and the provider refresh token
	CookieName = "newsdesk"

	cookieMaxAge = 30 * 24 * 60 * 60 // 30 days

	keyVisitorID    = "visitor_id"
	keyRefreshToken = "refresh_token"
	keyReturnTo     = "return_to"

	// gin context keys
	ContextVisitor   = "visitor"
	ContextVisitorID = "visitor_id"
	ContextUser      = "user"
)
