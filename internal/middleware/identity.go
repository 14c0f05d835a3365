package middleware

// identity.go holds the context keys JWTAuth populates and small accessors
// shared by handlers and the other middleware.

import "github.com/labstack/echo/v4"

const (
	ctxUserID = "user_id"
	ctxRole   = "role"

	// SessionCookie carries the access token for browser clients.
	SessionCookie = "session"
)

// UserID returns the authenticated user's id, or "" when unauthenticated.
func UserID(c echo.Context) string {
	s, _ := c.Get(ctxUserID).(string)
	return s
}

// Role returns the authenticated user's role, or "".
func Role(c echo.Context) string {
	s, _ := c.Get(ctxRole).(string)
	return s
}

// currentUserID is UserID with a placeholder for anonymous callers, used in
// rate-limit keys.
func currentUserID(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}
