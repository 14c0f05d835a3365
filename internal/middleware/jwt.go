package middleware // middleware contains reusable Echo middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/volunteer-credits/internal/utils"
)

var unauthorized = echo.Map{"message": "Unauthorized"}

// JWTAuth validates the access token and stores its subject and role in the
// context (see UserID and Role).  The token is taken from an
// "Authorization: Bearer" header, or from the session cookie when no header
// is sent.  Any failure answers 401 before the handler runs.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, unauthorized)
			}
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, unauthorized)
			}
			c.Set(ctxUserID, claims.UserID)
			c.Set(ctxRole, claims.Role)
			return next(c)
		}
	}
}

// bearerToken extracts the raw token from the header or the session cookie.
func bearerToken(c echo.Context) string {
	if auth := c.Request().Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
		return ""
	}
	if ck, err := c.Cookie(SessionCookie); err == nil {
		return ck.Value
	}
	return ""
}
