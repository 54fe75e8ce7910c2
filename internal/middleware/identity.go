package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Diyorbek0204/dern-support/internal/utils"
)

// Context keys populated by JWTAuth.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(c echo.Context) string { return ctxString(c, CtxUserID) }

// Email returns the authenticated user's email claim.
func Email(c echo.Context) string { return ctxString(c, CtxEmail) }

// Role returns the role claim of the access token.
func Role(c echo.Context) string { return ctxString(c, CtxRole) }

func ctxString(c echo.Context, key string) string {
	s, _ := c.Get(key).(string)
	return s
}

// rateSubject identifies the caller for rate limiting purposes. The limiter
// is mounted globally, ahead of the per-route JWTAuth, so the bearer token
// is verified here when no claims are stored yet. Missing or invalid tokens
// count as "anon".
func rateSubject(c echo.Context, jwtSecret string) string {
	if id := UserID(c); id != "" {
		return id
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	raw, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || jwtSecret == "" {
		return "anon"
	}
	claims, err := utils.ParseAccessToken(jwtSecret, strings.TrimSpace(raw))
	if err != nil {
		return "anon"
	}
	return claims.Subject
}
