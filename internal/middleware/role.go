package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Diyorbek0204/dern-support/internal/model"
)

// RequireRole aborts with 403 unless the role claim stored by JWTAuth is
// one of roles. It must be mounted after JWTAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !allowed[Role(c)] {
				return c.JSON(http.StatusForbidden, echo.Map{"detail": "Permission denied"})
			}
			return next(c)
		}
	}
}
