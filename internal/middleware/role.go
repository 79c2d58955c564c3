package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sidago/crm-api/internal/model"
	"github.com/sidago/crm-api/internal/service"
)

// RequireRole aborts with 403 unless the authenticated user holds role. It
// must run after Authenticate.
func RequireRole(role model.RoleName) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			if !u.HasRole(role) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": service.ErrForbidden.Error()})
			}
			return next(c)
		}
	}
}
