package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/model"
	"github.com/sidago/crm-api/internal/service"
)

// TokenValidator resolves an access token to its user.
type TokenValidator interface {
	Validate(ctx context.Context, accessToken string) (model.User, error)
}

// Authenticate requires an "Authorization: Bearer <token>" header whose token
// is signed, unexpired and still present in the session ledger. The user and
// the raw token are stored on the context for CurrentUser and CurrentToken.
func Authenticate(v TokenValidator, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			u, err := v.Validate(c.Request().Context(), raw)
			if err != nil {
				if isAuthError(err) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
				}
				log.Error("token validation failed", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
			}
			c.Set(userKey, &u)
			c.Set(tokenKey, raw)
			return next(c)
		}
	}
}

func isAuthError(err error) bool {
	return errors.Is(err, service.ErrInvalidOrExpiredToken) ||
		errors.Is(err, service.ErrTokenRevoked) ||
		errors.Is(err, service.ErrUserNotFound)
}
