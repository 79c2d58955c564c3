package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sidago/crm-api/internal/model"
)

// Context keys set by Authenticate.
const (
	userKey  = "user"
	tokenKey = "access_token"
)

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(userKey).(*model.User)
	return u, ok && u != nil
}

// CurrentToken returns the raw bearer token of the request, or "".
func CurrentToken(c echo.Context) string {
	t, _ := c.Get(tokenKey).(string)
	return t
}

// userID identifies the caller for rate limiting; "anon" when unauthenticated.
func userID(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return strconv.FormatUint(u.ID, 10)
	}
	return "anon"
}
