package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/middleware"
	"github.com/sidago/crm-api/internal/service"
)

// Authenticator is the session API used by AuthHandler.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (service.AuthResult, error)
	Logout(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (service.AuthResult, error)
}

// AuthHandler serves login, logout, refresh and the current user.
type AuthHandler struct {
	auth Authenticator
	log  *zap.Logger
}

// NewAuthHandler returns an AuthHandler backed by auth.
func NewAuthHandler(auth Authenticator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest(c, "email/password required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toAuthResponse(res))
}

// Logout handles POST /api/logout. The bearer token of the request is
// revoked.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.auth.Logout(ctx, middleware.CurrentToken(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Refresh handles POST /api/refresh.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toAuthResponse(res))
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return respondError(c, h.log, service.ErrInvalidOrExpiredToken)
	}
	return c.JSON(http.StatusOK, toUserSummary(*u))
}

func toAuthResponse(res service.AuthResult) authResponse {
	return authResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         toUserSummary(res.User),
	}
}
