package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/model"
)

// UserLister lists the users holding a role.
type UserLister interface {
	ListByRole(ctx context.Context, role model.RoleName) ([]model.User, error)
}

// UserHandler serves user listings.
type UserHandler struct {
	users UserLister
	log   *zap.Logger
}

// NewUserHandler returns a UserHandler backed by users.
func NewUserHandler(users UserLister, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

// Agents handles GET /api/agents.
func (h *UserHandler) Agents(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.users.ListByRole(ctx, model.RoleAgent)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]userSummary, 0, len(users))
	for _, u := range users {
		out = append(out, toUserSummary(u))
	}
	return c.JSON(http.StatusOK, out)
}
