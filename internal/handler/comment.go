package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/middleware"
	"github.com/sidago/crm-api/internal/model"
	"github.com/sidago/crm-api/internal/service"
)

// CommentAPI is the comment service as seen by CommentHandler.
type CommentAPI interface {
	Create(ctx context.Context, companyID uint64, message string, actor *model.User) (model.CompanyComment, error)
	ListByCompany(ctx context.Context, companyID uint64) ([]model.CompanyComment, error)
	ListByCompanyName(ctx context.Context, name string) ([]model.CompanyComment, error)
	Get(ctx context.Context, id uint64) (model.CompanyComment, error)
	Update(ctx context.Context, id uint64, message string, actor *model.User) (model.CompanyComment, error)
	Delete(ctx context.Context, id uint64, actor *model.User) error
}

// CommentHandler serves company comments.
type CommentHandler struct {
	comments CommentAPI
	log      *zap.Logger
}

// NewCommentHandler returns a CommentHandler backed by comments.
func NewCommentHandler(comments CommentAPI, log *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: log}
}

type commentReq struct {
	Message string `json:"message"`
}

// Create handles POST /api/company/:id/comments.
func (h *CommentHandler) Create(c echo.Context) error {
	companyID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	actor, _ := middleware.CurrentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	cm, err := h.comments.Create(ctx, companyID, req.Message, actor)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toCommentResponse(cm))
}

// ListByCompany handles GET /api/company/:id/comments.
func (h *CommentHandler) ListByCompany(c echo.Context) error {
	companyID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.comments.ListByCompany(ctx, companyID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toCommentResponses(list))
}

// ListByCompanyName handles GET /api/company/by-name/:name/comments.
func (h *CommentHandler) ListByCompanyName(c echo.Context) error {
	// echo routes on RawPath when the request carries one, leaving params encoded
	name := c.Param("name")
	if c.Request().URL.RawPath != "" {
		var err error
		if name, err = url.PathUnescape(name); err != nil {
			return badRequest(c, "invalid company name")
		}
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.comments.ListByCompanyName(ctx, name)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toCommentResponses(list))
}

// Get handles GET /api/comments/:id.
func (h *CommentHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cm, err := h.comments.Get(ctx, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toCommentResponse(cm))
}

// Update handles PUT /api/comments/:id. Only the author may edit.
func (h *CommentHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return respondError(c, h.log, service.ErrInvalidOrExpiredToken)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cm, err := h.comments.Update(ctx, id, req.Message, actor)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toCommentResponse(cm))
}

// Delete handles DELETE /api/comments/:id. Only the author may delete.
func (h *CommentHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return respondError(c, h.log, service.ErrInvalidOrExpiredToken)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.comments.Delete(ctx, id, actor); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted successfully"})
}
