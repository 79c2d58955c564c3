package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/middleware"
	"github.com/sidago/crm-api/internal/model"
	"github.com/sidago/crm-api/internal/service"
)

// CompanyAPI is the company service as seen by CompanyHandler.
type CompanyAPI interface {
	List(ctx context.Context) ([]model.Company, error)
	Get(ctx context.Context, id uint64) (model.Company, error)
	History(ctx context.Context, id uint64) ([]model.CompanyHistory, error)
	Create(ctx context.Context, in service.CompanyInput, actor *model.User) (model.Company, error)
	Update(ctx context.Context, id uint64, in service.CompanyInput, actor *model.User) (model.Company, error)
	Delete(ctx context.Context, id uint64, actor *model.User) error
}

// CompanyHandler serves the admin company endpoints.
type CompanyHandler struct {
	companies CompanyAPI
	log       *zap.Logger
}

// NewCompanyHandler returns a CompanyHandler backed by companies.
func NewCompanyHandler(companies CompanyAPI, log *zap.Logger) *CompanyHandler {
	return &CompanyHandler{companies: companies, log: log}
}

// companyReq is the body of create and update. Update replaces every field,
// so omitted optional fields are cleared.
type companyReq struct {
	Name       string  `json:"name"`
	Symbol     *string `json:"symbol"`
	Country    *string `json:"country"`
	State      *string `json:"state"`
	City       *string `json:"city"`
	Zip        *string `json:"zip"`
	Website    *string `json:"website"`
	TimezoneID *uint64 `json:"timezone_id"`
}

func (r companyReq) input() service.CompanyInput {
	return service.CompanyInput{
		Name:       r.Name,
		Symbol:     r.Symbol,
		Country:    r.Country,
		State:      r.State,
		City:       r.City,
		Zip:        r.Zip,
		Website:    r.Website,
		TimezoneID: r.TimezoneID,
	}
}

// List handles GET /api/companies.
func (h *CompanyHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	companies, err := h.companies.List(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]companyResponse, 0, len(companies))
	for _, co := range companies {
		out = append(out, toCompanyResponse(co))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/company/:id.
func (h *CompanyHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	co, err := h.companies.Get(ctx, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toCompanyResponse(co))
}

// History handles GET /api/company/:id/history.
func (h *CompanyHandler) History(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	rows, err := h.companies.History(ctx, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]historyResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, historyResponse{ID: r.ID, CompanyID: r.CompanyID, UserID: r.UserID, History: r.History, ChangedAt: r.ChangedAt})
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /api/company.
func (h *CompanyHandler) Create(c echo.Context) error {
	var req companyReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	actor, _ := middleware.CurrentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	co, err := h.companies.Create(ctx, req.input(), actor)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toCompanyResponse(co))
}

// Update handles PUT /api/company/:id.
func (h *CompanyHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req companyReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	actor, _ := middleware.CurrentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	co, err := h.companies.Update(ctx, id, req.input(), actor)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toCompanyResponse(co))
}

// Delete handles DELETE /api/company/:id.
func (h *CompanyHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	actor, _ := middleware.CurrentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.companies.Delete(ctx, id, actor); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Company deleted successfully"})
}
