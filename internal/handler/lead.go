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

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeadAPI is the lead service as seen by LeadHandler.
type LeadAPI interface {
	List(ctx context.Context) ([]model.Lead, error)
	Get(ctx context.Context, id uint64) (model.Lead, error)
	ListByAgent(ctx context.Context, agentID uint64) ([]model.Lead, error)
	Create(ctx context.Context, in service.LeadInput, actor *model.User) (model.Lead, error)
	Update(ctx context.Context, id uint64, in service.LeadUpdate, actor *model.User) (model.Lead, error)
	Export(ctx context.Context) ([]byte, error)
}

// LeadHandler serves leads and the workbook export.
type LeadHandler struct {
	leads LeadAPI
	log   *zap.Logger
}

// NewLeadHandler returns a LeadHandler backed by leads.
func NewLeadHandler(leads LeadAPI, log *zap.Logger) *LeadHandler {
	return &LeadHandler{leads: leads, log: log}
}

// leadCreateReq accepts company (a name) instead of company_id only when
// implicit company creation is enabled.
type leadCreateReq struct {
	CompanyID      *uint64 `json:"company_id"`
	Company        string  `json:"company"`
	AgentID        *uint64 `json:"agent_id"`
	ContactTypeID  uint64  `json:"contact_type_id"`
	LeadTypeID     *uint64 `json:"lead_type_id"`
	FullName       string  `json:"full_name"`
	Role           *string `json:"role"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	OthersContacts *string `json:"others_contacts"`
	AssignedTo     *string `json:"assigned_to"`
	FollowUpDate   *string `json:"follow_up_date"`
	DateBecomeHot  *string `json:"date_become_hot"`
}

// leadUpdateReq changes only the fields present in the body.
type leadUpdateReq struct {
	CompanyID      *uint64 `json:"company_id"`
	Company        *string `json:"company"`
	AgentID        *uint64 `json:"agent_id"`
	ContactTypeID  *uint64 `json:"contact_type_id"`
	LeadTypeID     *uint64 `json:"lead_type_id"`
	FullName       *string `json:"full_name"`
	Role           *string `json:"role"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	OthersContacts *string `json:"others_contacts"`
	AssignedTo     *string `json:"assigned_to"`
	FollowUpDate   *string `json:"follow_up_date"`
	DateBecomeHot  *string `json:"date_become_hot"`
}

// List handles GET /api/leads.
func (h *LeadHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	leads, err := h.leads.List(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toLeadResponses(leads))
}

// Get handles GET /api/lead/:id.
func (h *LeadHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	l, err := h.leads.Get(ctx, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toLeadResponse(l))
}

// ListByAgent handles GET /api/lead/agent/:agent_id.
func (h *LeadHandler) ListByAgent(c echo.Context) error {
	agentID, ok := paramID(c, "agent_id")
	if !ok {
		return badRequest(c, "invalid agent_id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	leads, err := h.leads.ListByAgent(ctx, agentID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toLeadResponses(leads))
}

// Create handles POST /api/lead.
func (h *LeadHandler) Create(c echo.Context) error {
	var req leadCreateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	followUp, ok := parseDate(req.FollowUpDate)
	if !ok {
		return badRequest(c, "follow_up_date must be YYYY-MM-DD")
	}
	hot, ok := parseDate(req.DateBecomeHot)
	if !ok {
		return badRequest(c, "date_become_hot must be YYYY-MM-DD")
	}
	in := service.LeadInput{
		CompanyID:      req.CompanyID,
		Company:        req.Company,
		AgentID:        req.AgentID,
		ContactTypeID:  req.ContactTypeID,
		LeadTypeID:     req.LeadTypeID,
		FullName:       req.FullName,
		Role:           req.Role,
		Phone:          req.Phone,
		Email:          req.Email,
		OthersContacts: req.OthersContacts,
		AssignedTo:     req.AssignedTo,
		FollowUpDate:   followUp,
		DateBecomeHot:  hot,
	}
	actor, _ := middleware.CurrentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	l, err := h.leads.Create(ctx, in, actor)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toLeadResponse(l))
}

// Update handles PUT /api/lead/:id.
func (h *LeadHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req leadUpdateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	followUp, ok := parseDate(req.FollowUpDate)
	if !ok {
		return badRequest(c, "follow_up_date must be YYYY-MM-DD")
	}
	hot, ok := parseDate(req.DateBecomeHot)
	if !ok {
		return badRequest(c, "date_become_hot must be YYYY-MM-DD")
	}
	in := service.LeadUpdate{
		CompanyID:      req.CompanyID,
		Company:        req.Company,
		AgentID:        req.AgentID,
		ContactTypeID:  req.ContactTypeID,
		LeadTypeID:     req.LeadTypeID,
		FullName:       req.FullName,
		Role:           req.Role,
		Phone:          req.Phone,
		Email:          req.Email,
		OthersContacts: req.OthersContacts,
		AssignedTo:     req.AssignedTo,
		FollowUpDate:   followUp,
		DateBecomeHot:  hot,
	}
	actor, _ := middleware.CurrentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	l, err := h.leads.Update(ctx, id, in, actor)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toLeadResponse(l))
}

// Export handles GET /api/leads/export.
func (h *LeadHandler) Export(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	data, err := h.leads.Export(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="leads.xlsx"`)
	return c.Blob(http.StatusOK, xlsxMIME, data)
}
