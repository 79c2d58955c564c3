package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/model"
)

// LookupLister reads one reference table.
type LookupLister interface {
	List(ctx context.Context, t model.LookupTable) ([]model.Lookup, error)
}

// LookupHandler serves the reference tables as [{id, label}].
type LookupHandler struct {
	lookups LookupLister
	log     *zap.Logger
}

// NewLookupHandler returns a LookupHandler backed by lookups.
func NewLookupHandler(lookups LookupLister, log *zap.Logger) *LookupHandler {
	return &LookupHandler{lookups: lookups, log: log}
}

func (h *LookupHandler) Timezones(c echo.Context) error    { return h.list(c, model.TimezoneTable) }
func (h *LookupHandler) LeadTypes(c echo.Context) error    { return h.list(c, model.LeadTypeTable) }
func (h *LookupHandler) ContactTypes(c echo.Context) error { return h.list(c, model.ContactTypeTable) }

func (h *LookupHandler) list(c echo.Context, t model.LookupTable) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	rows, err := h.lookups.List(ctx, t)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]lookupResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, lookupResponse{ID: r.ID, Label: r.Label})
	}
	return c.JSON(http.StatusOK, out)
}
