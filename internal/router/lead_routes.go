package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sidago/crm-api/internal/handler"
)

// RegisterLeads registers lead endpoints. Creation and export are admin
// only; reads and updates are open to any authenticated user.
func RegisterLeads(api *echo.Group, l *handler.LeadHandler, g Guards) {
	api.POST("/lead", l.Create, g.admin()...)
	api.GET("/leads/export", l.Export, g.admin()...)

	api.GET("/leads", l.List, g.Authn)
	api.GET("/lead/:id", l.Get, g.Authn)
	api.GET("/lead/agent/:agent_id", l.ListByAgent, g.Authn)
	api.PUT("/lead/:id", l.Update, g.Authn)
}
