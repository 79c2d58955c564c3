package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sidago/crm-api/internal/handler"
)

// RegisterCompanies registers company management (admin only) and company
// comments (any authenticated user; only the author may edit or delete).
func RegisterCompanies(api *echo.Group, c *handler.CompanyHandler, cm *handler.CommentHandler, g Guards) {
	admin := g.admin()
	api.GET("/companies", c.List, admin...)
	api.POST("/company", c.Create, admin...)
	api.GET("/company/:id", c.Get, admin...)
	api.GET("/company/:id/history", c.History, admin...)
	api.PUT("/company/:id", c.Update, admin...)
	api.DELETE("/company/:id", c.Delete, admin...)

	api.POST("/company/:id/comments", cm.Create, g.Authn)
	api.GET("/company/:id/comments", cm.ListByCompany, g.Authn)
	api.GET("/company/by-name/:name/comments", cm.ListByCompanyName, g.Authn)
	api.GET("/comments/:id", cm.Get, g.Authn)
	api.PUT("/comments/:id", cm.Update, g.Authn)
	api.DELETE("/comments/:id", cm.Delete, g.Authn)
}
