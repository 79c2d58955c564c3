// Package router wires handlers and middleware onto echo routes.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/sidago/crm-api/internal/handler"
	"github.com/sidago/crm-api/internal/middleware"
	"github.com/sidago/crm-api/internal/model"
)

// Handlers bundles every HTTP handler of the API.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Lookups   *handler.LookupHandler
	Companies *handler.CompanyHandler
	Comments  *handler.CommentHandler
	Leads     *handler.LeadHandler
}

// Guards are the middleware applied per route: Authn validates the bearer
// token, Limit throttles the unauthenticated credential endpoints.
type Guards struct {
	Authn echo.MiddlewareFunc
	Limit echo.MiddlewareFunc
}

func (g Guards) admin() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{g.Authn, middleware.RequireRole(model.RoleAdmin)}
}

// RegisterRoutes registers the unauthenticated health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// Register mounts the whole API under /api.
func Register(e *echo.Echo, h Handlers, g Guards) *echo.Group {
	api := e.Group("/api")
	RegisterAuth(api, h.Auth, h.Users, h.Lookups, g)
	RegisterCompanies(api, h.Companies, h.Comments, g)
	RegisterLeads(api, h.Leads, g)
	return api
}

// RegisterAuth registers session endpoints and the admin reference data.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, u *handler.UserHandler, l *handler.LookupHandler, g Guards) {
	api.POST("/login", a.Login, g.Limit)
	api.POST("/refresh", a.Refresh, g.Limit)
	api.POST("/logout", a.Logout, g.Authn)
	api.GET("/me", a.Me, g.Authn)

	api.GET("/agents", u.Agents, g.admin()...)
	api.GET("/timezones", l.Timezones, g.admin()...)
	api.GET("/lead-types", l.LeadTypes, g.admin()...)
	api.GET("/contact-types", l.ContactTypes, g.admin()...)
}
