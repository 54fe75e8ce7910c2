package router // package router registers the HTTP routes of the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/Diyorbek0204/dern-support/internal/handler"
	"github.com/Diyorbek0204/dern-support/internal/middleware"
	"github.com/Diyorbek0204/dern-support/internal/model"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Components *handler.ComponentHandler
	Tickets    *handler.TicketHandler
	Analytics  *handler.AnalyticsHandler
	Setup      *handler.SetupHandler
}

// RegisterPublic mounts the routes that need no access token.
func RegisterPublic(e *echo.Echo, h Handlers, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/check-setup", h.Setup.CheckSetup)

	e.POST("/register", h.Auth.Register)
	e.POST("/login", h.Auth.Login)
	e.POST("/refresh", h.Auth.Refresh)
	e.POST("/logout", h.Auth.Logout)
}

// RegisterProtected mounts the routes behind JWTAuth. The middleware is
// attached per route so that unknown paths still answer 404. Role checks
// are repeated in the services; the middleware rejects early.
func RegisterProtected(e *echo.Echo, h Handlers, jwtSecret string) {
	jwt := middleware.JWTAuth(jwtSecret)
	anyone := []echo.MiddlewareFunc{jwt}
	manager := []echo.MiddlewareFunc{jwt, middleware.RequireRole(model.RoleManager)}
	master := []echo.MiddlewareFunc{jwt, middleware.RequireRole(model.RoleMaster)}
	staff := []echo.MiddlewareFunc{jwt, middleware.RequireRole(model.RoleManager, model.RoleMaster)}

	e.GET("/me", h.Users.Me, anyone...)
	e.PATCH("/user", h.Users.UpdateMe, anyone...)

	e.GET("/users", h.Users.List, manager...)
	e.POST("/users", h.Users.Create, manager...)
	e.PATCH("/users/:id", h.Users.Update, manager...)
	e.DELETE("/users/:id", h.Users.Delete, manager...)

	e.GET("/components", h.Components.List, anyone...)
	e.GET("/components/:id", h.Components.Get, anyone...)
	e.POST("/components", h.Components.Create, manager...)
	e.PATCH("/components/:id", h.Components.Update, manager...)
	e.DELETE("/components/:id", h.Components.Delete, manager...)

	e.GET("/support_request", h.Tickets.List, anyone...)
	e.POST("/support_request", h.Tickets.Submit, anyone...)
	e.PUT("/support_request/status/:id", h.Tickets.SetStatus, staff...)
	e.POST("/support_request/approve/:id", h.Tickets.Approve, anyone...)
	e.POST("/support_request/assign_master/:id", h.Tickets.AssignMaster, manager...)
	e.PATCH("/support_request/master/:id", h.Tickets.ProposeEstimate, master...)

	e.GET("/analytics", h.Analytics.Get, manager...)
}
