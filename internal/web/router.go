package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anurag9179/smartcashbook.client/internal/permissions"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Handlers *Handlers
	Guard    *Guard
}

// RegisterRoutes wires the front-end routes. Everything below the guarded
// group re-evaluates the session on every request.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/healthz", cfg.Handlers.Health)

	app.Get("/login", cfg.Handlers.LoginPage)
	app.Post("/login", cfg.Handlers.Login)

	protected := app.Group("", cfg.Guard.RequireSession)
	protected.Post("/logout", cfg.Handlers.Logout)
	protected.Get("/session", cfg.Handlers.Session)
	protected.Post("/session/refresh", cfg.Handlers.RefreshSession)

	protected.Get("/dashboard", cfg.Handlers.Dashboard)
	protected.Get("/transactions", cfg.Guard.RequireCapability(permissions.CanRead), cfg.Handlers.Transactions)
	protected.Get("/users", cfg.Guard.RequireCapability(permissions.CanManageUsers), cfg.Handlers.Users)
}
