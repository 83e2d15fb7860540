package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/talent-gateway/internal/api/http/handlers"
	"github.com/spec-kit/talent-gateway/internal/auth"
	"github.com/spec-kit/talent-gateway/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Proxy   *handlers.ProxyHandler
	Pages   *handlers.PagesHandler
	Session *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes. Session resolution runs on every request
// below the health probes; role checks are declared per namespace and the
// page guard owns the three browsing prefixes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Use(cfg.Session.Handle)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.Auth.Me)

	api := app.Group("/api")

	admin := api.Group("/admin", auth.RequireAdmin())
	admin.All("/*", cfg.Proxy.PassThrough("Admin request failed"))

	employer := api.Group("/employer", auth.RequireRole(domain.RoleEmployer))
	employer.All("/*", cfg.Proxy.PassThrough("Employer request failed"))

	api.Get("/notifications", auth.RequireAuth(), cfg.Proxy.PassThrough("Unable to fetch notifications"))
	api.Patch("/notifications/:id/read", auth.RequireAuth(), cfg.Proxy.Forward(func(c *fiber.Ctx) string {
		return "/api/notifications/" + c.Params("id") + "/read"
	}, "Unable to update notification"))

	api.Get("/proxy/profile", auth.RequireAuth(), cfg.Proxy.Fixed("/api/profile", "Unable to fetch profile"))
	api.Patch("/proxy/profile", auth.RequireAuth(), cfg.Proxy.Fixed("/api/profile", "Unable to update profile"))

	app.Use("/candidate", cfg.Pages.Handle())
	app.Use("/employer", cfg.Pages.Handle())
	app.Use("/admin", cfg.Pages.Handle())
}
