package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-marketplace/internal/api/http/handlers"
	"github.com/spec-kit/tour-marketplace/internal/auth"
	"github.com/spec-kit/tour-marketplace/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Metrics        *handlers.MetricsHandler
	Auth           *handlers.AuthHandler
	Tours          *handlers.ToursHandler
	AdminTours     *handlers.AdminToursHandler
	AdminUsers     *handlers.AdminUsersHandler
	Catalog        *handlers.CatalogHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Role guards run after token
// verification; super_admin passes every admin guard.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authn := cfg.AuthMiddleware.Handle
	admin := auth.RequireRole(domain.RoleAdmin)
	supplier := auth.RequireRole(domain.RoleSupplier)

	app.Get("/metrics", authn, admin, cfg.Metrics.Get)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/select-role", authn, auth.RequireAuthenticated(), cfg.Auth.SelectRole)
	authGroup.Post("/logout", authn, auth.RequireAuthenticated(), cfg.Auth.Logout)
	authGroup.Get("/me", authn, auth.RequireAuthenticated(), cfg.Auth.Me)

	tours := app.Group("/tours", authn)
	tours.Post("/", supplier, cfg.Tours.Create)
	tours.Get("/", supplier, cfg.Tours.List)
	tours.Get("/:id", supplier, cfg.Tours.Get)
	tours.Put("/:id", supplier, cfg.Tours.Update)
	tours.Put("/:id/status", auth.RequireRole(domain.RoleSupplier, domain.RoleAdmin), cfg.Tours.UpdateStatus)
	tours.Delete("/:id", auth.RequireRole(domain.RoleSupplier, domain.RoleAdmin), cfg.Tours.Delete)
	tours.Get("/:id/history", auth.RequireRole(domain.RoleSupplier, domain.RoleAdmin), cfg.Tours.History)

	adminGroup := app.Group("/admin", authn, admin)
	adminGroup.Get("/tours", cfg.AdminTours.List)
	adminGroup.Post("/tours/batch-approve", cfg.AdminTours.BatchApprove)
	adminGroup.Get("/audit/tours/:id", auth.RequireRole(domain.RoleSuperAdmin), cfg.AdminTours.Audit)
	adminGroup.Post("/users", cfg.AdminUsers.Create)
	adminGroup.Get("/users", cfg.AdminUsers.List)
	adminGroup.Put("/users/:id/roles", cfg.AdminUsers.UpdateRoles)
	adminGroup.Delete("/users/:id", auth.RequireRole(domain.RoleSuperAdmin), cfg.AdminUsers.Delete)

	catalog := app.Group("/catalog", authn, auth.RequireRole(domain.RoleAgency, domain.RoleAdmin))
	catalog.Get("/", cfg.Catalog.List)
	catalog.Get("/:id", cfg.Catalog.Get)
}
