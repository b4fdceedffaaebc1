package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fleetwatch/monitor-service/internal/api/http/handlers"
	"github.com/fleetwatch/monitor-service/internal/auth"
	"github.com/fleetwatch/monitor-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Machines       *handlers.MachinesHandler
	APIKeys        *handlers.APIKeysHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Auth.Register)
	authGroup.Post("/users/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)

	authGroup.Post("/machines/register", cfg.Machines.Register)

	apikeys := authGroup.Group("/apikeys", cfg.AuthMiddleware.RequireLevel(domain.LevelAdmin))
	apikeys.Post("", cfg.APIKeys.Create)
	apikeys.Delete("", cfg.APIKeys.Revoke)

	// Report ingestion runs in lax mode: agents without credentials are
	// admitted as anonymous limited principals.
	reports := app.Group("/api/reports", cfg.AuthMiddleware.Handle(false))
	reports.Post("/usage", cfg.Reports.SubmitUsage)
}
