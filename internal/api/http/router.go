package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kopaska88/pengaduan-jokerbola/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Metrics *handlers.MetricsHandler
}

// RegisterRoutes wires the ops surface routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Snapshot)
}
