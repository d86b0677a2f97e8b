package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Complaints     *handlers.ComplaintsHandler
	Workers        *handlers.WorkersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(observability.MetricsHandler()))

	// Requesters interact without worker accounts: creating a complaint and
	// reopening their own resolved complaint are public endpoints.
	app.Post("/complaints", cfg.Complaints.Create)
	app.Post("/complaints/:id/reopen", cfg.Complaints.Reopen)

	app.Post("/workers/register", cfg.Workers.Register)
	app.Post("/workers/login", cfg.Workers.Login)

	staff := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())

	// Bulk routes precede the parameterised routes so "bulk" never binds
	// to :id.
	staff.Post("/complaints/bulk/assign", cfg.Complaints.BulkAssign)
	staff.Post("/complaints/bulk/status", cfg.Complaints.BulkUpdateStatus)

	staff.Get("/complaints", cfg.Complaints.List)
	staff.Get("/complaints/:id", cfg.Complaints.Get)
	staff.Get("/complaints/:id/history", cfg.Complaints.History)
	staff.Post("/complaints/:id/status", cfg.Complaints.UpdateStatus)
	staff.Post("/complaints/:id/assign", cfg.Complaints.Assign)
	staff.Post("/complaints/:id/auto-assign", cfg.Complaints.AutoAssign)

	staff.Get("/workers", cfg.Workers.List)
	staff.Patch("/workers/:id/availability", cfg.Workers.UpdateAvailability)

	admin := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.WorkerRoleAdmin))
	admin.Patch("/complaints/:id", cfg.Complaints.Update)
	admin.Delete("/complaints/:id", cfg.Complaints.Delete)
}
