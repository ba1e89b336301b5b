package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/commerce-admin/internal/api/http/handlers"
	"github.com/spec-kit/commerce-admin/internal/observability"
	"github.com/spec-kit/commerce-admin/internal/ratelimit"
)

// RequestLimit throttles POST /users/request.
type RequestLimit struct {
	Limiter  *ratelimit.Limiter
	Requests int
	Window   time.Duration
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Users        *handlers.UsersHandler
	Carts        *handlers.CartsHandler
	Discounts    *handlers.DiscountsHandler
	Metrics      *observability.Metrics
	RequestLimit RequestLimit
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	users := app.Group("/users")
	users.Post("/request",
		requestRateLimit(cfg.RequestLimit.Limiter, "users:request", cfg.RequestLimit.Requests, cfg.RequestLimit.Window),
		cfg.Users.RequestAccount)
	users.Post("/activate", cfg.Users.Activate)
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Patch("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)
	users.Post("/:id/approve", cfg.Users.Approve)
	users.Post("/:id/resend-verification", cfg.Users.ResendVerification)

	carts := app.Group("/carts")
	carts.Get("/", cfg.Carts.List)
	carts.Post("/", cfg.Carts.Create)
	carts.Get("/:id", cfg.Carts.Get)
	carts.Put("/:id/products", cfg.Carts.ReplaceProducts)
	carts.Patch("/:id/status", cfg.Carts.UpdateStatus)
	carts.Delete("/:id", cfg.Carts.Delete)

	discounts := app.Group("/discounts")
	discounts.Get("/", cfg.Discounts.List)
	discounts.Post("/", cfg.Discounts.Create)
	discounts.Get("/:id", cfg.Discounts.Get)
	discounts.Patch("/:id", cfg.Discounts.Update)
	discounts.Delete("/:id", cfg.Discounts.Delete)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}
