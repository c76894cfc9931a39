package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/guide-store/internal/api/http/handlers"
	"github.com/spec-kit/guide-store/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Guides         *handlers.GuidesHandler
	Checkout       *handlers.CheckoutHandler
	Webhooks       *handlers.WebhookHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/providers", cfg.Auth.Providers)
	authGroup.Post("/signout", cfg.AuthMiddleware.Required, cfg.Auth.Signout)

	api.Get("/guides", cfg.Guides.List)
	api.Get("/guides/:slug", cfg.AuthMiddleware.Optional, cfg.Guides.Get)

	api.Post("/checkout", cfg.AuthMiddleware.Required, cfg.Checkout.Create)
	api.Post("/webhooks/stripe", cfg.Webhooks.HandleStripe)

	api.Get("/dashboard", cfg.AuthMiddleware.Required, cfg.Dashboard.Overview)
}
