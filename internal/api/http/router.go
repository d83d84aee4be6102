package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vinmart/admin-console/internal/api/http/handlers"
	"github.com/vinmart/admin-console/internal/auth"
	"github.com/vinmart/admin-console/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Dashboard     *handlers.DashboardHandler
	Vendors       *handlers.VendorsHandler
	Products      *handlers.ProductsHandler
	Orders        *handlers.OrdersHandler
	Subscriptions *handlers.SubscriptionsHandler
	Users         *handlers.UsersHandler
	Guard         *auth.Guard
	Metrics       *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	app.Get("/login", cfg.Auth.LoginPage)
	app.Post("/login", cfg.Auth.Login)
	app.Get("/forgot-password", cfg.Auth.ForgotPasswordPage)
	app.Post("/forgot-password", cfg.Auth.ForgotPassword)
	app.Get("/reset-password", cfg.Auth.ResetPasswordPage)
	app.Post("/reset-password", cfg.Auth.ResetPassword)

	// Guarded routes are registered one by one so unknown paths still 404
	// instead of bouncing to the login page.
	guard := cfg.Guard.Handle
	app.Post("/logout", guard, cfg.Auth.Logout)
	app.Get("/", guard, cfg.Dashboard.Show)

	app.Get("/vendors", guard, cfg.Vendors.List)
	app.Post("/vendors", guard, cfg.Vendors.Create)
	app.Get("/vendors/:id/delete", guard, cfg.Vendors.ConfirmDelete)
	app.Post("/vendors/:id/delete", guard, cfg.Vendors.Delete)

	app.Get("/products", guard, cfg.Products.List)
	app.Post("/products", guard, cfg.Products.Create)
	app.Get("/products/:id/delete", guard, cfg.Products.ConfirmDelete)
	app.Post("/products/:id/delete", guard, cfg.Products.Delete)

	app.Get("/orders", guard, cfg.Orders.List)
	app.Post("/orders/:id/status", guard, cfg.Orders.UpdateStatus)

	app.Get("/subscriptions", guard, cfg.Subscriptions.List)
	app.Post("/subscriptions/:id/:action", guard, cfg.Subscriptions.Act)

	app.Get("/users", guard, cfg.Users.List)
	app.Post("/users/:id/status", guard, cfg.Users.ToggleStatus)
}
