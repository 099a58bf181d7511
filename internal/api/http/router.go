package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-ticket-service/internal/api/http/handlers"
	"github.com/spec-kit/parking-ticket-service/internal/observability"
)

// RouteConfig bundles dependencies for public route registration.
type RouteConfig struct {
	Parking *handlers.ParkingHandler
}

// AdminRouteConfig bundles dependencies for the admin listener.
type AdminRouteConfig struct {
	Health  *handlers.HealthHandler
	Metrics *observability.Metrics
}

// ServerConfig describes a fully wired public app.
type ServerConfig struct {
	AppName        string
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	RequestTimeout time.Duration
	Routes         RouteConfig
}

// NewServer builds the public fiber app with middlewares and routes. Methods
// outside fiber's method table are answered with 405 before routing.
func NewServer(cfg ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, cfg.Logger, cfg.Metrics, cfg.RequestTimeout)
	RegisterRoutes(app, cfg.Routes)

	srv := app.Server()
	srv.Handler = rejectUnknownMethods(srv.Handler, app.Config().RequestMethods, cfg.Logger, cfg.Metrics)
	return app
}

// RegisterRoutes wires the two ticket operations. Anything else falls through
// to the dispatch fallback, which answers 404 or 405.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Post(handlers.EntryPath, cfg.Parking.Entry)
	app.Post(handlers.ExitPath, cfg.Parking.Exit)
	app.Use(cfg.Parking.Fallback)
}

// NewAdminServer builds the admin app serving health probes and metrics.
func NewAdminServer(appName string, cfg AdminRouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName + "-admin",
		DisableStartupMessage: true,
	})
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}
	return app
}
