package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/ideaforge-api/internal/config"
	"github.com/noah-isme/ideaforge-api/internal/handler"
	"github.com/noah-isme/ideaforge-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	IdeaHandler         *handler.IdeaHandler
	DiscoveryHandler    *handler.DiscoveryHandler
	NotificationHandler *handler.NotificationHandler
	SessionHandler      *handler.SessionHandler
	JWTMiddleware       fiber.Handler
	AnalyzerConfigured  bool
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.AnalyzerConfigured))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	ideas := api.Group("/ideas", jwtMiddleware)
	// Static discovery paths must win over /ideas/:id.
	if deps.DiscoveryHandler != nil {
		deps.DiscoveryHandler.Register(ideas)
	}
	if deps.IdeaHandler != nil {
		deps.IdeaHandler.Register(ideas)
	}

	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications", jwtMiddleware))
	}

	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(api.Group("/session", jwtMiddleware))
	}
}
