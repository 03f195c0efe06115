package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shardviz/shardviz/internal/config"
	"github.com/shardviz/shardviz/internal/handlers"
	"github.com/shardviz/shardviz/internal/logging"
	"github.com/shardviz/shardviz/internal/middleware"
	"github.com/shardviz/shardviz/internal/store"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, st store.Store, cfg config.Config) *handlers.Handler {
	h := handlers.New(logger, st)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	// API key authentication middleware
	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled)

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", authMiddleware)

	// Run discovery
	v1.Get("/runs", h.ListRuns)

	// Step views
	v1.Get("/runs/:test/:folder/steps/:t", h.GetStep)
	v1.Get("/runs/:test/:folder/steps/:t/utilization", h.GetUtilization)
	v1.Get("/runs/:test/:folder/steps/:t/nodes", h.GetNodeTable)
	v1.Get("/runs/:test/:folder/steps/:t/shards", h.GetShardTable)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, st store.Store, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Shardviz",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, st, cfg)

	return app
}
