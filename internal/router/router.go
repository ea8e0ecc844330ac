package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/soltixdb/probacast/internal/config"
	"github.com/soltixdb/probacast/internal/handlers"
	"github.com/soltixdb/probacast/internal/logging"
	"github.com/soltixdb/probacast/internal/middleware"
	"github.com/soltixdb/probacast/internal/services"
)

// Setup configures all routes and middlewares. worker may be nil.
func Setup(app *fiber.App, logger *logging.Logger, cfg config.Config, worker *services.ForecastWorker) *handlers.Handler {
	h := handlers.New(logger, cfg, worker)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	// API v1 routes (protected by API key)
	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, cfg.Auth))

	// Forecasting
	v1.Get("/forecasters", h.ListForecasters)
	v1.Post("/forecast", h.Forecast)
	v1.Post("/jobs/forecast", h.SubmitForecastJob)

	// Distribution tables
	v1.Get("/distributions", h.ListFamilies)
	v1.Post("/distributions/:family/evaluate", h.EvaluateDistribution)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, cfg config.Config, worker *services.ForecastWorker) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Probacast",
		DisableStartupMessage: true,
		BodyLimit:             cfg.Server.BodyLimit,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, cfg, worker)

	return app
}
