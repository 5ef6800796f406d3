// Package main provides the Conduit ingestion API server.
package main

import (
	"log/slog"
	"net"
	"strconv"

	"github.com/dukex/conduit/pkg/queue"
	"github.com/dukex/conduit/pkg/web"
	"github.com/dukex/conduit/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger   *slog.Logger
	queue    *queue.Manager
	registry *workflow.Registry
	settings map[string]workflow.Settings
	validate *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	queueManager *queue.Manager,
	registry *workflow.Registry,
	settings map[string]workflow.Settings,
) *API {
	return &API{
		logger:   logger,
		queue:    queueManager,
		registry: registry,
		settings: settings,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewHandlers(a.queue, a.registry, a.settings, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Conduit API")
	})

	app.Post("/webhook/:workflowName", handlers.Webhook)
	app.Get("/ws/:workflowName", handlers.WebsocketIngest)
	app.Get("/queues/:workflowName", handlers.QueueSizes)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(host string, port int) error {
	app := a.App()

	return app.Listen(net.JoinHostPort(host, strconv.Itoa(port)))
}
