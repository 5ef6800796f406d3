package web

import (
	"errors"
	"log/slog"
	"time"

	"github.com/dukex/conduit/pkg/queue"
	"github.com/dukex/conduit/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	queue     *queue.Manager
	registry  *workflow.Registry
	settings  map[string]workflow.Settings
	validator *validator.Validate
	logger    *slog.Logger
}

func NewHandlers(
	queueManager *queue.Manager,
	registry *workflow.Registry,
	settings map[string]workflow.Settings,
	validate *validator.Validate,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		queue:     queueManager,
		registry:  registry,
		settings:  settings,
		validator: validate,
		logger:    logger.With("module", "web"),
	}
}

// Webhook accepts a payload for a workflow and enqueues it. The caller is
// acknowledged after one store round trip, regardless of eventual
// processing outcome.
func (h *Handlers) Webhook(c fiber.Ctx) error {
	workflowName := c.Params("workflowName")

	if !h.registry.Exists(workflowName) {
		return notFound(c, "workflow '"+workflowName+"' not registered")
	}

	var payload WebhookPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(payload); err != nil {
		return badRequest(c, err.Error())
	}

	route := queue.DefaultRoute
	if st, ok := h.settings[workflowName]; ok && st.Route != "" {
		route = st.Route
	}

	if err := h.queue.Enqueue(c.Context(), workflowName, payload.Data, route); err != nil {
		if errors.Is(err, queue.ErrRouteNotConfigured) {
			return badRequest(c, err.Error())
		}

		h.logger.Error("Failed to enqueue webhook payload", "workflow_name", workflowName, "error", err)

		return internalError(c, err)
	}

	return c.JSON(EnqueueResponse{
		Status:  "success",
		Message: "Data enqueued successfully",
	})
}

// QueueSizes reports the workflow's queue depth across every configured
// route.
func (h *Handlers) QueueSizes(c fiber.Ctx) error {
	workflowName := c.Params("workflowName")

	if !h.registry.Exists(workflowName) {
		return notFound(c, "workflow '"+workflowName+"' not registered")
	}

	sizes, err := h.queue.AllQueueSizes(c.Context(), workflowName)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(QueueSizesResponse{
		Workflow: workflowName,
		Queues:   sizes,
	})
}

// HealthCheck reports process liveness and the current UTC time.
func (h *Handlers) HealthCheck(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}
