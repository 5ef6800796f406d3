package web

import (
	"context"

	"github.com/dukex/conduit/pkg/queue"
	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v3"
	"github.com/valyala/fasthttp"
)

var upgrader = websocket.FastHTTPUpgrader{
	CheckOrigin: func(_ *fasthttp.RequestCtx) bool {
		// Cross-origin policy is handled by the cors middleware on the app.
		return true
	},
}

// WebsocketIngest accepts a stream of JSON payloads for a workflow and
// enqueues one item per received message, acknowledging each. Any enqueue
// failure or malformed frame closes the stream; the client reconnects to
// resume.
func (h *Handlers) WebsocketIngest(c fiber.Ctx) error {
	workflowName := c.Params("workflowName")

	if !h.registry.Exists(workflowName) {
		return notFound(c, "workflow '"+workflowName+"' not registered")
	}

	route := queue.DefaultRoute
	if st, ok := h.settings[workflowName]; ok && st.Route != "" {
		route = st.Route
	}

	logger := h.logger.With("workflow_name", workflowName)

	err := upgrader.Upgrade(c.RequestCtx(), func(conn *websocket.Conn) {
		defer conn.Close()

		// The fiber context is gone once the connection is hijacked; the
		// stream outlives the request.
		ctx := context.Background()

		logger.Info("WebSocket ingestion stream opened")

		for {
			var payload map[string]any
			if err := conn.ReadJSON(&payload); err != nil {
				logger.Info("WebSocket ingestion stream closed", "reason", err)

				return
			}

			if err := h.queue.Enqueue(ctx, workflowName, payload, route); err != nil {
				logger.Error("Failed to enqueue stream payload", "error", err)
				_ = conn.WriteJSON(EnqueueResponse{
					Status:  "error",
					Message: err.Error(),
				})

				return
			}

			if err := conn.WriteJSON(EnqueueResponse{
				Status:  "success",
				Message: "Data enqueued successfully",
			}); err != nil {
				return
			}
		}
	})
	if err != nil {
		return badRequest(c, "WebSocket upgrade failed")
	}

	return nil
}
