package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/dukex/conduit/pkg/protocol"
	"github.com/dukex/conduit/pkg/queue"
	"github.com/dukex/conduit/pkg/web"
	"github.com/dukex/conduit/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopWorkflow struct{}

func (noopWorkflow) Validate(context.Context, map[string]any) bool { return true }

func (noopWorkflow) Process(_ context.Context, data map[string]any) (map[string]any, error) {
	return data, nil
}

func (noopWorkflow) Cleanup(context.Context) error { return nil }

type noopFactory struct{ id string }

func (f *noopFactory) ID() string { return f.id }

func (f *noopFactory) Create(_ map[string]any, _ *slog.Logger) (protocol.Workflow, error) {
	return noopWorkflow{}, nil
}

func setupTestApp(t *testing.T) (*fiber.App, *queue.Manager) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	manager := queue.NewManager(map[string]string{
		"default":  "memory://default",
		"priority": "memory://priority",
	}, 100, logger)

	registry := workflow.NewRegistry(logger)
	registry.Register(&noopFactory{id: "demo"})
	registry.Register(&noopFactory{id: "routed"})
	registry.Register(&noopFactory{id: "misrouted"})

	settings := map[string]workflow.Settings{
		"routed": {
			Config: workflow.Config{Name: "routed", Enabled: true},
			Route:  "priority",
		},
		"misrouted": {
			Config: workflow.Config{Name: "misrouted", Enabled: true},
			Route:  "nowhere",
		},
	}

	handlers := web.NewHandlers(manager, registry, settings, validator.New(validator.WithRequiredStructEnabled()), logger)

	app := fiber.New()
	app.Post("/webhook/:workflowName", handlers.Webhook)
	app.Get("/ws/:workflowName", handlers.WebsocketIngest)
	app.Get("/queues/:workflowName", handlers.QueueSizes)
	app.Get("/health", handlers.HealthCheck)

	return app, manager
}

func TestWebhookEnqueues(t *testing.T) {
	t.Parallel()

	app, manager := setupTestApp(t)

	body, err := json.Marshal(web.WebhookPayload{Data: map[string]any{"symbol": "BTC", "price": 42}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhook/demo", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var ack web.EnqueueResponse
	require.NoError(t, json.Unmarshal(raw, &ack))
	assert.Equal(t, "success", ack.Status)

	item, err := manager.Dequeue(context.Background(), "demo", "default")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "BTC", item.Data["symbol"])
}

func TestWebhookUsesConfiguredRoute(t *testing.T) {
	t.Parallel()

	app, manager := setupTestApp(t)

	body := []byte(`{"data": {"k": "v"}}`)

	req := httptest.NewRequest(http.MethodPost, "/webhook/routed", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	item, err := manager.Dequeue(context.Background(), "routed", "priority")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "priority", item.Queue)
}

func TestWebhookUnknownWorkflow(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook/ghost", bytes.NewReader([]byte(`{"data": {}}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebhookRejectsBadBodies(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `not-json`},
		{name: "missing data field", body: `{"other": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/webhook/demo", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestQueueSizes(t *testing.T) {
	t.Parallel()

	app, manager := setupTestApp(t)

	ctx := context.Background()
	require.NoError(t, manager.Enqueue(ctx, "demo", map[string]any{"a": 1}, "default"))
	require.NoError(t, manager.Enqueue(ctx, "demo", map[string]any{"b": 2}, "default"))
	require.NoError(t, manager.Enqueue(ctx, "demo", map[string]any{"c": 3}, "priority"))

	req := httptest.NewRequest(http.MethodGet, "/queues/demo", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var sizes web.QueueSizesResponse
	require.NoError(t, json.Unmarshal(raw, &sizes))
	assert.Equal(t, "demo", sizes.Workflow)
	assert.Equal(t, map[string]int64{"default": 2, "priority": 1}, sizes.Queues)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var health map[string]any
	require.NoError(t, json.Unmarshal(raw, &health))
	assert.Equal(t, "healthy", health["status"])
	assert.NotEmpty(t, health["timestamp"])
}
