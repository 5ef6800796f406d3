package queue_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/dukex/conduit/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, maxLength int64) *queue.Manager {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	return queue.NewManager(map[string]string{
		"default":  "memory://default",
		"priority": "memory://priority",
	}, maxLength, logger)
}

func TestManagerEnqueueDequeueFIFO(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager := newTestManager(t, 100)

	for i := range 5 {
		err := manager.Enqueue(ctx, "demo", map[string]any{"seq": float64(i)}, "default")
		require.NoError(t, err)
	}

	for i := range 5 {
		item, err := manager.Dequeue(ctx, "demo", "default")
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, float64(i), item.Data["seq"])
		assert.Equal(t, "default", item.Queue)
		assert.NotEmpty(t, item.Timestamp)
	}

	item, err := manager.Dequeue(ctx, "demo", "default")
	require.NoError(t, err)
	assert.Nil(t, item, "drained queue should return empty, not an error")
}

func TestManagerBoundEvictsOldest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	const maxLength = 3

	manager := newTestManager(t, maxLength)

	for i := range 10 {
		err := manager.Enqueue(ctx, "demo", map[string]any{"seq": float64(i)}, "default")
		require.NoError(t, err)
	}

	size, err := manager.QueueSize(ctx, "demo", "default")
	require.NoError(t, err)
	assert.Equal(t, int64(maxLength), size)

	// Only the last maxLength items survive, still in enqueue order.
	for i := 7; i < 10; i++ {
		item, err := manager.Dequeue(ctx, "demo", "default")
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, float64(i), item.Data["seq"])
	}

	item, err := manager.Dequeue(ctx, "demo", "default")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestManagerEvictionScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	manager := queue.NewManager(map[string]string{
		"default": "memory://default",
	}, 2, logger)

	require.NoError(t, manager.Enqueue(ctx, "demo", map[string]any{"symbol": "BTC", "price": float64(42)}, "default"))
	require.NoError(t, manager.Enqueue(ctx, "demo", map[string]any{"symbol": "ETH", "price": float64(7)}, "default"))
	require.NoError(t, manager.Enqueue(ctx, "demo", map[string]any{"symbol": "SOL", "price": float64(3)}, "default"))

	first, err := manager.Dequeue(ctx, "demo", "default")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "ETH", first.Data["symbol"], "oldest item should have been evicted")

	second, err := manager.Dequeue(ctx, "demo", "default")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "SOL", second.Data["symbol"])

	third, err := manager.Dequeue(ctx, "demo", "default")
	require.NoError(t, err)
	assert.Nil(t, third)
}

func TestManagerUnknownRoute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager := newTestManager(t, 10)

	err := manager.Enqueue(ctx, "demo", map[string]any{"a": "b"}, "missing")
	require.ErrorIs(t, err, queue.ErrRouteNotConfigured)

	_, err = manager.Dequeue(ctx, "demo", "missing")
	require.ErrorIs(t, err, queue.ErrRouteNotConfigured)

	_, err = manager.QueueSize(ctx, "demo", "missing")
	require.ErrorIs(t, err, queue.ErrRouteNotConfigured)

	err = manager.Connect(ctx, "missing")
	require.ErrorIs(t, err, queue.ErrRouteNotConfigured)
}

func TestManagerDefaultRoute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager := newTestManager(t, 10)

	require.NoError(t, manager.Enqueue(ctx, "demo", map[string]any{"a": "b"}, ""))

	item, err := manager.Dequeue(ctx, "demo", "")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, queue.DefaultRoute, item.Queue)
}

func TestManagerDisconnectIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager := newTestManager(t, 10)

	// Never connected: both forms must be no-ops.
	require.NoError(t, manager.Disconnect(ctx, "default"))
	require.NoError(t, manager.Disconnect(ctx, "never-configured"))
	require.NoError(t, manager.DisconnectAll(ctx))

	require.NoError(t, manager.Connect(ctx, "default"))
	require.NoError(t, manager.Disconnect(ctx, "default"))
	require.NoError(t, manager.Disconnect(ctx, "default"))

	// A disconnected route re-connects on the next operation.
	require.NoError(t, manager.Enqueue(ctx, "demo", map[string]any{"a": "b"}, "default"))
}

func TestManagerAllQueueSizes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager := newTestManager(t, 10)

	for i := range 3 {
		require.NoError(t, manager.Enqueue(ctx, "demo", map[string]any{"seq": i}, "default"))
	}

	require.NoError(t, manager.Enqueue(ctx, "demo", map[string]any{"seq": 99}, "priority"))

	sizes, err := manager.AllQueueSizes(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"default": 3, "priority": 1}, sizes)
}

func TestManagerQueuesAreIsolatedPerWorkflow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager := newTestManager(t, 10)

	for i := range 4 {
		name := fmt.Sprintf("workflow-%d", i%2)
		require.NoError(t, manager.Enqueue(ctx, name, map[string]any{"seq": float64(i)}, "default"))
	}

	item, err := manager.Dequeue(ctx, "workflow-1", "default")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, float64(1), item.Data["seq"])
}
