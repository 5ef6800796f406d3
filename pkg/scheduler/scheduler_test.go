package scheduler_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/conduit/pkg/queue"
	"github.com/dukex/conduit/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestAddValidation(t *testing.T) {
	t.Parallel()

	manager := queue.NewManager(map[string]string{"default": "memory://d"}, 10, testLogger())
	s := scheduler.New(manager, testLogger())

	require.Error(t, s.Add("", "default", "@every 1s"))
	require.Error(t, s.Add("weather", "default", ""))
	require.Error(t, s.Add("weather", "default", "not a cron"))
	require.NoError(t, s.Add("weather", "default", "@every 1h"))
	require.NoError(t, s.Add("news", "default", "*/5 * * * *"))
}

func TestScheduledTickIsEnqueued(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager := queue.NewManager(map[string]string{"default": "memory://d"}, 10, testLogger())

	s := scheduler.New(manager, testLogger())
	require.NoError(t, s.Add("weather", "default", "@every 10ms"))

	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)

	for time.Now().Before(deadline) {
		item, err := manager.Dequeue(ctx, "weather", "default")
		require.NoError(t, err)

		if item != nil {
			assert.Equal(t, true, item.Data["scheduled"])
			assert.NotEmpty(t, item.Data["timestamp"])

			return
		}

		time.Sleep(5 * time.Millisecond)
	}

	t.Fatal("no scheduled tick observed")
}
