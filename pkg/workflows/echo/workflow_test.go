package echo_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/dukex/conduit/pkg/workflows/echo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoWorkflow(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	wf, err := echo.NewFactory().Create(nil, logger)
	require.NoError(t, err)

	ctx := context.Background()

	assert.False(t, wf.Validate(ctx, nil))
	assert.False(t, wf.Validate(ctx, map[string]any{}))
	assert.True(t, wf.Validate(ctx, map[string]any{"k": "v"}))

	out, err := wf.Process(ctx, map[string]any{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v"}, out["echo"])
	assert.NotEmpty(t, out["timestamp"])

	require.NoError(t, wf.Cleanup(ctx))
}
