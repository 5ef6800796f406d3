// Package echo provides a trivial workflow that reflects its input back.
// Useful for wiring checks and as the smallest possible implementation of
// the workflow protocol.
package echo

import (
	"context"
	"log/slog"
	"time"
)

type Workflow struct {
	logger *slog.Logger
}

func NewWorkflow(logger *slog.Logger) *Workflow {
	return &Workflow{logger: logger.With("workflow", "echo")}
}

// Validate rejects empty payloads; there is nothing to echo.
func (w *Workflow) Validate(_ context.Context, data map[string]any) bool {
	return len(data) > 0
}

func (w *Workflow) Process(ctx context.Context, data map[string]any) (map[string]any, error) {
	w.logger.InfoContext(ctx, "Echoing payload", "keys", len(data))

	return map[string]any{
		"message":   "echo workflow completed successfully",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"echo":      data,
	}, nil
}

func (w *Workflow) Cleanup(_ context.Context) error {
	return nil
}
