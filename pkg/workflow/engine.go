package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukex/conduit/pkg/protocol"
)

// Engine drives a single workflow execution through validate, process and
// retry. It keeps no state between invocations; the attempt counter is local
// to each Execute call, so retries cannot race across dispatches.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger.With("module", "workflow_engine")}
}

// Execute runs wf.Process with the given input, retrying on error up to
// cfg.MaxRetries times. The retry is an explicit bounded loop rather than
// re-entrant recursion, so stack depth stays constant and ctx cancellation
// composes: a cancelled context aborts before the next attempt.
func (e *Engine) Execute(ctx context.Context, wf protocol.Workflow, cfg Config, data map[string]any) Result {
	logger := e.logger.With("workflow_name", cfg.Name)

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}

	start := time.Now()

	logger.InfoContext(ctx, "Workflow started", "data_size", len(data))

	if !wf.Validate(ctx, data) {
		logger.ErrorContext(ctx, "Workflow input rejected by validation")

		return Result{
			Success:       false,
			Error:         "input validation failed",
			ExecutionTime: time.Since(start).Seconds(),
		}
	}

	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err

			break
		}

		if attempt > 0 {
			logger.InfoContext(ctx, "Retrying workflow", "attempt", attempt)
		}

		out, err := wf.Process(ctx, data)
		if err == nil {
			return Result{
				Success:       true,
				Data:          out,
				ExecutionTime: time.Since(start).Seconds(),
			}
		}

		lastErr = err

		logger.ErrorContext(ctx, "Workflow attempt failed", "attempt", attempt, "error", err)
	}

	return Result{
		Success:       false,
		Error:         lastErr.Error(),
		ExecutionTime: time.Since(start).Seconds(),
	}
}
