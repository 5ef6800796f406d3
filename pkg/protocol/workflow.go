// Package protocol defines the contracts between the conduit core and
// pluggable workflow implementations.
package protocol

import (
	"context"
	"log/slog"
)

// Workflow is a named unit of processing logic. One instance handles one
// logical unit of retryable work: the engine keeps an attempt counter per
// Execute call, so instances must not be shared across concurrent dispatches.
type Workflow interface {
	// Validate reports whether the input is well-formed enough to process.
	// Returning false fails the execution without consuming retries.
	Validate(ctx context.Context, data map[string]any) bool

	// Process transforms the input into a result payload.
	Process(ctx context.Context, data map[string]any) (map[string]any, error)

	// Cleanup releases any resources held by the instance (sockets,
	// connections). Invoked by the owner after the instance is done being
	// used, never by the execution engine itself.
	Cleanup(ctx context.Context) error
}

type WorkflowFactory interface {
	Create(config map[string]any, logger *slog.Logger) (Workflow, error)
	ID() string
}
