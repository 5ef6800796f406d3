// Package workflow wraps pluggable workflow implementations with timing,
// bounded retry and structured result reporting, and holds the static
// registry of workflow factories.
package workflow

// DefaultMaxRetries is the retry limit applied when a workflow's
// configuration does not set one.
const DefaultMaxRetries = 3

// Config is the immutable per-workflow execution configuration.
type Config struct {
	Name       string `json:"name"`
	MaxRetries int    `json:"max_retries"`
	Enabled    bool   `json:"enabled"`
}

// Settings bundles everything the dispatch loop and scheduler need to drive
// one registered workflow.
type Settings struct {
	Config Config

	// Route is the queue route polled for this workflow.
	Route string

	// Forward, when set, is the downstream route successful results are
	// re-enqueued to.
	Forward string

	// Schedule, when set, is a cron expression that enqueues a tick item so
	// polling workflows run without an external producer.
	Schedule string

	// Options is the factory configuration for workflow instances.
	Options map[string]any
}

// Result is produced exactly once per Execute call. Data and Error are
// mutually exclusive: a successful result never carries Error, a failed one
// never carries Data. ExecutionTime is cumulative wall time in seconds
// across every attempt.
type Result struct {
	Success       bool           `json:"success"`
	Data          map[string]any `json:"data,omitempty"`
	Error         string         `json:"error,omitempty"`
	ExecutionTime float64        `json:"execution_time"`
}
