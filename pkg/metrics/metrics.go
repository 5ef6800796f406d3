// Package metrics holds the execution and queue-depth instruments emitted by
// the dispatch loop.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Metrics exposes the observability boundary of the core: an execution
// counter keyed by (workflow_name, status) and a queue-depth gauge keyed by
// workflow_name.
type Metrics struct {
	executions metric.Int64Counter
	queueDepth metric.Int64Gauge
}

func New(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	executions, err := meter.Int64Counter(
		"conduit.workflow.executions",
		metric.WithDescription("Total number of workflow executions"),
	)
	if err != nil {
		return nil, err
	}

	queueDepth, err := meter.Int64Gauge(
		"conduit.workflow.queue.size",
		metric.WithDescription("Current size of a workflow queue"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		executions: executions,
		queueDepth: queueDepth,
	}, nil
}

func (m *Metrics) RecordExecution(ctx context.Context, workflowName string, success bool) {
	status := statusFailure
	if success {
		status = statusSuccess
	}

	m.executions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("workflow_name", workflowName),
		attribute.String("status", status),
	))
}

func (m *Metrics) SetQueueDepth(ctx context.Context, workflowName string, depth int64) {
	m.queueDepth.Record(ctx, depth, metric.WithAttributes(
		attribute.String("workflow_name", workflowName),
	))
}
