// Package processor implements the polling dispatch loop: it drains every
// registered workflow's queue round-robin and drives executions through the
// workflow engine.
package processor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/conduit/pkg/metrics"
	"github.com/dukex/conduit/pkg/queue"
	"github.com/dukex/conduit/pkg/workflow"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/conduit/pkg/otelhelper"
)

// DefaultPollInterval is the sleep after each full pass over the registered
// workflows. It caps polling overhead on empty queues and is the loop's only
// unconditional suspension point.
const DefaultPollInterval = 1 * time.Second

// Processor polls every registered workflow's queue in registration order
// and feeds dequeued items into the execution engine. Per-item failures are
// recorded and never fatal; the loop exits only on an explicit stop signal
// or context cancellation.
type Processor struct {
	queue    *queue.Manager
	registry *workflow.Registry
	engine   *workflow.Engine
	settings map[string]workflow.Settings
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	interval time.Duration
	logger   *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

func New(
	queueManager *queue.Manager,
	registry *workflow.Registry,
	settings map[string]workflow.Settings,
	m *metrics.Metrics,
	interval time.Duration,
	logger *slog.Logger,
) *Processor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &Processor{
		queue:    queueManager,
		registry: registry,
		engine:   workflow.NewEngine(logger),
		settings: settings,
		metrics:  m,
		interval: interval,
		logger:   logger.With("module", "processor"),
		stopCh:   make(chan struct{}),
	}
}

// WithTracer attaches a tracer so each execution is wrapped in a span.
func (p *Processor) WithTracer(tracer trace.Tracer) *Processor {
	p.tracer = tracer

	return p
}

// Run blocks until the context is cancelled or Stop is called; either is
// observed within one poll interval. In-flight executions complete before
// the loop exits.
func (p *Processor) Run(ctx context.Context) {
	p.logger.InfoContext(ctx, "Processor started",
		"workflows", p.registry.Names(),
		"interval", p.interval,
	)

	for {
		select {
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "Processor stopped", "reason", "context cancelled")

			return
		case <-p.stopCh:
			p.logger.InfoContext(ctx, "Processor stopped", "reason", "stop requested")

			return
		default:
		}

		p.Pass(ctx)

		select {
		case <-ctx.Done():
			p.logger.InfoContext(ctx, "Processor stopped", "reason", "context cancelled")

			return
		case <-p.stopCh:
			p.logger.InfoContext(ctx, "Processor stopped", "reason", "stop requested")

			return
		case <-time.After(p.interval):
		}
	}
}

// Stop signals the loop to exit. Safe to call more than once.
func (p *Processor) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
}

// Pass visits every registered workflow once, in registration order. One
// slow or failing workflow only costs its own slot in the pass.
func (p *Processor) Pass(ctx context.Context) {
	for _, name := range p.registry.Names() {
		p.dispatch(ctx, name)
	}
}

func (p *Processor) settingsFor(name string) workflow.Settings {
	st, ok := p.settings[name]
	if !ok {
		st = workflow.Settings{
			Config: workflow.Config{MaxRetries: workflow.DefaultMaxRetries, Enabled: true},
		}
	}

	if st.Config.Name == "" {
		st.Config.Name = name
	}

	if st.Route == "" {
		st.Route = queue.DefaultRoute
	}

	return st
}

func (p *Processor) dispatch(ctx context.Context, name string) {
	st := p.settingsFor(name)
	if !st.Config.Enabled {
		return
	}

	logger := p.logger.With("workflow_name", name)

	item, err := p.queue.Dequeue(ctx, name, st.Route)
	if err != nil {
		// Store unreachable or misrouted: skip until the next pass.
		logger.ErrorContext(ctx, "Processor error", "error", err)

		return
	}

	if item == nil {
		return
	}

	var depth int64 = -1

	if size, err := p.queue.QueueSize(ctx, name, st.Route); err == nil {
		depth = size
		p.metrics.SetQueueDepth(ctx, name, size)
	}

	wf, err := p.registry.Create(name, st.Options, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Processor error", "error", err)

		return
	}

	defer func() {
		if err := wf.Cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "Workflow cleanup failed", "error", err)
		}
	}()

	execCtx := ctx

	var span trace.Span

	if p.tracer != nil {
		execCtx, span = otelhelper.StartSpan(ctx, p.tracer, "workflow.execute",
			attribute.String(otelhelper.WorkflowNameKey, name),
			attribute.String(otelhelper.QueueRouteKey, st.Route),
			attribute.Int64(otelhelper.QueueLengthKey, depth),
		)
		defer span.End()
	}

	result := p.engine.Execute(execCtx, wf, st.Config, item.Data)

	p.metrics.RecordExecution(ctx, name, result.Success)

	if !result.Success {
		logger.ErrorContext(ctx, "Workflow failed",
			"error", result.Error,
			"execution_time", result.ExecutionTime,
		)

		if span != nil {
			span.SetAttributes(attribute.String(otelhelper.OutcomeKey, "failure"))
			otelhelper.SetError(span, errors.New(result.Error),
				attribute.String(otelhelper.WorkflowNameKey, name))
		}

		return
	}

	if span != nil {
		span.SetAttributes(attribute.String(otelhelper.OutcomeKey, "success"))
	}

	if st.Forward != "" && result.Data != nil {
		if err := p.queue.Enqueue(ctx, name, result.Data, st.Forward); err != nil {
			logger.ErrorContext(ctx, "Failed to forward result", "route", st.Forward, "error", err)
		}
	}
}
