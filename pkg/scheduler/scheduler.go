// Package scheduler enqueues tick items on cron schedules so polling
// workflows (weather, RSS) run without an external producer.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/conduit/pkg/queue"
	"github.com/robfig/cron/v3"
)

// Scheduler owns one cron runner whose entries enqueue tick items into
// workflow queues. A tick is a normal queue item; the dispatch loop treats
// it like any other payload.
type Scheduler struct {
	queue  *queue.Manager
	cron   *cron.Cron
	logger *slog.Logger
}

func New(queueManager *queue.Manager, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		queue:  queueManager,
		logger: logger.With("module", "scheduler"),
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		)),
	}
}

// Add registers a cron entry that enqueues a tick for the workflow on the
// given route. spec accepts standard cron expressions plus the @every and
// @hourly style descriptors.
func (s *Scheduler) Add(workflowName, route, spec string) error {
	if workflowName == "" {
		return errors.New("scheduler workflow name is required")
	}

	if spec == "" {
		return errors.New("scheduler cron expression is required")
	}

	logger := s.logger.With("workflow_name", workflowName, "cron", spec)

	id, err := s.cron.AddFunc(spec, func() {
		tick := map[string]any{
			"scheduled": true,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

		if err := s.queue.Enqueue(context.Background(), workflowName, tick, route); err != nil {
			logger.Error("Failed to enqueue scheduled tick", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule workflow %s: %w", workflowName, err)
	}

	logger.Info("Scheduled workflow", "entry_id", id)

	return nil
}

func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler", "entries", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop halts scheduling and waits for any in-flight enqueue to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}
