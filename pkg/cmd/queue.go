package cmd

import (
	"log/slog"

	"github.com/dukex/conduit/pkg/config"
	"github.com/dukex/conduit/pkg/queue"
)

// NewQueueManager builds the queue manager from the configuration's route
// table. Connections are opened lazily on first use, so construction never
// fails.
func NewQueueManager(cfg *config.Config, logger *slog.Logger) *queue.Manager {
	return queue.NewManager(cfg.Queue.Routes, cfg.Queue.MaxLength, logger)
}
