package workflow

import (
	"fmt"
	"log/slog"

	"github.com/dukex/conduit/pkg/protocol"
)

// Registry maps workflow names to factories. It is populated statically by
// the process bootstrap; registration order is preserved because the
// dispatch loop polls workflows round-robin in that order.
type Registry struct {
	logger    *slog.Logger
	factories map[string]protocol.WorkflowFactory
	order     []string
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger.With("module", "workflow_registry"),
		factories: make(map[string]protocol.WorkflowFactory),
	}
}

// Register adds a factory under its ID. Registering the same name twice
// replaces the prior factory while keeping its position in the polling
// order: last registration wins, by policy rather than by accident.
func (r *Registry) Register(factory protocol.WorkflowFactory) {
	name := factory.ID()

	if _, exists := r.factories[name]; exists {
		r.logger.Warn("Workflow already registered, replacing", "workflow", name)
	} else {
		r.order = append(r.order, name)
	}

	r.factories[name] = factory
	r.logger.Info("Workflow registered", "workflow", name)
}

// Names returns the registered workflow names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}

// Exists reports whether a workflow name is registered.
func (r *Registry) Exists(name string) bool {
	_, ok := r.factories[name]

	return ok
}

// Create instantiates a workflow through its registered factory.
func (r *Registry) Create(name string, config map[string]any, logger *slog.Logger) (protocol.Workflow, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("workflow '%s' not registered", name)
	}

	return factory.Create(config, logger)
}
