package news

import (
	"log/slog"

	"github.com/dukex/conduit/pkg/protocol"
)

func NewFactory() protocol.WorkflowFactory {
	return &Factory{}
}

type Factory struct{}

func (f *Factory) ID() string {
	return "news"
}

func (f *Factory) Create(config map[string]any, logger *slog.Logger) (protocol.Workflow, error) {
	return NewWorkflow(config, logger), nil
}
