package echo

import (
	"log/slog"

	"github.com/dukex/conduit/pkg/protocol"
)

func NewFactory() protocol.WorkflowFactory {
	return &Factory{}
}

type Factory struct{}

func (f *Factory) ID() string {
	return "echo"
}

func (f *Factory) Create(_ map[string]any, logger *slog.Logger) (protocol.Workflow, error) {
	return NewWorkflow(logger), nil
}
