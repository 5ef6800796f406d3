// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"log/slog"

	"github.com/dukex/conduit/pkg/workflow"
	"github.com/dukex/conduit/pkg/workflows/echo"
	"github.com/dukex/conduit/pkg/workflows/news"
	"github.com/dukex/conduit/pkg/workflows/ticker"
	"github.com/dukex/conduit/pkg/workflows/weather"
)

// NewRegistry builds a workflow registry with every native workflow
// registered under its factory ID.
func NewRegistry(logger *slog.Logger) *workflow.Registry {
	registry := workflow.NewRegistry(logger)

	registry.Register(ticker.NewFactory())
	registry.Register(news.NewFactory())
	registry.Register(weather.NewFactory())
	registry.Register(echo.NewFactory())

	return registry
}
