// Package log configures the process-wide slog handler and hands out
// module-scoped loggers. Every binary calls Setup once at bootstrap with the
// configured level; components then derive their loggers via WithModule.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs a text handler on stderr at the given level. Unknown level
// names fall back to info.
func Setup(logLevel string) {
	var level slog.Level

	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns a logger carrying the component name as a "module"
// attribute on every record.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
