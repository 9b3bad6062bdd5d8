package testhelpers

import (
	"github.com/myrjola/formcoach/internal/logging"
	"io"
	"log/slog"
)

// NewLogger creates a debug-level logger writing to the given sink, wired
// through logging.ContextHandler so tests see context attributes too.
func NewLogger(logSink io.Writer) *slog.Logger {
	handler := logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	return slog.New(handler)
}
