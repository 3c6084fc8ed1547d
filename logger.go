package inspector

import (
	"io"
	"log/slog"
	"os"
)

// NopLogger returns a logger that discards all output.
// Use this when you want silent operation with no logging overhead.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// resolveLogger picks the injected logger, then a stderr logger at level,
// then NopLogger.
func resolveLogger(log *slog.Logger, level *slog.Level) *slog.Logger {
	if log != nil {
		return log
	}

	if level != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *level}))
	}

	return NopLogger()
}
