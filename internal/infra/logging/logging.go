// Package logging builds the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
)

// New builds a slog.Logger writing to stdout in the given format
// ("json" or "text", default "json") at the given level ("debug", "info",
// "warn", "error", default "info"), and installs it as the process
// default so packages that call slog's package-level functions pick it
// up too.
func New(logFormat, logLevel string) *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	switch logFormat {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
