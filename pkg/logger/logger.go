package logger

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// New returns the JSON logger every component of the intake service logs
// through. Local and dev environments get debug level; everything else
// stays at info so production output is scan-friendly.
func New(appEnv string) *slog.Logger {
	level := slog.LevelInfo
	if appEnv == "local" || appEnv == "dev" {
		level = slog.LevelDebug
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("app", "harvest-intake")
}

// ShutdownFlush is a placeholder for future log flushing (if a buffered
// handler replaces the stdout one).
func ShutdownFlush(_ context.Context, _ time.Duration) error { return nil }
