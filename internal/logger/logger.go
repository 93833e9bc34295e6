// Package logger wires the process-wide zerolog configuration and
// exposes the context accessor used by handlers and services.
package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Setup configures the global zerolog level. Unknown or empty levels
// fall back to info.
func Setup(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// FromContext returns the request-scoped logger injected by the logging
// middleware, or the default logger when none is attached.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
