// Package logging defines the structured logger used across the project
// and an slog-backed implementation of it. Every component takes the
// Logger interface, so tests can swap in a silent logger and the backing
// handler can change without touching call sites.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// alternating key/value pairs:
//
//	log.Info(ctx, "starting server", "addr", addr, "mode", mode)
type Logger interface {
	// Debug logs a verbose diagnostic message.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs a failure.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given
	// key/value pairs.
	With(args ...any) Logger
}
