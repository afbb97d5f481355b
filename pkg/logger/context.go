package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// With returns a new context carrying a logger enriched with fields.
func With(ctx context.Context, fields ...any) context.Context {
	l := From(ctx).With(fields...)
	return context.WithValue(ctx, loggerKey, l)
}

// From returns the logger stored in context, or the process logger.
func From(ctx context.Context) *slog.Logger {
	l, _ := Lookup(ctx)
	return l
}

// Lookup is From that also reports whether ctx carried its own logger.
func Lookup(ctx context.Context) (*slog.Logger, bool) {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return l, true
		}
	}
	return LoggerWrapper(), false
}
