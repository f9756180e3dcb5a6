package logging

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ContextWithLogger stores the given logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, logger)
}

// With derives a child logger carrying the extra fields and stores it
// back in the context. Request-scoped fields (request id, route,
// identity) accumulate this way so every log line downstream carries
// them.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	return ContextWithLogger(ctx, FromContext(ctx).With(fields...))
}

// FromContext retrieves a logger from the context, falling back to
// zap.L().
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return zap.L()
	}
	if logger, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.L()
}
