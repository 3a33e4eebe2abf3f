package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	traceIDKey
	spanIDKey
)

func store[V comparable](ctx context.Context, key ctxKey, v V) context.Context {
	var zero V
	if ctx == nil || v == zero {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func lookup[V any](ctx context.Context, key ctxKey) (V, bool) {
	var zero V
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(V)
	return v, ok
}

// WithLogger attaches logger to ctx. A nil logger leaves ctx untouched.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return store(ctx, loggerKey, logger)
}

// Ensure attaches logger unless ctx already carries one.
func Ensure(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if existing, ok := lookup[*slog.Logger](ctx, loggerKey); ok && existing != nil {
		return ctx
	}
	return WithLogger(ctx, logger)
}

// FromContext returns the logger carried by ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := lookup[*slog.Logger](ctx, loggerKey); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return store(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := lookup[string](ctx, requestIDKey)
	return id
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return store(ctx, traceIDKey, id)
}

func TraceIDFromContext(ctx context.Context) string {
	id, _ := lookup[string](ctx, traceIDKey)
	return id
}

func WithSpanID(ctx context.Context, id string) context.Context {
	return store(ctx, spanIDKey, id)
}

func SpanIDFromContext(ctx context.Context) string {
	id, _ := lookup[string](ctx, spanIDKey)
	return id
}
