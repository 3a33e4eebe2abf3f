package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span represents a logical unit of work tied to a request trace.
type Span struct {
	name   string
	logger *slog.Logger
	start  time.Time
	level  slog.Level
}

// StartSpan opens an info-level span named name under the span carried by ctx.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	return StartSpanLevel(ctx, name, slog.LevelInfo)
}

// StartSpanLevel opens a span whose completion entry is logged at level.
// A new trace is started when ctx carries none.
func StartSpanLevel(ctx context.Context, name string, level slog.Level) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	spanID := uuid.NewString()
	attrs := []any{slog.String("span_id", spanID), slog.String("span_name", name)}

	if TraceIDFromContext(ctx) == "" {
		traceID := uuid.NewString()
		ctx = WithTraceID(ctx, traceID)
		attrs = append(attrs, slog.String("trace_id", traceID))
	}
	if parent := SpanIDFromContext(ctx); parent != "" {
		attrs = append(attrs, slog.String("parent_span_id", parent))
	}

	logger := FromContext(ctx).With(attrs...)
	ctx = WithSpanID(WithLogger(ctx, logger), spanID)
	return ctx, &Span{name: name, logger: logger, start: time.Now(), level: level}
}

// Logger returns the span-scoped logger.
func (s *Span) Logger() *slog.Logger {
	if s == nil {
		return slog.Default()
	}
	return s.logger
}

// End finalizes the span and emits a completion log entry.
func (s *Span) End(attrs ...slog.Attr) {
	if s == nil {
		return
	}
	attrs = append(attrs, slog.Duration("duration", time.Since(s.start)))
	s.logger.LogAttrs(context.Background(), s.level, "span completed", attrs...)
}
