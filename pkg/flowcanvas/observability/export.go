package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// LogExporter is a span exporter that writes each finished span to a logger.
// Successful spans log at debug, failed spans at warn.
//
// It lets the command line tool show traces without a collector:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(observability.NewLogExporter(logger)))
//	spans := observability.NewSpanManagerFor(tp)
type LogExporter struct {
	logger *slog.Logger
}

// NewLogExporter creates an exporter writing to logger. A nil logger drops spans.
func NewLogExporter(logger *slog.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if e.logger == nil {
		return nil
	}
	for _, s := range spans {
		status := s.Status()
		attrs := []slog.Attr{
			slog.String("span", s.Name()),
			slog.String("trace_id", s.SpanContext().TraceID().String()),
			slog.Float64("duration_ms", float64(s.EndTime().Sub(s.StartTime()).Microseconds())/1000),
			slog.String("status", status.Code.String()),
		}
		for _, kv := range s.Attributes() {
			attrs = append(attrs, slog.Any(string(kv.Key), kv.Value.AsInterface()))
		}

		level := slog.LevelDebug
		if status.Code == codes.Error {
			level = slog.LevelWarn
			attrs = append(attrs, slog.String("error", status.Description))
		}
		e.logger.LogAttrs(ctx, level, "span finished", attrs...)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *LogExporter) Shutdown(context.Context) error {
	return nil
}

var _ sdktrace.SpanExporter = (*LogExporter)(nil)
