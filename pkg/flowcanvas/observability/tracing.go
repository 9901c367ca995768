package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartSubmitSpan starts a span around one pipeline submission.
	StartSubmitSpan(ctx context.Context, endpoint string, nodes, edges int) (context.Context, trace.Span)

	// StartSyncSpan starts a span around one template port recomputation.
	StartSyncSpan(ctx context.Context, nodeID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct {
	tracer trace.Tracer
}

// NewSpanManager returns a SpanManager that uses the global OTel tracer provider.
//
// Configure the provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return NewSpanManagerFor(otel.GetTracerProvider())
}

// NewSpanManagerFor returns a SpanManager bound to a specific tracer provider.
func NewSpanManagerFor(provider trace.TracerProvider) SpanManager {
	return &otelSpanManager{tracer: provider.Tracer("flowcanvas")}
}

// StartSubmitSpan starts a client span for a submission.
func (m *otelSpanManager) StartSubmitSpan(ctx context.Context, endpoint string, nodes, edges int) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "flowcanvas.submit",
		trace.WithAttributes(
			attribute.String("submit.endpoint", endpoint),
			attribute.Int("pipeline.nodes", nodes),
			attribute.Int("pipeline.edges", edges),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// StartSyncSpan starts an internal span for a port recomputation.
func (m *otelSpanManager) StartSyncSpan(ctx context.Context, nodeID string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "flowcanvas.portsync",
		trace.WithAttributes(attribute.String("node.id", nodeID)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
