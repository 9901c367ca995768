package observability

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records flowcanvas metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordMutation records a store mutation attempt and whether it was rejected.
	RecordMutation(ctx context.Context, op string, err error)

	// RecordEdgesPruned records edges removed as a side effect of a node or port removal.
	RecordEdgesPruned(ctx context.Context, cause string, count int)

	// RecordPortSync records one debounced recomputation of a template node.
	RecordPortSync(ctx context.Context, nodeID string, ports int, changed bool)

	// RecordSubmit records a pipeline submission with its outcome and latency.
	RecordSubmit(ctx context.Context, success bool, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	mutations     metric.Int64Counter
	rejections    metric.Int64Counter
	edgesPruned   metric.Int64Counter
	syncs         metric.Int64Counter
	syncPorts     metric.Int64Histogram
	submits       metric.Int64Counter
	submitLatency metric.Float64Histogram
}

// newOtelMetrics creates the instruments on the given meter.
func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	mutations, err := meter.Int64Counter("flowcanvas.store.mutations",
		metric.WithDescription("Number of store mutation attempts"),
	)
	if err != nil {
		return nil, err
	}

	rejections, err := meter.Int64Counter("flowcanvas.store.rejections",
		metric.WithDescription("Number of store mutations rejected with no effect"),
	)
	if err != nil {
		return nil, err
	}

	edgesPruned, err := meter.Int64Counter("flowcanvas.store.edges_pruned",
		metric.WithDescription("Number of edges removed by cascading deletion"),
	)
	if err != nil {
		return nil, err
	}

	syncs, err := meter.Int64Counter("flowcanvas.portsync.recomputations",
		metric.WithDescription("Number of template port recomputations"),
	)
	if err != nil {
		return nil, err
	}

	syncPorts, err := meter.Int64Histogram("flowcanvas.portsync.ports",
		metric.WithDescription("Input ports derived per recomputation"),
	)
	if err != nil {
		return nil, err
	}

	submits, err := meter.Int64Counter("flowcanvas.submit.requests",
		metric.WithDescription("Number of pipeline submissions"),
	)
	if err != nil {
		return nil, err
	}

	submitLatency, err := meter.Float64Histogram("flowcanvas.submit.latency_ms",
		metric.WithDescription("Pipeline submission latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		mutations:     mutations,
		rejections:    rejections,
		edgesPruned:   edgesPruned,
		syncs:         syncs,
		syncPorts:     syncPorts,
		submits:       submits,
		submitLatency: submitLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses the global OTel meter provider.
// If metrics initialization fails, returns a no-op recorder.
//
// Configure the provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	return NewMetricsRecorderFor(otel.GetMeterProvider())
}

// NewMetricsRecorderFor returns a MetricsRecorder bound to a specific meter provider.
func NewMetricsRecorderFor(provider metric.MeterProvider) MetricsRecorder {
	m, err := newOtelMetrics(provider.Meter("flowcanvas"))
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordMutation records a store mutation.
func (m *otelMetrics) RecordMutation(ctx context.Context, op string, err error) {
	attrs := metric.WithAttributes(attribute.String("operation", op))
	m.mutations.Add(ctx, 1, attrs)
	if err != nil {
		m.rejections.Add(ctx, 1, attrs)
	}
}

// RecordEdgesPruned records cascade removals.
func (m *otelMetrics) RecordEdgesPruned(ctx context.Context, cause string, count int) {
	if count <= 0 {
		return
	}
	m.edgesPruned.Add(ctx, int64(count), metric.WithAttributes(attribute.String("cause", cause)))
}

// RecordPortSync records a port recomputation.
func (m *otelMetrics) RecordPortSync(ctx context.Context, nodeID string, ports int, changed bool) {
	attrs := metric.WithAttributes(
		attribute.String("node_id", nodeID),
		attribute.Bool("changed", changed),
	)
	m.syncs.Add(ctx, 1, attrs)
	m.syncPorts.Record(ctx, int64(ports), attrs)
}

// RecordSubmit records a submission.
func (m *otelMetrics) RecordSubmit(ctx context.Context, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.submits.Add(ctx, 1, attrs)
	m.submitLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}
