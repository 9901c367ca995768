package portsync

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/observability"
)

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithQuietPeriod sets how long text must stay unchanged before ports are
// recomputed. Negative values are treated as zero.
// Default: 180ms
func WithQuietPeriod(d time.Duration) Option {
	return func(s *Synchronizer) {
		s.quiet = max(d, 0)
	}
}

// WithLogger sets the logger for scheduling and recomputation events.
// Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = observability.EnrichLogger(logger, "portsync")
	}
}

// WithMetrics sets the metrics recorder.
// Default: observability.NoopMetrics{}
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(s *Synchronizer) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSpans sets the span manager used to trace recomputations.
// Default: observability.NoopSpanManager{}
func WithSpans(sm observability.SpanManager) Option {
	return func(s *Synchronizer) {
		if sm != nil {
			s.spans = sm
		}
	}
}
