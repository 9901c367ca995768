package flowcanvas

import (
	"log/slog"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/observability"
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for mutation logging.
// Default: no logging.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = observability.EnrichLogger(logger, "store")
	}
}

// WithMetrics sets the metrics recorder.
// Default: observability.NoopMetrics{}
//
// Example:
//
//	store := flowcanvas.NewStore(flowcanvas.WithMetrics(observability.NewMetricsRecorder()))
func WithMetrics(m observability.MetricsRecorder) StoreOption {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithEdgeIDFunc overrides edge id allocation.
// Default: "edge-" followed by a random UUID.
func WithEdgeIDFunc(fn func() string) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.newEdgeID = fn
		}
	}
}
