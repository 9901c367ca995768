// Package observability provides structured logging, metrics, and tracing
// for flowcanvas.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds a component name to a logger.
// Returns nil when logger is nil so callers can keep the nil-means-silent rule.
func EnrichLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("component", component))
}

// LogNodeAdded logs a node insertion.
func LogNodeAdded(logger *slog.Logger, nodeID, nodeType string, ports int) {
	if logger == nil {
		return
	}
	logger.Debug("node added",
		slog.String("node_id", nodeID),
		slog.String("node_type", nodeType),
		slog.Int("ports", ports),
	)
}

// LogNodeRemoved logs a node removal and the edges removed with it.
func LogNodeRemoved(logger *slog.Logger, nodeID string, prunedEdges int) {
	if logger == nil {
		return
	}
	logger.Debug("node removed",
		slog.String("node_id", nodeID),
		slog.Int("edges_pruned", prunedEdges),
	)
}

// LogEdgeAdded logs a new connection.
func LogEdgeAdded(logger *slog.Logger, edgeID, source, sourcePort, target, targetPort string) {
	if logger == nil {
		return
	}
	logger.Debug("edge added",
		slog.String("edge_id", edgeID),
		slog.String("source", source),
		slog.String("source_port", sourcePort),
		slog.String("target", target),
		slog.String("target_port", targetPort),
	)
}

// LogMutationRejected logs a mutation the store refused.
// The store is unchanged when this is logged.
func LogMutationRejected(logger *slog.Logger, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("mutation rejected",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// LogPortsReplaced logs a port-list replacement on a node.
func LogPortsReplaced(logger *slog.Logger, nodeID, direction string, ports, prunedEdges int) {
	if logger == nil {
		return
	}
	logger.Debug("ports replaced",
		slog.String("node_id", nodeID),
		slog.String("direction", direction),
		slog.Int("ports", ports),
		slog.Int("edges_pruned", prunedEdges),
	)
}

// LogSyncScheduled logs a debounced recomputation being armed.
func LogSyncScheduled(logger *slog.Logger, nodeID string, quiet time.Duration, replaced bool) {
	if logger == nil {
		return
	}
	logger.Debug("port sync scheduled",
		slog.String("node_id", nodeID),
		slog.Duration("quiet_period", quiet),
		slog.Bool("replaced_pending", replaced),
	)
}

// LogSyncApplied logs the outcome of a port recomputation.
func LogSyncApplied(logger *slog.Logger, nodeID string, variables []string, invalid []string, changed bool) {
	if logger == nil {
		return
	}
	logger.Debug("port sync applied",
		slog.String("node_id", nodeID),
		slog.Any("variables", variables),
		slog.Int("invalid_placeholders", len(invalid)),
		slog.Bool("ports_changed", changed),
	)
}

// LogSyncError logs a recomputation that could not be written (non-fatal).
func LogSyncError(logger *slog.Logger, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("port sync failed",
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogSubmitComplete logs a successful pipeline submission.
func LogSubmitComplete(logger *slog.Logger, endpoint string, durationMs float64, nodes, edges int, isDAG bool) {
	if logger == nil {
		return
	}
	logger.Info("pipeline submitted",
		slog.String("endpoint", endpoint),
		slog.Float64("duration_ms", durationMs),
		slog.Int("num_nodes", nodes),
		slog.Int("num_edges", edges),
		slog.Bool("is_dag", isDAG),
	)
}

// LogSubmitError logs a failed pipeline submission.
func LogSubmitError(logger *slog.Logger, endpoint string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("pipeline submission failed",
		slog.String("endpoint", endpoint),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
