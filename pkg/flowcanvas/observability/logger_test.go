package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCaptureLogger returns a JSON logger writing into a buffer at debug level.
func newCaptureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// lastRecord decodes the last JSON line written to buf.
func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &rec))
	return rec
}

// TestLogHelpers_NilLogger verifies every helper tolerates a nil logger.
func TestLogHelpers_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Nil(t, EnrichLogger(nil, "store"))
		LogNodeAdded(nil, "a", "input", 1)
		LogNodeRemoved(nil, "a", 2)
		LogEdgeAdded(nil, "e", "a", "value", "b", "value")
		LogMutationRejected(nil, "connect", errors.New("x"))
		LogPortsReplaced(nil, "a", "in", 1, 0)
		LogSyncScheduled(nil, "a", time.Millisecond, true)
		LogSyncApplied(nil, "a", []string{"x"}, nil, true)
		LogSyncError(nil, "a", errors.New("x"))
		LogSubmitComplete(nil, "e", 1, 1, 1, true)
		LogSubmitError(nil, "e", errors.New("x"), 1)
	})
}

// TestEnrichLogger verifies the component attribute is attached.
func TestEnrichLogger(t *testing.T) {
	logger, buf := newCaptureLogger()

	EnrichLogger(logger, "portsync").Info("hello")

	rec := lastRecord(t, buf)
	assert.Equal(t, "portsync", rec["component"])
}

// TestLogNodeRemoved verifies fields and level.
func TestLogNodeRemoved(t *testing.T) {
	logger, buf := newCaptureLogger()

	LogNodeRemoved(logger, "input-1", 3)

	rec := lastRecord(t, buf)
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "node removed", rec["msg"])
	assert.Equal(t, "input-1", rec["node_id"])
	assert.Equal(t, float64(3), rec["edges_pruned"])
}

// TestLogMutationRejected verifies rejections log at warn with the error text.
func TestLogMutationRejected(t *testing.T) {
	logger, buf := newCaptureLogger()

	LogMutationRejected(logger, "connect", errors.New("invalid endpoint"))

	rec := lastRecord(t, buf)
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "connect", rec["operation"])
	assert.Equal(t, "invalid endpoint", rec["error"])
}

// TestLogSubmitError verifies submission failures log at error.
func TestLogSubmitError(t *testing.T) {
	logger, buf := newCaptureLogger()

	LogSubmitError(logger, "http://x", errors.New("connection refused"), 12.5)

	rec := lastRecord(t, buf)
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "http://x", rec["endpoint"])
	assert.Equal(t, 12.5, rec["duration_ms"])
}

// TestTimedOperation verifies elapsed time is non-negative and grows.
func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(2 * time.Millisecond)
	assert.GreaterOrEqual(t, done(), 1.0)
}
