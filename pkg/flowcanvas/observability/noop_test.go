package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestNoopMetrics verifies every recorder method is safe to call.
func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordMutation(ctx, "add_node", nil)
		m.RecordMutation(ctx, "connect", errors.New("duplicate edge"))
		m.RecordEdgesPruned(ctx, "set_ports", 3)
		m.RecordPortSync(ctx, "template-1", 2, true)
		m.RecordSubmit(ctx, false, 100*time.Millisecond)
	})
}

// TestNoopSpanManager verifies the context passes through untouched.
func TestNoopSpanManager(t *testing.T) {
	sm := NoopSpanManager{}
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	got, span := sm.StartSubmitSpan(ctx, "http://x", 1, 2)
	assert.Equal(t, ctx, got)
	assert.False(t, span.IsRecording())

	got, span = sm.StartSyncSpan(ctx, "template-1")
	assert.Equal(t, ctx, got)
	assert.NotPanics(t, func() { sm.EndSpanWithError(span, errors.New("boom")) })
}
