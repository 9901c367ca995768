package submit

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/observability"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
// Default: http.DefaultClient
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each Submit call. Zero means no client-side bound
// beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger for submission outcomes.
// Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = observability.EnrichLogger(logger, "submit")
	}
}

// WithMetrics sets the metrics recorder.
// Default: observability.NoopMetrics{}
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpans sets the span manager.
// Default: observability.NoopSpanManager{}
func WithSpans(sm observability.SpanManager) Option {
	return func(c *Client) {
		if sm != nil {
			c.spans = sm
		}
	}
}
