package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/observability"
)

// maxErrorBody caps how much of an error response is kept in HTTPError.Message.
const maxErrorBody = 512

// Client posts payloads to the parser service.
// Create with NewClient. Safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
}

// NewClient creates a client for endpoint. An empty endpoint uses DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		http:     http.DefaultClient,
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL the client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit posts p and decodes the service's summary.
//
// A non-2xx response returns *HTTPError, a malformed body *DecodeError, and a
// transport failure the wrapped transport error. Submit makes one attempt.
func (c *Client) Submit(ctx context.Context, p Payload) (*Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := c.spans.StartSubmitSpan(ctx, c.endpoint, len(p.Nodes), len(p.Edges))
	elapsed := observability.TimedOperation()

	res, err := c.post(ctx, p)

	ms := elapsed()
	c.metrics.RecordSubmit(ctx, err == nil, time.Duration(ms*float64(time.Millisecond)))
	c.spans.EndSpanWithError(span, err)
	if err != nil {
		observability.LogSubmitError(c.logger, c.endpoint, err, ms)
		return nil, err
	}
	observability.LogSubmitComplete(c.logger, c.endpoint, ms, res.NumNodes, res.NumEdges, res.IsDAG)
	return res, nil
}

func (c *Client) post(ctx context.Context, p Payload) (*Result, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, respBody),
			Endpoint:   c.endpoint,
		}
	}

	var res Result
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, &DecodeError{Body: truncate(string(respBody)), Err: err}
	}
	return &res, nil
}

// errorMessage picks a readable message from an error response.
func errorMessage(status int, body []byte) string {
	var detail struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(body, &detail) == nil {
		if detail.Error != "" {
			return detail.Error
		}
		if s, ok := detail.Detail.(string); ok && s != "" {
			return s
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return truncate(msg)
	}
	return http.StatusText(status)
}

func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody] + "..."
}

// SubmitStore snapshots store once and submits the snapshot.
// Edits made while the request is in flight are not part of it.
func SubmitStore(ctx context.Context, c *Client, store *flowcanvas.Store) (*Result, error) {
	return c.Submit(ctx, BuildPayload(store.Snapshot()))
}
