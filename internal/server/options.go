package server

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/event"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/nodes"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/portsync"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/submit"
)

// Option configures a Server.
type Option func(*Server)

// WithCatalog sets the node kinds clients may create.
// Default: nodes.DefaultCatalog()
func WithCatalog(c *nodes.Catalog) Option {
	return func(s *Server) {
		s.catalog = c
	}
}

// WithSynchronizer sets the port synchronizer for template text edits.
// The caller keeps ownership. It must be attached to the server's store.
// Default: a synchronizer with the default quiet period, closed by Close.
func WithSynchronizer(ps *portsync.Synchronizer) Option {
	return func(s *Server) {
		s.sync = ps
	}
}

// WithSubmitClient sets the parser service client.
// Default: submit.NewClient("")
func WithSubmitClient(c *submit.Client) Option {
	return func(s *Server) {
		s.client = c
	}
}

// WithBus sets the bus GET /events reads from. The caller keeps ownership
// and must bridge the store to it.
// Default: a non-blocking bus bridged to the store, closed by Close.
func WithBus(b *event.LocalBus) Option {
	return func(s *Server) {
		s.bus = b
	}
}

// WithEventBuffer sets the per-client buffer of GET /events and of the
// default bus. Non-positive values are ignored.
// Default: 64
func WithEventBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.eventBuffer = n
		}
	}
}

// WithLogger sets the request logger.
// Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry sets the registry HTTP metrics are registered on and
// GET /metrics serves.
// Default: a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}
