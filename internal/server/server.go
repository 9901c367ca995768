// Package server exposes a flowcanvas graph over HTTP.
//
// The API mirrors what a canvas editor does: add and remove nodes, drag
// them, edit template text, wire ports together and submit the pipeline.
// Graph changes stream to clients as server-sent events on GET /events.
package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/event"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/nodes"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/observability"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/portsync"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/submit"
)

// Server serves one graph store.
// Create with New; call Close when done.
type Server struct {
	store   *flowcanvas.Store
	catalog *nodes.Catalog
	sync    *portsync.Synchronizer
	client  *submit.Client
	bus     *event.LocalBus

	eventBuffer int
	logger      *slog.Logger
	registry    *prometheus.Registry
	metrics     *httpMetrics

	// owned are cleanup functions for components New created itself.
	owned []func()

	closeOnce sync.Once
	done      chan struct{}
}

// New creates a server for store. Components not supplied through options
// are created with their defaults and released by Close.
func New(store *flowcanvas.Store, opts ...Option) *Server {
	s := &Server{
		store:       store,
		eventBuffer: 64,
		logger:      slog.New(slog.DiscardHandler),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.catalog == nil {
		s.catalog = nodes.DefaultCatalog()
	}
	if s.client == nil {
		s.client = submit.NewClient("")
	}
	if s.sync == nil {
		s.sync = portsync.New(store, portsync.WithLogger(s.logger))
		s.owned = append(s.owned, s.sync.Close)
	}
	if s.bus == nil {
		s.bus = event.NewBus(event.BusConfig{
			BufferSize:  s.eventBuffer,
			NonBlocking: true,
			OnDrop: func(evt event.Event, subscriberID string) {
				s.logger.Warn("event dropped", "subscriber", subscriberID, "type", evt.Type())
			},
		})
		stop := event.Bridge(store, s.bus)
		bus := s.bus
		s.owned = append(s.owned, stop, func() { _ = bus.Close() })
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.logger = observability.EnrichLogger(s.logger, "server")
	s.metrics = newHTTPMetrics(s.registry)

	return s
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	r.Use(s.metrics.middleware)

	r.Get("/health", s.getHealth)
	r.Get("/graph", s.getGraph)
	r.Get("/kinds", s.getKinds)

	r.Post("/nodes", s.createNode)
	r.Delete("/nodes/{id}", s.deleteNode)
	r.Patch("/nodes/{id}/position", s.moveNode)
	r.Put("/nodes/{id}/text", s.setText)
	r.Get("/nodes/{id}/diagnostics", s.getDiagnostics)

	r.Post("/edges", s.createEdge)
	r.Delete("/edges/{id}", s.deleteEdge)

	r.Post("/submit", s.submit)
	r.Post("/demo", s.addDemo)

	r.Get("/events", s.streamEvents)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// Close ends open event streams and releases components New created.
// Close is idempotent.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		for i := len(s.owned) - 1; i >= 0; i-- {
			s.owned[i]()
		}
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
