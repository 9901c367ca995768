package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/event"
)

// streamEvents handles GET /events (SSE). An optional ?types= parameter
// takes a comma-separated list of event types to receive.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("streaming not supported"))
		return
	}

	ch := make(chan event.Event, s.eventBuffer)
	handler := event.HandlerFunc(func(_ context.Context, evt event.Event) error {
		select {
		case ch <- evt:
		default:
			s.logger.Warn("SSE client buffer full, dropping event", "type", evt.Type())
		}
		return nil
	})

	var sub event.Subscription
	if types := parseTypes(r.URL.Query().Get("types")); len(types) > 0 {
		sub = s.bus.Subscribe(types, handler)
	} else {
		sub = s.bus.SubscribeAll(handler)
	}
	if sub == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, fmt.Errorf("event stream unavailable"))
		return
	}
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE client connected", "subscriber", sub.ID())

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected", "subscriber", sub.ID())
			return
		case <-s.done:
			return
		case evt := <-ch:
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", evt.ID(), evt.Type(), evt.DataBytes())
			flusher.Flush()
		}
	}
}

func parseTypes(raw string) []string {
	var types []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return types
}
