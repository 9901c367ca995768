package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/nodes"
)

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps store and catalog errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, flowcanvas.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, flowcanvas.ErrDuplicateID), errors.Is(err, flowcanvas.ErrDuplicateEdge):
		return http.StatusConflict
	case errors.Is(err, flowcanvas.ErrInvalidEndpoint),
		errors.Is(err, flowcanvas.ErrInvalidNode),
		errors.Is(err, nodes.ErrUnknownKind):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
