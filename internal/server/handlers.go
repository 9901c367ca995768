package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/nodes"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/submit"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/template"
)

// createNodeRequest is the body of POST /nodes.
type createNodeRequest struct {
	Type     string              `json:"type"`
	Position flowcanvas.Position `json:"position"`
	Data     map[string]any      `json:"data,omitempty"`
}

// createEdgeRequest is the body of POST /edges.
type createEdgeRequest struct {
	Source     string         `json:"source"`
	SourcePort string         `json:"sourcePort"`
	Target     string         `json:"target"`
	TargetPort string         `json:"targetPort"`
	Data       map[string]any `json:"data,omitempty"`
}

// setTextRequest is the body of PUT /nodes/{id}/text.
type setTextRequest struct {
	Text string `json:"text"`
}

// diagnosticsResponse reports a template node's parse state.
type diagnosticsResponse struct {
	NodeID string `json:"node_id"`
	template.Result
	// Pending is true while a text edit waits out the quiet period.
	Pending bool `json:"pending"`
	// Preview is the text rendered with the sample values given as query
	// parameters. Variables without a value keep their token.
	Preview string `json:"preview,omitempty"`
}

// deleteNodeResponse lists edges removed along with a node.
type deleteNodeResponse struct {
	RemovedEdges []flowcanvas.Edge `json:"removed_edges"`
}

// submitResponse wraps the parser service's answer.
type submitResponse struct {
	submit.Result
	Text string `json:"summary"`
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) getKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Kinds())
}

func (s *Server) createNode(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	n, err := s.catalog.NewNode(s.store, req.Type, req.Position, req.Data)
	if err == nil {
		err = s.store.AddNode(n)
	}
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	removed, err := s.store.RemoveNode(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	if removed == nil {
		removed = []flowcanvas.Edge{}
	}
	writeJSON(w, http.StatusOK, deleteNodeResponse{RemovedEdges: removed})
}

func (s *Server) moveNode(w http.ResponseWriter, r *http.Request) {
	var pos flowcanvas.Position
	if err := decode(r, &pos); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := s.store.MoveNode(chi.URLParam(r, "id"), pos); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setText stores the new text at once and schedules the port update.
// With ?flush=true the update runs before the response is written and the
// reply carries the resulting diagnostics.
func (s *Server) setText(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setTextRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	n, ok := s.store.Node(id)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, &flowcanvas.NodeError{NodeID: id, Op: "set_text", Err: flowcanvas.ErrNotFound})
		return
	}
	if !s.catalog.IsDynamic(n.Type) {
		err := fmt.Errorf("node type %q has no editable text: %w", n.Type, flowcanvas.ErrInvalidNode)
		s.writeError(w, r, statusFor(err), err)
		return
	}

	if err := s.store.UpdateNodeData(id, map[string]any{"text": req.Text}); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.sync.Sync(id, req.Text)

	if r.URL.Query().Get("flush") == "true" {
		s.sync.Flush(id)
		writeJSON(w, http.StatusOK, s.diagnostics(id, req.Text))
		return
	}
	writeJSON(w, http.StatusAccepted, s.diagnostics(id, req.Text))
}

func (s *Server) getDiagnostics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, ok := s.store.Node(id)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, &flowcanvas.NodeError{NodeID: id, Op: "diagnostics", Err: flowcanvas.ErrNotFound})
		return
	}
	if !s.catalog.IsDynamic(n.Type) {
		err := fmt.Errorf("node type %q has no template text: %w", n.Type, flowcanvas.ErrInvalidNode)
		s.writeError(w, r, statusFor(err), err)
		return
	}
	data, err := nodes.DecodeTemplate(n.Data)
	if err != nil {
		err = fmt.Errorf("node %s: %w: %w", id, flowcanvas.ErrInvalidNode, err)
		s.writeError(w, r, statusFor(err), err)
		return
	}

	q := r.URL.Query()
	samples := make(map[string]any, len(q))
	for name := range q {
		samples[name] = q.Get(name)
	}

	resp := s.diagnostics(id, data.Text)
	resp.Preview = template.Expand(data.Text, samples)
	writeJSON(w, http.StatusOK, resp)
}

// diagnostics reports the last applied parse, or parses text when the
// synchronizer has not applied anything for the node yet.
func (s *Server) diagnostics(id, text string) diagnosticsResponse {
	res, ok := s.sync.Diagnostics(id)
	if !ok {
		res = template.Parse(text)
	}
	return diagnosticsResponse{NodeID: id, Result: res, Pending: s.sync.Pending(id)}
}

func (s *Server) createEdge(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	e, err := s.store.ConnectWithData(req.Source, req.SourcePort, req.Target, req.TargetPort, req.Data)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) deleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveEdge(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// submit sends the current graph to the parser service. Pending text edits
// are not flushed; the graph is submitted as it stands.
func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	res, err := submit.SubmitStore(r.Context(), s.client, s.store)
	if err != nil {
		s.writeError(w, r, http.StatusBadGateway, fmt.Errorf("submit: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Result: *res, Text: res.Summary()})
}

func (s *Server) addDemo(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.AddDemoPipeline(s.store)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
