package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/malbeclabs/pathtracer/internal/reverse"
)

// compareRequest is the POST /api/trace/compare body (spec.md §6.3).
type compareRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	VRF         string `json:"vrf"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, newInputError("trace_compare", "malformed request body: "+err.Error()))
		return
	}
	if req.Source == "" || req.Destination == "" {
		writeError(w, newInputError("trace_compare", "source and destination are required"))
		return
	}
	if _, ok := s.deps.Inventory.GetDevice(req.Source); !ok {
		writeError(w, newNotFoundError("trace_compare", "unknown device: "+req.Source))
		return
	}
	if _, ok := s.deps.Inventory.GetDevice(req.Destination); !ok {
		writeError(w, newNotFoundError("trace_compare", "unknown device: "+req.Destination))
		return
	}

	result, err := reverse.TraceReverse(r.Context(), reverseTracer{w: s.deps.Walker}, req.Source, req.Destination, req.VRF)
	if err != nil {
		writeError(w, err)
		return
	}

	s.recordHistory(r, "reverse", req, result)
	writeJSON(w, http.StatusOK, result)
}
