package apiserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/malbeclabs/pathtracer/internal/failsim"
	"github.com/malbeclabs/pathtracer/internal/walker"
)

// simulateRequest is the POST /api/simulate/failure body (spec.md §6.3).
type simulateRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	FailedNode  string `json:"failed_node"`
	VRF         string `json:"vrf"`
}

type failsimTracer struct{ w Walker }

func (t failsimTracer) Trace(ctx context.Context, prefix, start, vrf string, excluded []string) (*walker.TraceResult, error) {
	return t.w.Trace(ctx, prefix, start, vrf, excluded)
}

var _ failsim.Tracer = failsimTracer{}

func (s *Server) handleSimulateFailure(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, newInputError("simulate_failure", "malformed request body: "+err.Error()))
		return
	}
	if req.Source == "" || req.Destination == "" || req.FailedNode == "" {
		writeError(w, newInputError("simulate_failure", "source, destination, and failed_node are required"))
		return
	}
	if _, ok := s.deps.Inventory.GetDevice(req.FailedNode); !ok {
		writeError(w, newNotFoundError("simulate_failure", "unknown device: "+req.FailedNode))
		return
	}

	result, err := failsim.SimulateFailure(r.Context(), failsimTracer{w: s.deps.Walker}, req.Source, req.Destination, req.FailedNode, req.VRF)
	if err != nil {
		writeError(w, err)
		return
	}

	s.recordHistory(r, "simulate_failure", req, result)
	writeJSON(w, http.StatusOK, result)
}
