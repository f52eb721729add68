package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/malbeclabs/pathtracer/internal/apiserver/metrics"
	"github.com/malbeclabs/pathtracer/internal/walker"
)

// traceRequest is the POST /api/trace body (spec.md §6.3).
type traceRequest struct {
	Prefix      string `json:"prefix"`
	StartDevice string `json:"start_device"`
	VRF         string `json:"vrf"`
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	var req traceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, newInputError("trace", "malformed request body: "+err.Error()))
		return
	}
	if req.Prefix == "" {
		writeError(w, newInputError("trace", "prefix is required"))
		return
	}
	if req.StartDevice == "" {
		writeError(w, newInputError("trace", "start_device is required"))
		return
	}
	if _, ok := s.deps.Inventory.GetDevice(req.StartDevice); !ok {
		writeError(w, newNotFoundError("trace", "unknown device: "+req.StartDevice))
		return
	}

	result, err := s.deps.Walker.Trace(r.Context(), req.Prefix, req.StartDevice, req.VRF, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	recordTraceMetrics(req.StartDevice, result)
	s.recordHistory(r, "trace", req, result)
	writeJSON(w, http.StatusOK, result)
}

// recordTraceMetrics observes the longest published path length and
// counts each unreachable hop toward the Collector error tally of the
// device that hop names (spec.md §7: a CollectorError never aborts the
// trace, but it's still an operational signal worth counting).
func recordTraceMetrics(startDevice string, result *walker.TraceResult) {
	longest := 0
	for _, p := range result.Paths {
		if len(p.Hops) > longest {
			longest = len(p.Hops)
		}
		if p.EndReason == walker.EndUnreachable {
			device := startDevice
			if n := len(p.Hops); n > 0 {
				device = p.Hops[n-1].Device
			}
			metrics.RecordCollectorError(device)
		}
	}
	metrics.RecordTraceHops(longest)
}
