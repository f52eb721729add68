package apiserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleOrigin implements GET /api/origin/{prefix}?start_device=…
// (spec.md §6.3): runs a trace and reports only the origin
// classification, discarding the full path tree.
func (s *Server) handleOrigin(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "prefix")
	startDevice := r.URL.Query().Get("start_device")
	vrf := r.URL.Query().Get("vrf")

	if prefix == "" {
		writeError(w, newInputError("origin", "prefix is required"))
		return
	}
	if startDevice == "" {
		writeError(w, newInputError("origin", "start_device is required"))
		return
	}
	if _, ok := s.deps.Inventory.GetDevice(startDevice); !ok {
		writeError(w, newNotFoundError("origin", "unknown device: "+startDevice))
		return
	}

	result, err := s.deps.Walker.Trace(r.Context(), prefix, startDevice, vrf, nil)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"prefix":        prefix,
		"origin_type":   result.OriginType,
		"origin_router": result.OriginRouter,
	})
}
