package apiserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleCollected implements GET /api/collected/{device} (spec.md §6.4,
// §12 supplemented feature): per-table collection timestamp, route
// count, and staleness for one device's on-disk cache.
func (s *Server) handleCollected(w http.ResponseWriter, r *http.Request) {
	device := chi.URLParam(r, "device")
	if device == "" {
		writeError(w, newInputError("collected", "device is required"))
		return
	}
	if _, ok := s.deps.Inventory.GetDevice(device); !ok {
		writeError(w, newNotFoundError("collected", "unknown device: "+device))
		return
	}

	status, err := s.deps.Collected.Status(device)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
