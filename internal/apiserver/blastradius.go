package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/malbeclabs/pathtracer/internal/blastradius"
)

// blastRadiusRequest is the POST /api/blast-radius body (spec.md §6.3).
type blastRadiusRequest struct {
	FailedNode string `json:"failed_node"`
}

func (s *Server) handleBlastRadius(w http.ResponseWriter, r *http.Request) {
	var req blastRadiusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, newInputError("blast_radius", "malformed request body: "+err.Error()))
		return
	}
	if req.FailedNode == "" {
		writeError(w, newInputError("blast_radius", "failed_node is required"))
		return
	}

	result, err := blastradius.Calculate(r.Context(), s.graph, req.FailedNode)
	if err != nil {
		writeError(w, err)
		return
	}

	s.recordHistory(r, "blast_radius", req, result)
	writeJSON(w, http.StatusOK, result)
}
