package apiserver

import "net/http"

// handleDomains implements GET /api/domains (§12 supplemented feature):
// the loaded routing-domain list, boundary list, and a vis.js-shaped
// topology export, mirroring graph_engine.py's get_domains/to_vis_json.
func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"domains":    s.deps.Inventory.Domains(),
		"boundaries": s.deps.Inventory.Boundaries(),
		"topology":   s.graph.ToVisJSON(),
	})
}
