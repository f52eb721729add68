package apiserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/malbeclabs/pathtracer/internal/history"
)

// recordHistory best-effort saves a completed operation. A history-store
// failure never fails the request it's recording — it's purely
// informational (mirrors the PluginError policy in spec.md §7: logged,
// never on the hot path).
func (s *Server) recordHistory(r *http.Request, kind history.Kind, input, result any) {
	in, err := json.Marshal(input)
	if err != nil {
		s.deps.Log.Warn("history: marshal input failed", "kind", kind, "error", err)
		return
	}
	out, err := json.Marshal(result)
	if err != nil {
		s.deps.Log.Warn("history: marshal result failed", "kind", kind, "error", err)
		return
	}
	rec := history.Record{Kind: kind, Input: in, Result: out}
	if err := s.deps.History.Save(r.Context(), rec); err != nil {
		s.deps.Log.Warn("history: save failed", "kind", kind, "error", err)
	}
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	kind := history.Kind(r.URL.Query().Get("kind"))
	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

	page, err := s.deps.History.List(r.Context(), kind, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		writeError(w, newInputError("history_get", "malformed id: "+idParam))
		return
	}
	rec, ok, err := s.deps.History.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
