package web

import (
	"net/http"

	"github.com/JonMunkholm/chartbind/internal/core"
)

// maxAuditLimit caps the audit listing page size.
const maxAuditLimit = 500

func (s *Server) handleChartKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.ChartKinds())
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Create(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/workspaces/"+snap.ID.String())
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	id, err := workspaceID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	snap, err := s.service.Get(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	id, err := workspaceID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.service.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleView returns the chart binding view consumed by renderers.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	id, err := workspaceID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	view, err := s.service.View(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleAudit lists the newest audit entries of a workspace.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	id, err := workspaceID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	limit := min(parseIntParam(r, "limit", 50), maxAuditLimit)
	entries, err := s.service.RecentAudit(id, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
