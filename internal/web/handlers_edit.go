package web

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/chartbind/internal/core"
	"github.com/JonMunkholm/chartbind/internal/logging"
)

// snapshotOp is a service call that produces a new snapshot.
type snapshotOp func(id uuid.UUID) (core.Snapshot, error)

// respondSnapshot resolves the workspace ID, runs op and writes the result.
func (s *Server) respondSnapshot(w http.ResponseWriter, r *http.Request, op snapshotOp) {
	id, err := workspaceID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	snap, err := op(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// columnParam returns the {column} URL parameter, decoded.
func columnParam(r *http.Request) string {
	col := chi.URLParam(r, "column")
	if r.URL.RawPath == "" {
		return col
	}
	if dec, err := url.PathUnescape(col); err == nil {
		return dec
	}
	return col
}

func (s *Server) handleSetCell(w http.ResponseWriter, r *http.Request) {
	var req setCellRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		respondError(w, r, err)
		return
	}
	s.respondSnapshot(w, r, func(id uuid.UUID) (core.Snapshot, error) {
		return s.service.SetCell(r.Context(), id, *req.Row, req.Column, req.Value)
	})
}

func (s *Server) handleAddRow(w http.ResponseWriter, r *http.Request) {
	s.respondSnapshot(w, r, func(id uuid.UUID) (core.Snapshot, error) {
		return s.service.AddRow(r.Context(), id)
	})
}

func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	row, err := rowParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.respondSnapshot(w, r, func(id uuid.UUID) (core.Snapshot, error) {
		return s.service.DeleteRow(r.Context(), id, row)
	})
}

func (s *Server) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	s.respondSnapshot(w, r, func(id uuid.UUID) (core.Snapshot, error) {
		return s.service.AddColumn(r.Context(), id)
	})
}

func (s *Server) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	column := columnParam(r)
	s.respondSnapshot(w, r, func(id uuid.UUID) (core.Snapshot, error) {
		return s.service.DeleteColumn(r.Context(), id, column)
	})
}

func (s *Server) handleRenameColumn(w http.ResponseWriter, r *http.Request) {
	var req renameColumnRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		respondError(w, r, err)
		return
	}
	column := columnParam(r)
	s.respondSnapshot(w, r, func(id uuid.UUID) (core.Snapshot, error) {
		return s.service.RenameColumn(r.Context(), id, column, req.Name)
	})
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		respondError(w, r, err)
		return
	}
	dir := core.SortAsc
	if req.Direction != "" {
		var err error
		if dir, err = core.ParseSortDirection(req.Direction); err != nil {
			respondError(w, r, err)
			return
		}
	}
	s.respondSnapshot(w, r, func(id uuid.UUID) (core.Snapshot, error) {
		return s.service.Sort(r.Context(), id, req.Column, dir)
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.respondSnapshot(w, r, func(id uuid.UUID) (core.Snapshot, error) {
		return s.service.Reset(r.Context(), id)
	})
}

// handlePaste replaces the dataset with tab-delimited text.
func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	var req pasteRequest
	if err := decodeJSON(w, r, s.cfg.Workspace.MaxImportBytes, &req); err != nil {
		respondError(w, r, err)
		return
	}
	s.respondSnapshot(w, r, func(id uuid.UUID) (core.Snapshot, error) {
		snap, err := s.service.ImportText(r.Context(), id, req.Text)
		if err == nil {
			logging.WithFields(r.Context(), "workspace_id", id).
				Info("dataset imported", "source", core.SourcePaste, "rows", len(snap.Rows), "columns", len(snap.Columns))
		}
		return snap, err
	})
}

func (s *Server) handleSetAxis(w http.ResponseWriter, r *http.Request) {
	var req columnRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		respondError(w, r, err)
		return
	}
	s.respondSnapshot(w, r, func(id uuid.UUID) (core.Snapshot, error) {
		return s.service.SetAxis(r.Context(), id, req.Column)
	})
}

func (s *Server) handleToggleSeries(w http.ResponseWriter, r *http.Request) {
	var req columnRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		respondError(w, r, err)
		return
	}
	s.respondSnapshot(w, r, func(id uuid.UUID) (core.Snapshot, error) {
		return s.service.ToggleSeries(r.Context(), id, req.Column)
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		respondError(w, r, err)
		return
	}
	s.respondSnapshot(w, r, func(id uuid.UUID) (core.Snapshot, error) {
		return s.service.UpdateSettings(r.Context(), id, req.patch())
	})
}
