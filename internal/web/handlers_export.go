package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/chartbind/internal/core"
	"github.com/JonMunkholm/chartbind/internal/logging"
	"github.com/JonMunkholm/chartbind/internal/render"
	"github.com/JonMunkholm/chartbind/internal/xlsx"
)

const formatXLSX = "xlsx"

// handleExport renders the chart (png, svg) or the dataset (xlsx).
// Output is buffered so failures still produce a proper error response.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, err := workspaceID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	format := strings.ToLower(chi.URLParam(r, "format"))
	var (
		buf         bytes.Buffer
		contentType string
		filename    string
		export      func(core.Workspace) error
	)

	if format == formatXLSX {
		contentType, filename = xlsx.ContentType, "data.xlsx"
		export = func(ws core.Workspace) error {
			return xlsx.Write(&buf, ws.Dataset())
		}
	} else {
		f, err := render.ParseFormat(format)
		if err != nil {
			respondError(w, r, badRequest("%v", err))
			return
		}
		contentType, filename = f.ContentType(), "chart."+string(f)
		export = func(ws core.Workspace) error {
			return render.Render(&buf, ws.View(), f, s.renderOpts)
		}
	}

	if err := s.service.Export(r.Context(), id, format, export); err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.Write(buf.Bytes())
}

// handleImportFile replaces the dataset with an uploaded file: .xlsx goes
// through the workbook reader, anything else is read as tab-delimited text.
func (s *Server) handleImportFile(w http.ResponseWriter, r *http.Request) {
	id, err := workspaceID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	limit := s.cfg.Workspace.MaxImportBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = &core.ImportError{Source: core.SourceFile, Err: core.ErrInputTooLarge}
		} else {
			err = badRequest("parse form: %v", err)
		}
		respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, badRequest("missing file field"))
		return
	}
	defer file.Close()

	var (
		d      core.Dataset
		source string
	)
	if strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		source = core.SourceXLSX
		d, err = xlsx.Read(file, limit)
	} else {
		source = core.SourceFile
		d, err = core.ReadPaste(file, limit)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	snap, err := s.service.ImportDataset(r.Context(), id, source, d)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "workspace_id", id).Info("dataset imported",
		"source", source,
		"filename", header.Filename,
		"rows", d.Len(),
		"columns", len(d.Columns()),
	)
	writeJSON(w, http.StatusOK, snap)
}
