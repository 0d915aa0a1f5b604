package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/JonMunkholm/chartbind/internal/core"
)

// validate is shared by all request types.
var validate = validator.New(validator.WithRequiredStructEnabled())

// maxJSONBody bounds non-import request bodies.
const maxJSONBody = 64 * 1024

type setCellRequest struct {
	Row    *int   `json:"row" validate:"required,min=0"`
	Column string `json:"column" validate:"required,max=256"`
	Value  string `json:"value" validate:"max=4096"`
}

type renameColumnRequest struct {
	// A blank name leaves the column unchanged.
	Name string `json:"name" validate:"max=256"`
}

type sortRequest struct {
	Column    string `json:"column" validate:"required,max=256"`
	Direction string `json:"direction" validate:"omitempty,oneof=asc desc ASC DESC"`
}

type pasteRequest struct {
	Text string `json:"text"`
}

type columnRequest struct {
	Column string `json:"column" validate:"required,max=256"`
}

type settingsRequest struct {
	Kind       *string `json:"kind" validate:"omitempty,max=32"`
	ShowLabels *bool   `json:"showLabels"`
	Title      *string `json:"title" validate:"omitempty,max=200"`
}

func (r settingsRequest) patch() core.SettingsPatch {
	p := core.SettingsPatch{ShowLabels: r.ShowLabels, Title: r.Title}
	if r.Kind != nil {
		k := core.ChartKind(*r.Kind)
		p.Kind = &k
	}
	return p
}

// decodeJSON reads a JSON body of at most limit bytes into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &core.ImportError{Source: core.SourcePaste, Err: core.ErrInputTooLarge}
		}
		if errors.Is(err, io.EOF) {
			return badRequest("empty body")
		}
		return badRequest("decode body: %v", err)
	}

	if err := validate.Struct(v); err != nil {
		return badRequest("%v", err)
	}
	return nil
}

// workspaceID parses the {id} URL parameter. Malformed IDs are reported as
// not found.
func workspaceID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, core.ErrWorkspaceNotFound
	}
	return id, nil
}

// rowParam parses the {row} URL parameter.
func rowParam(r *http.Request) (int, error) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row < 0 {
		return 0, badRequest("row must be a non-negative integer")
	}
	return row, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
