package core

import (
	"errors"
	"fmt"
)

// Schema failures.
var (
	ErrLastColumn      = errors.New("at least one column required")
	ErrDuplicateColumn = errors.New("name already exists")
	ErrColumnNotFound  = errors.New("column not found")
	ErrAxisAsSeries    = errors.New("axis column cannot be a series")
	ErrBlankColumnName = errors.New("column name must not be blank")
	ErrRaggedRow       = errors.New("row does not match column set")
)

// Import failures.
var (
	ErrInsufficientRows   = errors.New("insufficient rows: a header and at least one data row are required")
	ErrInputTooLarge      = errors.New("file too large")
	ErrUnreadableWorkbook = errors.New("unreadable workbook")
)

// Workspace and rendering failures.
var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrTooManyWorkspaces = errors.New("too many workspaces")
	ErrUnknownChartKind  = errors.New("unknown chart kind")
	ErrNothingToRender   = errors.New("nothing to render")
	ErrInvalidSortOrder  = errors.New("invalid sort direction")
)

// SchemaError reports a rejected column or role operation. The dataset the
// operation was applied to is left unchanged.
type SchemaError struct {
	Op     string
	Column string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("schema error: %s %q: %v", e.Op, e.Column, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func newSchemaError(op, column string, err error) *SchemaError {
	return &SchemaError{Op: op, Column: column, Err: err}
}

// ImportError reports pasted or uploaded content that could not become a
// dataset. Lines is the number of non-blank lines that were found.
type ImportError struct {
	Source string
	Lines  int
	Err    error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import error (%s, %d lines): %v", e.Source, e.Lines, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// IsUserError reports whether err is a recoverable user-input error that
// should be shown as a notification rather than treated as a failure.
func IsUserError(err error) bool {
	var se *SchemaError
	var ie *ImportError
	return errors.As(err, &se) || errors.As(err, &ie)
}
