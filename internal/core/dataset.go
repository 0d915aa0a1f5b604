package core

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Default schema of a new workspace.
const (
	DefaultAxisColumn   = "名称"
	DefaultSeriesColumn = "数值"
	DefaultRowCount     = 3
)

// Row maps every column name of its dataset to a cell.
type Row map[string]CellValue

// Clone returns an independent copy of r.
func (r Row) Clone() Row {
	return maps.Clone(r)
}

// Dataset is an immutable table: ordered unique column names and rows that
// all carry exactly those columns. Every operation returns a new Dataset and
// leaves the receiver untouched; unchanged rows are shared between versions
// and must never be written to.
type Dataset struct {
	columns []string
	rows    []Row
}

// NewDataset validates columns and rows and returns the dataset.
// Rows are copied.
func NewDataset(columns []string, rows []Row) (Dataset, error) {
	if len(columns) == 0 {
		return Dataset{}, newSchemaError("create", "", ErrLastColumn)
	}

	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if strings.TrimSpace(c) == "" {
			return Dataset{}, newSchemaError("create", c, ErrBlankColumnName)
		}
		if seen[c] {
			return Dataset{}, newSchemaError("create", c, ErrDuplicateColumn)
		}
		seen[c] = true
	}

	out := make([]Row, len(rows))
	for i, r := range rows {
		if len(r) != len(columns) {
			return Dataset{}, newSchemaError("create", "", fmt.Errorf("row %d: %w", i, ErrRaggedRow))
		}
		for _, c := range columns {
			if _, ok := r[c]; !ok {
				return Dataset{}, newSchemaError("create", c, fmt.Errorf("row %d: %w", i, ErrRaggedRow))
			}
		}
		out[i] = r.Clone()
	}

	return Dataset{columns: slices.Clone(columns), rows: out}, nil
}

// DefaultDataset returns the blank 3-row, 2-column starting table.
func DefaultDataset() Dataset {
	columns := []string{DefaultAxisColumn, DefaultSeriesColumn}
	rows := make([]Row, DefaultRowCount)
	for i := range rows {
		rows[i] = blankRow(columns)
	}
	return Dataset{columns: columns, rows: rows}
}

func blankRow(columns []string) Row {
	r := make(Row, len(columns))
	for _, c := range columns {
		r[c] = Text("")
	}
	return r
}

// Columns returns the column names in display order.
func (d Dataset) Columns() []string {
	return slices.Clone(d.columns)
}

// Rows returns copies of all rows in order.
func (d Dataset) Rows() []Row {
	out := make([]Row, len(d.rows))
	for i, r := range d.rows {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.rows) }

// Row returns a copy of row i.
func (d Dataset) Row(i int) (Row, bool) {
	if i < 0 || i >= len(d.rows) {
		return nil, false
	}
	return d.rows[i].Clone(), true
}

// Cell returns the value at row i, column col.
func (d Dataset) Cell(i int, col string) (CellValue, bool) {
	if i < 0 || i >= len(d.rows) {
		return CellValue{}, false
	}
	v, ok := d.rows[i][col]
	return v, ok
}

// ColumnIndex returns the position of name or -1.
func (d Dataset) ColumnIndex(name string) int {
	return slices.Index(d.columns, name)
}

// HasColumn reports whether name is a column.
func (d Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// Equal reports whether both datasets have the same columns in the same
// order and identical rows.
func (d Dataset) Equal(other Dataset) bool {
	if !slices.Equal(d.columns, other.columns) || len(d.rows) != len(other.rows) {
		return false
	}
	for i := range d.rows {
		if !maps.Equal(d.rows[i], other.rows[i]) {
			return false
		}
	}
	return true
}

// SetCell stores Coerce(raw) at (row, column). Out-of-range coordinates
// leave the dataset unchanged.
func (d Dataset) SetCell(row int, column, raw string) Dataset {
	if row < 0 || row >= len(d.rows) || !d.HasColumn(column) {
		return d
	}

	rows := slices.Clone(d.rows)
	r := rows[row].Clone()
	r[column] = Coerce(raw)
	rows[row] = r

	return Dataset{columns: d.columns, rows: rows}
}

// AddRow appends a blank row.
func (d Dataset) AddRow() Dataset {
	rows := make([]Row, len(d.rows), len(d.rows)+1)
	copy(rows, d.rows)
	rows = append(rows, blankRow(d.columns))
	return Dataset{columns: d.columns, rows: rows}
}

// DeleteRow removes row i. The sole remaining row is replaced by a blank
// row so the table always has something to render.
func (d Dataset) DeleteRow(i int) Dataset {
	if i < 0 || i >= len(d.rows) {
		return d
	}
	if len(d.rows) == 1 {
		return Dataset{columns: d.columns, rows: []Row{blankRow(d.columns)}}
	}
	return Dataset{columns: d.columns, rows: slices.Delete(slices.Clone(d.rows), i, i+1)}
}

// nextColumnName returns "列{N+1}", suffixed "_1", "_2", ... until unique.
func (d Dataset) nextColumnName() string {
	base := fmt.Sprintf("列%d", len(d.columns)+1)
	name := base
	for n := 1; d.HasColumn(name); n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	return name
}

// AddColumn appends a blank column and returns its generated name.
func (d Dataset) AddColumn() (Dataset, string) {
	name := d.nextColumnName()

	columns := append(slices.Clone(d.columns), name)
	rows := make([]Row, len(d.rows))
	for i, r := range d.rows {
		nr := r.Clone()
		nr[name] = Text("")
		rows[i] = nr
	}

	return Dataset{columns: columns, rows: rows}, name
}

// DeleteColumn removes name from the schema and from every row.
func (d Dataset) DeleteColumn(name string) (Dataset, error) {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return d, newSchemaError("delete column", name, ErrColumnNotFound)
	}
	if len(d.columns) == 1 {
		return d, newSchemaError("delete column", name, ErrLastColumn)
	}

	columns := slices.Delete(slices.Clone(d.columns), idx, idx+1)
	rows := make([]Row, len(d.rows))
	for i, r := range d.rows {
		nr := r.Clone()
		delete(nr, name)
		rows[i] = nr
	}

	return Dataset{columns: columns, rows: rows}, nil
}

// RenameColumn renames oldName in place, keeping its position. A blank or
// unchanged newName is a no-op.
func (d Dataset) RenameColumn(oldName, newName string) (Dataset, error) {
	idx := d.ColumnIndex(oldName)
	if idx < 0 {
		return d, newSchemaError("rename column", oldName, ErrColumnNotFound)
	}
	if strings.TrimSpace(newName) == "" || newName == oldName {
		return d, nil
	}
	if d.HasColumn(newName) {
		return d, newSchemaError("rename column", newName, ErrDuplicateColumn)
	}

	columns := slices.Clone(d.columns)
	columns[idx] = newName

	rows := make([]Row, len(d.rows))
	for i, r := range d.rows {
		nr := make(Row, len(r))
		for k, v := range r {
			if k == oldName {
				k = newName
			}
			nr[k] = v
		}
		rows[i] = nr
	}

	return Dataset{columns: columns, rows: rows}, nil
}

// withRows returns d with its rows replaced. Callers guarantee the rows
// match d's columns.
func (d Dataset) withRows(rows []Row) Dataset {
	return Dataset{columns: d.columns, rows: rows}
}
