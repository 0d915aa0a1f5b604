package core

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortDirection orders rows ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortLocale is the collation locale used for text comparisons.
var SortLocale = language.Chinese

// ParseSortDirection accepts "asc" or "desc" in any case.
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(s))) {
	case SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortOrder, s)
}

// Label returns the user-facing name of the direction.
func (d SortDirection) Label() string {
	if d == SortDesc {
		return "降序"
	}
	return "升序"
}

// compareCells orders two cells: numerically when both are numbers, by
// collated display string otherwise.
func compareCells(col *collate.Collator, a, b CellValue) int {
	if x, ok := a.Float(); ok {
		if y, ok := b.Float(); ok {
			return cmp.Compare(x, y)
		}
	}
	return col.CompareString(a.String(), b.String())
}

// Sort returns a copy of d with rows stably ordered by column. Rows with
// equal keys keep their relative order.
func (d Dataset) Sort(column string, dir SortDirection) (Dataset, error) {
	if !d.HasColumn(column) {
		return d, newSchemaError("sort", column, ErrColumnNotFound)
	}
	if dir != SortAsc && dir != SortDesc {
		return d, fmt.Errorf("%w: %q", ErrInvalidSortOrder, dir)
	}

	// Collators keep internal buffers and are not safe for concurrent use.
	col := collate.New(SortLocale)

	rows := slices.Clone(d.rows)
	slices.SortStableFunc(rows, func(a, b Row) int {
		c := compareCells(col, a[column], b[column])
		if dir == SortDesc {
			return -c
		}
		return c
	})

	return d.withRows(rows), nil
}
