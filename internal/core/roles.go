package core

import "slices"

// RoleAssignment binds dataset columns to chart roles. Axis is "" when no
// category column is selected. Axis is never a member of Series.
type RoleAssignment struct {
	Axis   string   `json:"axis"`
	Series []string `json:"series"`
}

// HasAxis reports whether a category column is selected.
func (r RoleAssignment) HasAxis() bool { return r.Axis != "" }

// IsSeries reports whether col is an active series.
func (r RoleAssignment) IsSeries(col string) bool {
	return slices.Contains(r.Series, col)
}

// Equal compares axis and series order.
func (r RoleAssignment) Equal(other RoleAssignment) bool {
	return r.Axis == other.Axis && slices.Equal(r.Series, other.Series)
}

func (r RoleAssignment) clone() RoleAssignment {
	return RoleAssignment{Axis: r.Axis, Series: slices.Clone(r.Series)}
}

// pruned drops references to columns that no longer exist in d.
func (r RoleAssignment) pruned(d Dataset) RoleAssignment {
	out := RoleAssignment{}
	if d.HasColumn(r.Axis) {
		out.Axis = r.Axis
	}
	for _, s := range r.Series {
		if d.HasColumn(s) && s != out.Axis && !slices.Contains(out.Series, s) {
			out.Series = append(out.Series, s)
		}
	}
	return out
}

// renamed rewrites references to oldName.
func (r RoleAssignment) renamed(oldName, newName string) RoleAssignment {
	out := r.clone()
	if out.Axis == oldName {
		out.Axis = newName
	}
	for i, s := range out.Series {
		if s == oldName {
			out.Series[i] = newName
		}
	}
	return out
}

// firstRowValue returns the first-row cell of col, or Empty for an empty
// dataset.
func firstRowValue(d Dataset, col string) CellValue {
	if len(d.rows) == 0 {
		return CellValue{}
	}
	return d.rows[0][col]
}

// SeriesCandidates returns the non-axis columns whose first-row value is
// blank or numeric, in column order.
func SeriesCandidates(d Dataset, axis string) []string {
	var out []string
	for _, c := range d.columns {
		if c == axis {
			continue
		}
		if v := firstRowValue(d, c); v.IsBlank() || v.IsNumber() {
			out = append(out, c)
		}
	}
	return out
}

// InferRoles derives the role assignment for d, starting from prev. Only the
// first row is inspected, so an atypical first row can produce a choice the
// user has to correct manually.
//
//  1. An existing axis that still exists is kept.
//  2. Otherwise the first column whose first-row value is blank or text
//     becomes the axis; failing that, the first column.
//  3. Every other blank-or-numeric column is a series candidate.
//  4. The previous series survive if all of them are still candidates;
//     otherwise the selection falls back to the first candidate.
func InferRoles(d Dataset, prev RoleAssignment) RoleAssignment {
	if len(d.columns) == 0 {
		return RoleAssignment{}
	}

	prev = prev.pruned(d)

	axis := prev.Axis
	if axis == "" {
		for _, c := range d.columns {
			if !firstRowValue(d, c).IsNumber() {
				axis = c
				break
			}
		}
	}
	if axis == "" {
		axis = d.columns[0]
	}

	candidates := SeriesCandidates(d, axis)

	var series []string
	kept := slices.DeleteFunc(slices.Clone(prev.Series), func(s string) bool { return s == axis })
	switch {
	case len(kept) > 0 && allIn(kept, candidates):
		series = kept
	case len(candidates) > 0:
		series = []string{candidates[0]}
	}

	return RoleAssignment{Axis: axis, Series: series}
}

func allIn(items, set []string) bool {
	for _, it := range items {
		if !slices.Contains(set, it) {
			return false
		}
	}
	return true
}
