package core

import (
	"fmt"
	"strconv"
)

// Palette is the fixed series colour cycle. Colour i is reused for every
// index congruent to i modulo len(Palette).
var Palette = []string{
	"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#ec4899", "#06b6d4",
	"#6366f1", "#84cc16", "#eab308", "#f97316", "#d946ef", "#14b8a6", "#0ea5e9",
	"#64748b", "#a855f7", "#fb7185", "#22c55e", "#3b82f6", "#f43f5e",
}

// ColorIndex maps a series (or slice) index onto the palette.
func ColorIndex(i int) int {
	return i % len(Palette)
}

// SeriesBinding is one plotted series.
type SeriesBinding struct {
	Key   string `json:"key"`
	Color int    `json:"color"`
	Hex   string `json:"hex"`
}

// Point is one (row label, series, value) triple for the renderer.
type Point struct {
	Row    int       `json:"row"`
	Label  string    `json:"label"`
	Series string    `json:"series"`
	Value  CellValue `json:"value"`
	Color  int       `json:"color"`
}

// View is the read-only projection of a workspace consumed by renderers.
type View struct {
	Kind              ChartKind       `json:"kind"`
	Axis              string          `json:"axis"`
	Series            []SeriesBinding `json:"series"`
	Rows              []int           `json:"rows"`
	Points            []Point         `json:"points"`
	HasRenderableData bool            `json:"hasRenderableData"`
	ShowLabels        bool            `json:"showLabels"`
	Title             string          `json:"title"`
}

// Drawable reports whether a renderer has anything to draw.
func (v View) Drawable() bool {
	return v.HasRenderableData && len(v.Series) > 0 && len(v.Points) > 0
}

// Labels returns the category label of every included row, in order.
func (v View) Labels() []string {
	labels := make([]string, 0, len(v.Rows))
	seen := make(map[int]bool, len(v.Rows))
	for _, p := range v.Points {
		if !seen[p.Row] {
			seen[p.Row] = true
			labels = append(labels, p.Label)
		}
	}
	return labels
}

// Project derives the binding view of d under roles for the given kind.
// It does not modify its inputs.
func Project(d Dataset, roles RoleAssignment, kind ChartKind) (View, error) {
	def, ok := LookupChartKind(kind)
	if !ok {
		return View{}, fmt.Errorf("%w: %q", ErrUnknownChartKind, kind)
	}

	roles = roles.pruned(d)
	v := View{Kind: kind, Axis: roles.Axis}

	for _, r := range d.rows {
		for _, s := range roles.Series {
			if !r[s].IsBlank() {
				v.HasRenderableData = true
				break
			}
		}
		if v.HasRenderableData {
			break
		}
	}

	if def.Proportional {
		projectProportional(&v, d, roles)
	} else {
		projectCategorical(&v, d, roles)
	}

	return v, nil
}

func rowLabel(d Dataset, axis string, i int) string {
	if axis == "" {
		return strconv.Itoa(i + 1)
	}
	return d.rows[i][axis].String()
}

func projectCategorical(v *View, d Dataset, roles RoleAssignment) {
	for i, s := range roles.Series {
		c := ColorIndex(i)
		v.Series = append(v.Series, SeriesBinding{Key: s, Color: c, Hex: Palette[c]})
	}
	if len(roles.Series) == 0 {
		return
	}

	for i := range d.rows {
		v.Rows = append(v.Rows, i)
		label := rowLabel(d, roles.Axis, i)
		for si, s := range roles.Series {
			v.Points = append(v.Points, Point{
				Row:    i,
				Label:  label,
				Series: s,
				Value:  d.rows[i][s],
				Color:  ColorIndex(si),
			})
		}
	}
}

// projectProportional keeps only rows whose first series value is a number
// greater than zero; slices are coloured by their position.
func projectProportional(v *View, d Dataset, roles RoleAssignment) {
	if len(roles.Series) == 0 {
		return
	}
	key := roles.Series[0]
	v.Series = []SeriesBinding{{Key: key, Color: ColorIndex(0), Hex: Palette[ColorIndex(0)]}}

	for i := range d.rows {
		val := d.rows[i][key]
		if f, ok := val.Float(); !ok || f <= 0 {
			continue
		}
		c := ColorIndex(len(v.Points))
		v.Rows = append(v.Rows, i)
		v.Points = append(v.Points, Point{
			Row:    i,
			Label:  rowLabel(d, roles.Axis, i),
			Series: key,
			Value:  val,
			Color:  c,
		})
	}
}
