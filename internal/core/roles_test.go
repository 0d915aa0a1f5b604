package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferRoles(t *testing.T) {
	tests := []struct {
		name       string
		columns    []string
		first      []string
		prev       RoleAssignment
		wantAxis   string
		wantSeries []string
	}{
		{
			name:       "text then number",
			columns:    []string{"名称", "数值"},
			first:      []string{"车间A", "100"},
			wantAxis:   "名称",
			wantSeries: []string{"数值"},
		},
		{
			name:       "blank first row",
			columns:    []string{"名称", "数值"},
			first:      []string{"", ""},
			wantAxis:   "名称",
			wantSeries: []string{"数值"},
		},
		{
			name:       "axis found after numbers",
			columns:    []string{"a", "b", "label"},
			first:      []string{"1", "2", "x"},
			wantAxis:   "label",
			wantSeries: []string{"a"},
		},
		{
			name:       "all numeric forces first column",
			columns:    []string{"a", "b", "c"},
			first:      []string{"1", "2", "3"},
			wantAxis:   "a",
			wantSeries: []string{"b"},
		},
		{
			name:       "existing axis kept",
			columns:    []string{"a", "b", "c"},
			first:      []string{"x", "2", "3"},
			prev:       RoleAssignment{Axis: "b"},
			wantAxis:   "b",
			wantSeries: []string{"c"},
		},
		{
			name:       "previous series kept when all valid",
			columns:    []string{"k", "v1", "v2", "v3"},
			first:      []string{"x", "1", "2", "3"},
			prev:       RoleAssignment{Axis: "k", Series: []string{"v3", "v1"}},
			wantAxis:   "k",
			wantSeries: []string{"v3", "v1"},
		},
		{
			name:       "previous series reset when one is no longer a candidate",
			columns:    []string{"k", "v1", "note"},
			first:      []string{"x", "1", "text"},
			prev:       RoleAssignment{Axis: "k", Series: []string{"v1", "note"}},
			wantAxis:   "k",
			wantSeries: []string{"v1"},
		},
		{
			name:       "stale series pruned first",
			columns:    []string{"k", "v1", "v2"},
			first:      []string{"x", "1", "2"},
			prev:       RoleAssignment{Axis: "k", Series: []string{"gone", "v2"}},
			wantAxis:   "k",
			wantSeries: []string{"v2"},
		},
		{
			name:       "stale axis replaced",
			columns:    []string{"k", "v"},
			first:      []string{"x", "1"},
			prev:       RoleAssignment{Axis: "gone", Series: []string{"v"}},
			wantAxis:   "k",
			wantSeries: []string{"v"},
		},
		{
			name:       "no candidates leaves series empty",
			columns:    []string{"k", "t"},
			first:      []string{"x", "y"},
			wantAxis:   "k",
			wantSeries: nil,
		},
		{
			name:       "single column",
			columns:    []string{"only"},
			first:      []string{"5"},
			wantAxis:   "only",
			wantSeries: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := datasetOf(t, tt.columns, tt.first)
			got := InferRoles(d, tt.prev)
			assert.Equal(t, tt.wantAxis, got.Axis)
			assert.Equal(t, tt.wantSeries, got.Series)
			assert.False(t, got.IsSeries(got.Axis), "axis must not be a series")
		})
	}
}

func TestInferRoles_OnlyFirstRowConsulted(t *testing.T) {
	// First row blank in "v", later rows numeric; "t" is text later but blank
	// first. Both are candidates; the first one wins.
	d := datasetOf(t, []string{"k", "t", "v"},
		[]string{"a", "", ""},
		[]string{"b", "text", "5"},
	)
	got := InferRoles(d, RoleAssignment{})
	assert.Equal(t, "k", got.Axis)
	assert.Equal(t, []string{"t"}, got.Series)
}

func TestSeriesCandidates(t *testing.T) {
	d := datasetOf(t, []string{"k", "n", "t", "b"}, []string{"x", "1", "y", ""})
	assert.Equal(t, []string{"n", "b"}, SeriesCandidates(d, "k"))
	assert.Equal(t, []string{"n", "b"}, SeriesCandidates(d, ""))
}

func TestRoleAssignment_Renamed(t *testing.T) {
	r := RoleAssignment{Axis: "a", Series: []string{"b", "c"}}
	got := r.renamed("b", "z")
	assert.Equal(t, RoleAssignment{Axis: "a", Series: []string{"z", "c"}}, got)
	// original untouched
	assert.Equal(t, []string{"b", "c"}, r.Series)
}
