package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/chartbind/internal/core"
)

func viewOf(t *testing.T, text string, kind core.ChartKind) core.View {
	t.Helper()
	d, err := core.ParsePaste(text)
	require.NoError(t, err)

	ws := core.NewWorkspaceFrom(d, core.ChartSettings{Kind: kind, ShowLabels: true, Title: "产量"})
	return ws.View()
}

func TestRender_PNG(t *testing.T) {
	tests := []struct {
		name string
		kind core.ChartKind
		text string
	}{
		{"bar single series", core.ChartBar, "name\tvalue\nA\t100\nB\t200"},
		{"bar negative values", core.ChartBar, "name\tvalue\nA\t-3\nB\t7"},
		{"bar all zero", core.ChartBar, "name\tvalue\nA\t0\nB\t0"},
		{"horizontal", core.ChartBarHorizontal, "name\tvalue\nA\t100\nB\t200"},
		{"pie", core.ChartPie, "name\tvalue\nA\t1\nB\t3\nC\t-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viewOf(t, tt.text, tt.kind)

			var buf bytes.Buffer
			require.NoError(t, Render(&buf, v, FormatPNG, Options{Width: 400, Height: 300}))

			img, err := png.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, 400, img.Bounds().Dx())
			assert.Equal(t, 300, img.Bounds().Dy())
		})
	}
}

func TestRender_SVG(t *testing.T) {
	v := viewOf(t, "name\tvalue\tgoal\nA\t1\t2\nB\t3\t4", core.ChartBar)
	require.Len(t, v.Series, 1, "first-row inference selects one series")

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, v, FormatSVG, Options{}))
	assert.Contains(t, buf.String(), "<svg")
}

func TestRender_NothingToRender(t *testing.T) {
	v := viewOf(t, "name\tvalue\nA\t\nB\t", core.ChartBar)
	require.False(t, v.HasRenderableData)

	err := Render(&bytes.Buffer{}, v, FormatPNG, Options{})
	assert.ErrorIs(t, err, core.ErrNothingToRender)

	pie := viewOf(t, "name\tvalue\nA\t-1\nB\t0", core.ChartPie)
	err = Render(&bytes.Buffer{}, pie, FormatPNG, Options{})
	assert.ErrorIs(t, err, core.ErrNothingToRender, "pie with no positive slices")
}

func TestPointLabel(t *testing.T) {
	p := core.Point{Label: "A", Series: "v", Value: core.Number(12.5)}

	assert.Equal(t, "A", pointLabel(core.View{Series: make([]core.SeriesBinding, 1)}, p))
	assert.Equal(t, "A 12.5", pointLabel(core.View{Series: make([]core.SeriesBinding, 1), ShowLabels: true}, p))
	assert.Equal(t, "A/v", pointLabel(core.View{Series: make([]core.SeriesBinding, 2)}, p))
}

func TestPointValue(t *testing.T) {
	assert.Equal(t, 3.0, pointValue(core.Point{Value: core.Number(3)}))
	assert.Equal(t, 0.0, pointValue(core.Point{Value: core.Text("x")}))
	assert.Equal(t, 0.0, pointValue(core.Point{Value: core.Coerce("Infinity")}))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PNG")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)
	assert.Equal(t, "image/png", f.ContentType())

	f, err = ParseFormat("svg")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	_, err = ParseFormat("gif")
	assert.Error(t, err)
}

func TestLoadFont_Missing(t *testing.T) {
	_, err := LoadFont("/nonexistent/font.ttf")
	assert.Error(t, err)
}
