// Package render draws a binding view as a raster or vector image.
package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/golang/freetype/truetype"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/chartbind/internal/core"
)

// Format selects the output encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ParseFormat accepts "png" or "svg"; anything else is an error.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

const (
	DefaultWidth  = 960
	DefaultHeight = 540
)

// Options control canvas size and typeface. Zero values use the defaults
// and go-chart's built-in font, which has no CJK glyphs.
type Options struct {
	Width  int
	Height int
	Font   *truetype.Font
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// LoadFont parses a TrueType font file.
func LoadFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

// Render writes v to w. Views without drawable data fail with
// core.ErrNothingToRender.
func Render(w io.Writer, v core.View, format Format, opts Options) error {
	if !v.Drawable() {
		return core.ErrNothingToRender
	}
	def, ok := core.LookupChartKind(v.Kind)
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrUnknownChartKind, v.Kind)
	}

	rp := chart.PNG
	if format == FormatSVG {
		rp = chart.SVG
	}
	opts = opts.withDefaults()

	var err error
	switch {
	case def.Proportional:
		err = pieChart(v, opts).Render(rp, w)
	case def.Horizontal:
		err = horizontalChart(v, opts).Render(rp, w)
	default:
		err = barChart(v, opts).Render(rp, w)
	}
	if err != nil {
		return fmt.Errorf("render %s chart: %w", v.Kind, err)
	}
	return nil
}

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func pointValue(p core.Point) float64 {
	f, ok := p.Value.Float()
	if !ok || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// pointLabel is the category text under a bar or beside a slice.
func pointLabel(v core.View, p core.Point) string {
	label := p.Label
	if len(v.Series) > 1 {
		label += "/" + p.Series
	}
	if v.ShowLabels {
		label += " " + p.Value.String()
	}
	return label
}

func titleStyle(opts Options) chart.Style {
	return chart.Style{Font: opts.Font, FontSize: 16}
}

func barChart(v core.View, opts Options) chart.BarChart {
	bars := make([]chart.Value, 0, len(v.Points))
	lo, hi := 0.0, 0.0
	for _, p := range v.Points {
		val := pointValue(p)
		lo, hi = math.Min(lo, val), math.Max(hi, val)
		fill := color(core.Palette[p.Color])
		bars = append(bars, chart.Value{
			Label: pointLabel(v, p),
			Value: val,
			Style: chart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 1},
		})
	}
	if hi == lo {
		hi = lo + 1
	}

	return chart.BarChart{
		Title:      v.Title,
		TitleStyle: titleStyle(opts),
		Font:       opts.Font,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   max(8, opts.Width/(2*max(1, len(bars)))),
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Bars:       bars,
	}
}

// horizontalChart draws one bar per category; multiple series are stacked
// within it. Negative values cannot be stacked and are drawn as zero.
func horizontalChart(v core.View, opts Options) chart.StackedBarChart {
	var bars []chart.StackedBar
	index := make(map[int]int)
	for _, p := range v.Points {
		i, ok := index[p.Row]
		if !ok {
			label := p.Label
			if v.ShowLabels && len(v.Series) == 1 {
				label += " " + p.Value.String()
			}
			i = len(bars)
			index[p.Row] = i
			bars = append(bars, chart.StackedBar{Name: label})
		}
		fill := color(core.Palette[p.Color])
		bars[i].Values = append(bars[i].Values, chart.Value{
			Label: p.Series,
			Value: math.Max(0, pointValue(p)),
			Style: chart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 1},
		})
	}

	return chart.StackedBarChart{
		Title:        v.Title,
		TitleStyle:   titleStyle(opts),
		Font:         opts.Font,
		Width:        opts.Width,
		Height:       opts.Height,
		Background:   chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		IsHorizontal: true,
		Bars:         bars,
	}
}

func pieChart(v core.View, opts Options) chart.PieChart {
	values := make([]chart.Value, 0, len(v.Points))
	for _, p := range v.Points {
		fill := color(core.Palette[p.Color])
		label := p.Label
		if v.ShowLabels {
			label += " " + p.Value.String()
		}
		values = append(values, chart.Value{
			Label: label,
			Value: pointValue(p),
			Style: chart.Style{FillColor: fill, StrokeColor: drawing.ColorWhite, StrokeWidth: 2},
		})
	}

	return chart.PieChart{
		Title:      v.Title,
		TitleStyle: titleStyle(opts),
		Font:       opts.Font,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		Values:     values,
	}
}
