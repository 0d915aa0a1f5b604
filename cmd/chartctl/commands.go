package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/chartbind/internal/core"
	"github.com/JonMunkholm/chartbind/internal/render"
	"github.com/JonMunkholm/chartbind/internal/xlsx"
)

// bindingFlags override the inferred roles and chart settings.
type bindingFlags struct {
	axis     string
	series   []string
	kind     string
	title    string
	noLabels bool
	sortBy   string
	desc     bool
}

func (f *bindingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.axis, "axis", "", "Category axis column (default: inferred)")
	cmd.Flags().StringSliceVar(&f.series, "series", nil, "Data series columns (default: inferred)")
	cmd.Flags().StringVar(&f.kind, "kind", string(core.ChartBar), "Chart kind: bar, bar-horizontal, pie")
	cmd.Flags().StringVar(&f.title, "title", "", "Chart title")
	cmd.Flags().BoolVar(&f.noLabels, "no-labels", false, "Hide value labels")
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "Sort rows by this column before charting")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "Sort descending")
}

// apply builds a workspace from d with the overrides applied in the same
// order the editor would: sort, axis, series, then settings.
func (f *bindingFlags) apply(d core.Dataset) (core.Workspace, error) {
	ws := core.NewWorkspaceFrom(d, core.DefaultChartSettings())
	var err error

	if f.sortBy != "" {
		dir := core.SortAsc
		if f.desc {
			dir = core.SortDesc
		}
		if ws, err = ws.Sort(f.sortBy, dir); err != nil {
			return ws, err
		}
	}

	if f.axis != "" {
		if ws, err = ws.SetAxis(f.axis); err != nil {
			return ws, err
		}
	}

	if len(f.series) > 0 {
		current := ws.Roles().Series
		for _, c := range current {
			if !slices.Contains(f.series, c) {
				if ws, err = ws.ToggleSeries(c); err != nil {
					return ws, err
				}
			}
		}
		for _, c := range f.series {
			if !slices.Contains(current, c) {
				if ws, err = ws.ToggleSeries(c); err != nil {
					return ws, err
				}
			}
		}
	}

	if ws, err = ws.SetChartKind(core.ChartKind(f.kind)); err != nil {
		return ws, err
	}
	if f.title != "" {
		ws = ws.SetTitle(f.title)
	}
	return ws.SetShowLabels(!f.noLabels), nil
}

// loadDataset reads path as a workbook (.xlsx) or tab-delimited text.
// "-" reads text from stdin.
func loadDataset(cmd *cobra.Command, path string) (core.Dataset, error) {
	limit, err := cmd.Flags().GetInt64("max-bytes")
	if err != nil {
		limit = defaultMaxBytes
	}

	if path == "-" {
		return core.ReadPaste(cmd.InOrStdin(), limit)
	}

	f, err := os.Open(path)
	if err != nil {
		return core.Dataset{}, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return xlsx.Read(f, limit)
	}
	return core.ReadPaste(f, limit)
}

// userError replaces recoverable errors with their display text.
func userError(err error) error {
	if err == nil || !core.IsUserFacing(err) {
		return err
	}
	return errors.New(core.FormatUserError(err))
}

func newInspectCmd() *cobra.Command {
	var (
		asJSON bool
		flags  bindingFlags
	)

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show columns, inferred roles and the chart binding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDataset(cmd, args[0])
			if err != nil {
				return userError(err)
			}
			ws, err := flags.apply(d)
			if err != nil {
				return userError(err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"columns":          d.Columns(),
					"rows":             d.Rows(),
					"roles":            ws.Roles(),
					"seriesCandidates": core.SeriesCandidates(d, ws.Roles().Axis),
					"view":             ws.View(),
				})
			}
			return writeSummary(cmd.OutOrStdout(), ws)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	flags.register(cmd)
	return cmd
}

// writeSummary prints one line per column with its cell kinds and role.
func writeSummary(w io.Writer, ws core.Workspace) error {
	d := ws.Dataset()
	roles := ws.Roles()
	view := ws.View()

	fmt.Fprintf(w, "columns: %d  rows: %d\n", len(d.Columns()), d.Len())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tNUMBER\tTEXT\tEMPTY\tROLE")
	for _, c := range d.Columns() {
		counts := map[core.CellKind]int{}
		for _, row := range d.Rows() {
			counts[row[c].Kind()]++
		}
		role := "-"
		switch {
		case c == roles.Axis:
			role = "axis"
		case roles.IsSeries(c):
			role = "series"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", c,
			counts[core.KindNumber], counts[core.KindText], counts[core.KindEmpty], role)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "kind: %s  points: %d  drawable: %t\n", view.Kind, len(view.Points), view.Drawable())
	return err
}

func newRenderCmd() *cobra.Command {
	var (
		output   string
		format   string
		width    int
		height   int
		fontPath string
		flags    bindingFlags
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render the chart to a PNG or SVG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(output), ".")
			}
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			opts := render.Options{Width: width, Height: height}
			if fontPath != "" {
				if opts.Font, err = render.LoadFont(fontPath); err != nil {
					return err
				}
			}

			d, err := loadDataset(cmd, args[0])
			if err != nil {
				return userError(err)
			}
			ws, err := flags.apply(d)
			if err != nil {
				return userError(err)
			}

			return writeOutput(cmd, output, func(w io.Writer) error {
				return userError(render.Render(w, ws.View(), f, opts))
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "chart.png", "Output file (- for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "Image format: png, svg (default: from output extension)")
	cmd.Flags().IntVar(&width, "width", render.DefaultWidth, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", render.DefaultHeight, "Image height in pixels")
	cmd.Flags().StringVar(&fontPath, "font", "", "TrueType font for labels (needed for CJK text)")
	flags.register(cmd)
	return cmd
}

func newConvertCmd() *cobra.Command {
	var (
		output string
		sortBy string
		desc   bool
	)

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert between tab-delimited text and xlsx",
		Long: `convert writes the table to the output file. An .xlsx output produces a
workbook; anything else (including - for stdout) produces tab-delimited text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDataset(cmd, args[0])
			if err != nil {
				return userError(err)
			}

			if sortBy != "" {
				dir := core.SortAsc
				if desc {
					dir = core.SortDesc
				}
				if d, err = d.Sort(sortBy, dir); err != nil {
					return userError(err)
				}
			}

			return writeOutput(cmd, output, func(w io.Writer) error {
				if strings.EqualFold(filepath.Ext(output), ".xlsx") {
					return xlsx.Write(w, d)
				}
				return writeTSV(w, d)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file (- for stdout)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort rows by this column")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	return cmd
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the registered chart kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, k := range core.ChartKinds() {
				fmt.Fprintf(tw, "%s\t%s\n", k.Key, k.Label)
			}
			return tw.Flush()
		},
	}
}

// writeTSV writes d as header plus rows, tab-delimited, in display form.
// Tabs and newlines inside values are replaced with spaces.
func writeTSV(w io.Writer, d core.Dataset) error {
	clean := strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")
	columns := d.Columns()

	fields := make([]string, len(columns))
	for i, c := range columns {
		fields[i] = clean.Replace(c)
	}
	if _, err := io.WriteString(w, strings.Join(fields, "\t")+"\n"); err != nil {
		return err
	}

	for _, row := range d.Rows() {
		for i, c := range columns {
			fields[i] = clean.Replace(row[c].String())
		}
		if _, err := io.WriteString(w, strings.Join(fields, "\t")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// writeOutput streams fn to path, or stdout for "-". A failed write removes
// the partial file.
func writeOutput(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "-" {
		return fn(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return nil
}
