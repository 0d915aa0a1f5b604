package core

import "slices"

// DefaultTitle is the chart title of a new or reset workspace.
const DefaultTitle = "图表标题"

// ChartSettings are the presentation inputs of the binding view. They are
// not part of the dataset.
type ChartSettings struct {
	Kind       ChartKind `json:"kind"`
	ShowLabels bool      `json:"showLabels"`
	Title      string    `json:"title"`
}

// DefaultChartSettings returns a vertical bar chart with labels shown.
func DefaultChartSettings() ChartSettings {
	return ChartSettings{Kind: ChartBar, ShowLabels: true, Title: DefaultTitle}
}

// Workspace is one immutable snapshot of the editor state. Every method
// returns a new snapshot; on error the receiver is returned unchanged.
type Workspace struct {
	dataset  Dataset
	roles    RoleAssignment
	settings ChartSettings
}

// NewWorkspace returns the blank starting workspace.
func NewWorkspace() Workspace {
	d := DefaultDataset()
	return Workspace{
		dataset:  d,
		roles:    InferRoles(d, RoleAssignment{}),
		settings: DefaultChartSettings(),
	}
}

// NewWorkspaceFrom wraps an existing dataset, inferring roles from scratch.
func NewWorkspaceFrom(d Dataset, settings ChartSettings) Workspace {
	return Workspace{dataset: d, roles: InferRoles(d, RoleAssignment{}), settings: settings}
}

func (w Workspace) Dataset() Dataset        { return w.dataset }
func (w Workspace) Roles() RoleAssignment   { return w.roles.clone() }
func (w Workspace) Settings() ChartSettings { return w.settings }

// View projects the workspace for the rendering layer.
func (w Workspace) View() View {
	v, err := Project(w.dataset, w.roles, w.settings.Kind)
	if err != nil {
		// settings.Kind is validated on every write; fall back to bars.
		v, _ = Project(w.dataset, w.roles, ChartBar)
	}
	v.ShowLabels = w.settings.ShowLabels
	v.Title = w.settings.Title
	return v
}

// withSchema installs d and re-runs role inference starting from roles.
func (w Workspace) withSchema(d Dataset, roles RoleAssignment) Workspace {
	w.dataset = d
	w.roles = InferRoles(d, roles)
	return w
}

// SetCell edits one cell. Roles are not re-inferred for value edits.
func (w Workspace) SetCell(row int, column, raw string) Workspace {
	w.dataset = w.dataset.SetCell(row, column, raw)
	return w
}

func (w Workspace) AddRow() Workspace {
	w.dataset = w.dataset.AddRow()
	return w
}

func (w Workspace) DeleteRow(i int) Workspace {
	w.dataset = w.dataset.DeleteRow(i)
	return w
}

// AddColumn appends a blank column and returns its name.
func (w Workspace) AddColumn() (Workspace, string) {
	d, name := w.dataset.AddColumn()
	return w.withSchema(d, w.roles), name
}

// DeleteColumn removes name. Deleting the axis column clears the axis
// before roles are re-inferred.
func (w Workspace) DeleteColumn(name string) (Workspace, error) {
	d, err := w.dataset.DeleteColumn(name)
	if err != nil {
		return w, err
	}
	roles := w.roles.clone()
	if roles.Axis == name {
		roles.Axis = ""
	}
	return w.withSchema(d, roles), nil
}

// RenameColumn renames a column and every role reference to it.
func (w Workspace) RenameColumn(oldName, newName string) (Workspace, error) {
	d, err := w.dataset.RenameColumn(oldName, newName)
	if err != nil {
		return w, err
	}
	if d.HasColumn(oldName) {
		// no-op rename
		return w, nil
	}
	return w.withSchema(d, w.roles.renamed(oldName, newName)), nil
}

// Sort reorders rows by column.
func (w Workspace) Sort(column string, dir SortDirection) (Workspace, error) {
	d, err := w.dataset.Sort(column, dir)
	if err != nil {
		return w, err
	}
	w.dataset = d
	return w, nil
}

// ReplaceDataset installs d wholesale and infers roles from a clean state.
func (w Workspace) ReplaceDataset(d Dataset) Workspace {
	return w.withSchema(d, RoleAssignment{})
}

// ImportText parses pasted text and replaces the dataset.
func (w Workspace) ImportText(text string) (Workspace, error) {
	d, err := ParsePaste(text)
	if err != nil {
		return w, err
	}
	return w.ReplaceDataset(d), nil
}

// Reset restores the blank dataset, default roles and default title. The
// chart kind and label visibility are kept.
func (w Workspace) Reset() Workspace {
	d := DefaultDataset()
	w.dataset = d
	w.roles = RoleAssignment{Axis: DefaultAxisColumn, Series: []string{DefaultSeriesColumn}}
	w.settings.Title = DefaultTitle
	return w
}

// SetAxis selects column as the category axis. The column leaves the series
// selection; an emptied selection is refilled with the first candidate.
func (w Workspace) SetAxis(column string) (Workspace, error) {
	if !w.dataset.HasColumn(column) {
		return w, newSchemaError("set axis", column, ErrColumnNotFound)
	}

	series := slices.DeleteFunc(slices.Clone(w.roles.Series), func(s string) bool { return s == column })
	if len(series) == 0 {
		if c := SeriesCandidates(w.dataset, column); len(c) > 0 {
			series = []string{c[0]}
		}
	}

	w.roles = RoleAssignment{Axis: column, Series: series}
	return w, nil
}

// ToggleSeries adds column to the series selection or removes it. An empty
// selection is allowed; the view then has nothing to render.
func (w Workspace) ToggleSeries(column string) (Workspace, error) {
	if !w.dataset.HasColumn(column) {
		return w, newSchemaError("toggle series", column, ErrColumnNotFound)
	}
	if column == w.roles.Axis {
		return w, newSchemaError("toggle series", column, ErrAxisAsSeries)
	}

	roles := w.roles.clone()
	if i := slices.Index(roles.Series, column); i >= 0 {
		roles.Series = slices.Delete(roles.Series, i, i+1)
	} else {
		roles.Series = append(roles.Series, column)
	}
	w.roles = roles
	return w, nil
}

func (w Workspace) SetChartKind(kind ChartKind) (Workspace, error) {
	if _, ok := LookupChartKind(kind); !ok {
		return w, ErrUnknownChartKind
	}
	w.settings.Kind = kind
	return w, nil
}

func (w Workspace) SetShowLabels(show bool) Workspace {
	w.settings.ShowLabels = show
	return w
}

// SetTitle stores title verbatim, including an empty title.
func (w Workspace) SetTitle(title string) Workspace {
	w.settings.Title = title
	return w
}
