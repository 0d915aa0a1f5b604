// Package core provides the dataset model and chart binding logic.
//
// This package holds all domain logic independent of any UI or transport
// layer. It is used by the web handlers, the chartctl CLI and tests without
// modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Cells: [CellValue] is a tagged union of empty, number and text. Raw
//     input goes through [Coerce].
//   - Dataset: [Dataset] is an immutable table. Every edit returns a new
//     value with the same column set on every row.
//   - Roles: [InferRoles] picks the category axis and the value series from
//     the first row.
//   - Views: [Project] turns a dataset plus roles into the points a chart
//     renderer draws.
//   - Workspace: [Workspace] bundles dataset, roles and chart settings and
//     re-runs role inference after schema changes.
//   - Service: [Service] stores workspaces by ID, serializes mutations and
//     records an audit trail.
//
// # Chart Kinds
//
// Chart kinds are registered at init time using [RegisterChartKind]:
//
//	core.RegisterChartKind(ChartKindDef{
//	    Key:          "pie",
//	    Label:        "饼图",
//	    Proportional: true,
//	})
//
// # Import
//
// Pasted text is tab-delimited with one header line:
//
//	d, err := core.ParsePaste("名称\t数值\n车间A\t100\n车间B\t200")
//
// Files go through [ReadPaste], which strips a BOM, repairs invalid UTF-8
// and enforces a size limit before parsing.
//
// # Errors
//
// Recoverable input problems are [*SchemaError] and [*ImportError]. Use
// [MapError] to turn any error into a [UserMessage] with a support code.
package core
