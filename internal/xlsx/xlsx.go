// Package xlsx converts datasets to and from Excel workbooks.
package xlsx

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/chartbind/internal/core"
)

// SheetName is the sheet written by Write.
const SheetName = "数据"

// ContentType is the MIME type of an .xlsx file.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Write stores d as a single-sheet workbook: a header row followed by one
// row per record. Numbers are written as numeric cells.
func Write(w io.Writer, d core.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	columns := d.Columns()
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range d.Rows() {
		values := make([]interface{}, len(columns))
		for j, c := range columns {
			values[j] = cellValue(row[c])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cellValue(v core.CellValue) interface{} {
	if f, ok := v.Float(); ok && !math.IsInf(f, 0) {
		return f
	}
	if v.Kind() == core.KindEmpty {
		return nil
	}
	return v.String()
}

// Read parses the first sheet of a workbook with the paste import rules.
// At most limit bytes are read; limit <= 0 disables the check.
func Read(r io.Reader, limit int64) (core.Dataset, error) {
	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return core.Dataset{}, &core.ImportError{Source: core.SourceXLSX, Err: err}
	}
	if limit > 0 && int64(len(data)) > limit {
		return core.Dataset{}, &core.ImportError{
			Source: core.SourceXLSX,
			Err:    fmt.Errorf("%w: exceeds %d bytes", core.ErrInputTooLarge, limit),
		}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return core.Dataset{}, unreadable(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return core.Dataset{}, unreadable(fmt.Errorf("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return core.Dataset{}, unreadable(err)
	}
	return core.DatasetFromRecords(core.SourceXLSX, rows)
}

func unreadable(err error) error {
	return &core.ImportError{
		Source: core.SourceXLSX,
		Err:    fmt.Errorf("%w: %v", core.ErrUnreadableWorkbook, err),
	}
}
