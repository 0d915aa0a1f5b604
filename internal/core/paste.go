package core

// paste.go turns clipboard text (as copied from a spreadsheet) into a
// replacement Dataset.
//
// Header policy:
//   - headers are trimmed
//   - a blank header becomes "列{position}"
//   - a repeated header gets "_1", "_2", ... appended until unique
//
// Row policy:
//   - lines that are blank after trimming are skipped
//   - fields are trimmed, then coerced
//   - short rows are padded with Text(""); fields beyond the header are dropped

import (
	"fmt"
	"io"
	"strings"
)

// PasteDelimiter separates fields within a pasted line.
const PasteDelimiter = "\t"

// SourcePaste and SourceFile label ImportError sources.
const (
	SourcePaste = "paste"
	SourceFile  = "file"
	SourceXLSX  = "xlsx"
)

// ParsePaste parses tab-delimited, newline-separated text.
func ParsePaste(text string) (Dataset, error) {
	lines := splitLines(text)
	records := make([][]string, 0, len(lines))
	for _, line := range lines {
		records = append(records, strings.Split(line, PasteDelimiter))
	}
	return datasetFromRecords(SourcePaste, records)
}

// ReadPaste reads at most limit bytes of delimited text from r, strips a
// UTF-8 BOM, repairs invalid UTF-8 and parses the result. A limit <= 0
// disables the size check.
func ReadPaste(r io.Reader, limit int64) (Dataset, error) {
	text, err := ReadSanitized(r, limit)
	if err != nil {
		return Dataset{}, &ImportError{Source: SourceFile, Err: err}
	}
	ds, err := ParsePaste(text)
	if ie, ok := err.(*ImportError); ok {
		ie.Source = SourceFile
	}
	return ds, err
}

// DatasetFromRecords builds a Dataset from a header record followed by data
// records, applying the same rules as ParsePaste. source labels errors.
func DatasetFromRecords(source string, records [][]string) (Dataset, error) {
	return datasetFromRecords(source, records)
}

func datasetFromRecords(source string, records [][]string) (Dataset, error) {
	kept := records[:0:0]
	for _, rec := range records {
		if !isBlankRecord(rec) {
			kept = append(kept, rec)
		}
	}
	if len(kept) < 2 {
		return Dataset{}, &ImportError{Source: source, Lines: len(kept), Err: ErrInsufficientRows}
	}

	columns := importHeaders(kept[0])

	rows := make([]Row, 0, len(kept)-1)
	for _, rec := range kept[1:] {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = Coerce(strings.TrimSpace(rec[i]))
			} else {
				row[col] = Text("")
			}
		}
		rows = append(rows, row)
	}

	return Dataset{columns: columns, rows: rows}, nil
}

// importHeaders trims header fields and makes them non-blank and unique.
func importHeaders(fields []string) []string {
	columns := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))

	for i, f := range fields {
		name := strings.TrimSpace(f)
		if name == "" {
			name = fmt.Sprintf("列%d", i+1)
		}
		base := name
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[name] = true
		columns = append(columns, name)
	}

	return columns
}

func isBlankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// splitLines splits on \n, \r\n and lone \r.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
