package core

// streaming.go cleans up uploaded text before it reaches the importer.
//
// Spreadsheet exports on Windows commonly start with a UTF-8 BOM, and files
// saved in legacy encodings contain byte sequences that are not UTF-8. Both
// are repaired here so header names and cells come out readable.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader drops a leading UTF-8 BOM and passes everything else
// through unchanged.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader wraps r.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.br.Peek(len(utf8BOM))
		if err == nil && bytes.Equal(head, utf8BOM) {
			if _, err := r.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.br.Read(p)
}

// ReadSanitized reads r fully (up to limit bytes when limit > 0), removes a
// BOM and replaces invalid UTF-8 with U+FFFD.
func ReadSanitized(r io.Reader, limit int64) (string, error) {
	src := io.Reader(NewBOMSkippingReader(r))
	if limit > 0 {
		// One extra byte distinguishes "exactly limit" from "over limit".
		src = io.LimitReader(src, limit+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrInputTooLarge, limit)
	}

	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}
