package core

// cell.go defines the typed cell value and the coercion applied to every
// edited or imported field.
//
// Raw text is kept verbatim for Text cells so the editor shows exactly what
// the user typed. Numeric detection follows the rules of a spreadsheet-style
// Number() conversion on the trimmed input:
//
//   - decimal integers and fractions, with optional sign and exponent
//   - "Infinity" with optional sign
//   - 0x / 0o / 0b integer literals
//
// Thousands separators and currency symbols are NOT stripped: "1,000" is text.

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// CellKind discriminates the CellValue union.
type CellKind uint8

const (
	KindEmpty CellKind = iota
	KindNumber
	KindText
)

func (k CellKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "empty"
	}
}

// CellValue is a single dataset cell. The zero value is Empty.
type CellValue struct {
	kind CellKind
	num  float64
	text string
}

// numericRegex matches decimal numbers with optional sign and exponent.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// radixRegex matches unsigned hex, octal and binary integer literals.
var radixRegex = regexp.MustCompile(`^0([xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`)

// Empty returns the absent cell value.
func Empty() CellValue { return CellValue{} }

// Number returns a numeric cell. NaN is not representable and becomes Empty.
func Number(v float64) CellValue {
	if math.IsNaN(v) {
		return CellValue{}
	}
	return CellValue{kind: KindNumber, num: v}
}

// Text returns a text cell holding s verbatim.
func Text(s string) CellValue { return CellValue{kind: KindText, text: s} }

// Coerce converts raw input into a Number when it parses as one and into
// Text(raw) otherwise. It never fails.
func Coerce(raw string) CellValue {
	if v, ok := ParseNumber(raw); ok {
		return Number(v)
	}
	return Text(raw)
}

// ParseNumber reports whether s, after trimming, is a complete number.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if numericRegex.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Overflow still yields a signed infinity, which is a number.
			var numErr *strconv.NumError
			if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
				return f, true
			}
			return 0, false
		}
		return f, true
	}

	if radixRegex.MatchString(s) {
		u, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(u), true
	}

	return 0, false
}

// Kind returns the union tag.
func (c CellValue) Kind() CellKind { return c.kind }

// IsNumber reports whether the cell holds a number.
func (c CellValue) IsNumber() bool { return c.kind == KindNumber }

// Float returns the numeric value and true for Number cells.
func (c CellValue) Float() (float64, bool) {
	if c.kind != KindNumber {
		return 0, false
	}
	return c.num, true
}

// IsBlank reports whether the cell is Empty or Text("").
func (c CellValue) IsBlank() bool {
	return c.kind == KindEmpty || (c.kind == KindText && c.text == "")
}

// String returns the display form of the cell.
func (c CellValue) String() string {
	switch c.kind {
	case KindNumber:
		return formatNumber(c.num)
	case KindText:
		return c.text
	default:
		return ""
	}
}

// formatNumber renders v the way a browser prints a number: shortest
// round-trip digits, exponent form outside [1e-6, 1e21).
func formatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'g', -1, 64)
		s = strings.Replace(s, "e+0", "e+", 1)
		s = strings.Replace(s, "e-0", "e-", 1)
		return s
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MarshalJSON encodes numbers as JSON numbers, text as strings and Empty as
// null. Infinities are encoded as their display strings.
func (c CellValue) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindNumber:
		if math.IsInf(c.num, 0) {
			return json.Marshal(formatNumber(c.num))
		}
		return json.Marshal(c.num)
	case KindText:
		return json.Marshal(c.text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, a string or null.
func (c *CellValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Empty()
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*c = Number(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("cell value must be a number, string or null")
	}
	*c = Text(s)
	return nil
}
