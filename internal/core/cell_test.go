package core

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind CellKind
		wantNum  float64
		wantText string
	}{
		{name: "integer", raw: "100", wantKind: KindNumber, wantNum: 100},
		{name: "negative decimal", raw: "-12.5", wantKind: KindNumber, wantNum: -12.5},
		{name: "leading dot", raw: ".5", wantKind: KindNumber, wantNum: 0.5},
		{name: "trailing dot", raw: "5.", wantKind: KindNumber, wantNum: 5},
		{name: "exponent", raw: "1e3", wantKind: KindNumber, wantNum: 1000},
		{name: "surrounding space", raw: "  42 ", wantKind: KindNumber, wantNum: 42},
		{name: "hex literal", raw: "0x1F", wantKind: KindNumber, wantNum: 31},
		{name: "binary literal", raw: "0b101", wantKind: KindNumber, wantNum: 5},
		{name: "infinity", raw: "-Infinity", wantKind: KindNumber, wantNum: math.Inf(-1)},
		{name: "zero", raw: "0", wantKind: KindNumber, wantNum: 0},
		{name: "empty string is text", raw: "", wantKind: KindText, wantText: ""},
		{name: "whitespace is text", raw: "   ", wantKind: KindText, wantText: "   "},
		{name: "word", raw: "车间A", wantKind: KindText, wantText: "车间A"},
		{name: "thousands separator", raw: "1,000", wantKind: KindText, wantText: "1,000"},
		{name: "currency", raw: "$5", wantKind: KindText, wantText: "$5"},
		{name: "NaN literal", raw: "NaN", wantKind: KindText, wantText: "NaN"},
		{name: "signed hex", raw: "-0x10", wantKind: KindText, wantText: "-0x10"},
		{name: "text keeps spaces", raw: " a ", wantKind: KindText, wantText: " a "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coerce(tt.raw)
			require.Equal(t, tt.wantKind, got.Kind())
			if tt.wantKind == KindNumber {
				f, ok := got.Float()
				require.True(t, ok)
				assert.Equal(t, tt.wantNum, f)
				return
			}
			assert.Equal(t, tt.wantText, got.String())
		})
	}
}

func TestCoerce_OverflowIsInfinity(t *testing.T) {
	got := Coerce("1e400")
	f, ok := got.Float()
	require.True(t, ok)
	assert.True(t, math.IsInf(f, 1))
}

func TestCellValue_IsBlank(t *testing.T) {
	assert.True(t, Empty().IsBlank())
	assert.True(t, Text("").IsBlank())
	assert.False(t, Text(" ").IsBlank())
	assert.False(t, Number(0).IsBlank())
}

func TestNumber_NaNBecomesEmpty(t *testing.T) {
	assert.Equal(t, KindEmpty, Number(math.NaN()).Kind())
}

func TestCellValue_String(t *testing.T) {
	tests := []struct {
		in   CellValue
		want string
	}{
		{Number(100), "100"},
		{Number(0.1), "0.1"},
		{Number(-0.0), "0"},
		{Number(1e21), "1e+21"},
		{Number(1e-7), "1e-7"},
		{Number(123456789), "123456789"},
		{Number(math.Inf(1)), "Infinity"},
		{Text("abc"), "abc"},
		{Empty(), ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.String())
	}
}

func TestCellValue_JSON(t *testing.T) {
	row := map[string]CellValue{"n": Number(2.5), "t": Text("x"), "e": Empty()}
	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":2.5,"t":"x","e":null}`, string(data))

	var back map[string]CellValue
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, row, back)
}

func TestCellValue_UnmarshalNumericString(t *testing.T) {
	// Strings stay text even when they look numeric; coercion is explicit.
	var c CellValue
	require.NoError(t, json.Unmarshal([]byte(`"12"`), &c))
	assert.Equal(t, Text("12"), c)

	require.Error(t, json.Unmarshal([]byte(`true`), &c))
}
