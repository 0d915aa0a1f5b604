package core

import (
	"fmt"
	"strings"
	"testing"
)

// ============================================================================
// Coercion Benchmarks
// ============================================================================

// BenchmarkCoerce covers every cell edit and every imported field.
func BenchmarkCoerce(b *testing.B) {
	testCases := []string{
		"123",
		"-456.78",
		"  1e5  ",
		"0x1F",
		"Infinity",
		"车间A",
		"",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			Coerce(tc)
		}
	}
}

func BenchmarkCellString_Number(b *testing.B) {
	v := Number(1234.5678)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = v.String()
	}
}

// ============================================================================
// Import Benchmarks
// ============================================================================

func pasteText(rows int) string {
	var sb strings.Builder
	sb.WriteString("名称\t数值\t目标\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "车间%d\t%d\t%d.5\n", i, i*7%113, i)
	}
	return sb.String()
}

func BenchmarkParsePaste(b *testing.B) {
	text := pasteText(1000)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParsePaste(text); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Sort Benchmarks
// ============================================================================

func BenchmarkSort_Numeric(b *testing.B) {
	d, err := ParsePaste(pasteText(1000))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.Sort("数值", SortDesc); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSort_Collated exercises the collator path on text keys.
func BenchmarkSort_Collated(b *testing.B) {
	d, err := ParsePaste(pasteText(1000))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.Sort("名称", SortAsc); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Binding Benchmarks
// ============================================================================

func BenchmarkProject(b *testing.B) {
	d, err := ParsePaste(pasteText(500))
	if err != nil {
		b.Fatal(err)
	}
	roles := InferRoles(d, RoleAssignment{})
	roles.Series = []string{"数值", "目标"}

	for _, kind := range []ChartKind{ChartBar, ChartPie} {
		b.Run(string(kind), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := Project(d, roles, kind); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
