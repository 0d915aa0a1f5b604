package xlsx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/chartbind/internal/core"
)

func TestWrite_SheetLayout(t *testing.T) {
	d, err := core.ParsePaste("名称\t数值\n车间A\t100\n车间B\t200.5")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, d))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	a1, err := f.GetCellValue(SheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "名称", a1)

	typ, err := f.GetCellType(SheetName, "B3")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ, "numbers are stored as numeric cells")

	b3, err := f.GetCellValue(SheetName, "B3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "200.5", b3)
}

func TestWriteRead_PreservesDataset(t *testing.T) {
	d, err := core.ParsePaste("名称\t数值\t备注\n车间A\t100\t\n车间B\t-3\tok")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, d))

	got, err := Read(&buf, 0)
	require.NoError(t, err)

	assert.Equal(t, d.Columns(), got.Columns())
	require.Equal(t, d.Len(), got.Len())
	for i := 0; i < d.Len(); i++ {
		for _, c := range d.Columns() {
			want, _ := d.Cell(i, c)
			have, _ := got.Cell(i, c)
			assert.Equal(t, want.String(), have.String(), "row %d column %s", i, c)
			assert.Equal(t, want.IsNumber(), have.IsNumber(), "row %d column %s", i, c)
		}
	}
}

func TestRead_FirstSheetRaggedRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "城市")
	f.SetCellValue(sheet, "B1", "人口")
	f.SetCellValue(sheet, "C1", "面积")
	f.SetCellValue(sheet, "A2", "上海")
	f.SetCellValue(sheet, "B2", 2487)
	f.SetCellValue(sheet, "A4", "北京")

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	d, err := Read(&buf, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"城市", "人口", "面积"}, d.Columns())
	require.Equal(t, 2, d.Len(), "blank row 3 is skipped")

	v, _ := d.Cell(0, "人口")
	assert.True(t, v.IsNumber())
	v, _ = d.Cell(1, "面积")
	assert.Equal(t, core.Text(""), v)
}

func TestRead_Errors(t *testing.T) {
	t.Run("not a workbook", func(t *testing.T) {
		_, err := Read(strings.NewReader("名称\t数值"), 0)
		assert.ErrorIs(t, err, core.ErrUnreadableWorkbook)
		assert.True(t, core.IsUserError(err))
	})

	t.Run("too large", func(t *testing.T) {
		_, err := Read(strings.NewReader(strings.Repeat("x", 64)), 10)
		assert.ErrorIs(t, err, core.ErrInputTooLarge)
	})

	t.Run("header only", func(t *testing.T) {
		f := excelize.NewFile()
		defer f.Close()
		f.SetCellValue(f.GetSheetName(0), "A1", "名称")

		var buf bytes.Buffer
		require.NoError(t, f.Write(&buf))

		_, err := Read(&buf, 0)
		assert.ErrorIs(t, err, core.ErrInsufficientRows)
	})
}
