package zori

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("ZORI")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			cell := row.AddCell()
			cell.SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "zori.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoadTimeSeries_XLSX(t *testing.T) {
	path := createTestXLSX(t, [][]string{
		{"RegionName", "State", "2016-01-31", "2020-06-30"},
		{"10001", "NY", "2500", "3100"},
		{"90210", "CA", "4000", "4200"},
	})

	rents, dates, summary, err := LoadTimeSeries(path, nycFilter)
	require.NoError(t, err)

	require.Len(t, rents, 1)
	assert.Equal(t, TimeSeries{"2016-01-31": 2500, "2020-06-30": 3100}, rents["10001"])
	assert.Equal(t, []string{"2016-01-31", "2020-06-30"}, dates)
	assert.Equal(t, 2, summary.RetainedDateColumns)
}

func TestReadXLSX_Empty(t *testing.T) {
	f := xlsx.NewFile()
	_, err := f.AddSheet("Empty")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, f.Save(path))

	_, _, err = readXLSX(path)
	assert.Error(t, err)
}

func TestReadXLSX_MissingFile(t *testing.T) {
	_, _, err := readXLSX(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
