package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "buildings.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

var header = []string{"Name", "Height", "North_Width", "South_Width", "East_Width", "West_Width", "WWR", "SHGC", "Skylight_Height", "Skylight_Width"}

func TestReadBuildings(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			header,
			{"Tower A", "10", "5", "5", "8", "8", "0.2", "0.3", "", ""},
			{"", "", "", "", "", "", "", "", "", ""},
			{"Tower B", "12.5", "6", "6", "6", "6", "0.4", "0.25", "2", "3"},
		},
	})

	buildings, err := ReadBuildings(path, "")
	require.NoError(t, err)
	require.Len(t, buildings, 2)

	assert.Equal(t, "Tower A", buildings[0].Name)
	assert.InDelta(t, 8.0, buildings[0].Dimensions.East.Width, 1e-9)
	assert.Nil(t, buildings[0].Skylight)

	assert.Equal(t, "Tower B", buildings[1].Name)
	assert.InDelta(t, 12.5, buildings[1].Height, 1e-9)
	require.NotNil(t, buildings[1].Skylight)
	assert.InDelta(t, 3.0, buildings[1].Skylight.Width, 1e-9)
}

func TestReadBuildings_NamedSheet(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Buildings": {
			header[:8],
			{"Only", "3", "1", "1", "1", "1", "0.5", "0.5"},
		},
	})

	buildings, err := ReadBuildings(path, "Buildings")
	require.NoError(t, err)
	require.Len(t, buildings, 1)
	assert.Equal(t, "Only", buildings[0].Name)

	_, err = ReadBuildings(path, "Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Missing" not found`)
}

func TestReadBuildings_MissingColumn(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Name", "Height", "WWR"},
			{"x", "1", "0.1"},
		},
	})

	_, err := ReadBuildings(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "north_width"`)
}

func TestReadBuildings_BadNumber(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			header[:8],
			{"Bad", "tall", "1", "1", "1", "1", "0.5", "0.5"},
		},
	})

	_, err := ReadBuildings(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "column height")
}

func TestReadBuildings_EmptySheet(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"Sheet1": {}})

	_, err := ReadBuildings(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")
}

func TestReadBuildings_FileNotFound(t *testing.T) {
	_, err := ReadBuildings("/nonexistent/file.xlsx", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report: open xlsx")
}
