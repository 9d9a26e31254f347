package report

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/facade-energy/internal/model"
)

// Columns recognised by ReadBuildings. Header matching ignores case and
// surrounding whitespace; skylight columns are optional.
var buildingColumns = []string{
	"name", "height", "north_width", "south_width", "east_width", "west_width",
	"wwr", "shgc", "skylight_height", "skylight_width",
}

// ReadBuildings reads buildings from the first sheet of an XLSX file, or from
// sheetName when set. The first row is the header. Blank rows are skipped.
func ReadBuildings(path, sheetName string) ([]model.Building, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "report: open xlsx")
	}

	sheet, err := pickSheet(f, sheetName)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("report: sheet %q is empty", sheet.Name)
	}

	idx, err := headerIndex(rowToStrings(sheet.Rows[0]))
	if err != nil {
		return nil, err
	}

	var buildings []model.Building
	for i, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if blank(cells) {
			continue
		}
		b, err := parseBuilding(cells, idx)
		if err != nil {
			return nil, eris.Wrapf(err, "report: row %d", i+2)
		}
		buildings = append(buildings, b)
	}
	return buildings, nil
}

func pickSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("report: sheet %q not found", name)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("report: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range buildingColumns[:8] {
		if _, ok := idx[col]; !ok {
			return nil, eris.Errorf("report: missing column %q", col)
		}
	}
	return idx, nil
}

func parseBuilding(cells []string, idx map[string]int) (model.Building, error) {
	var b model.Building
	var err error

	num := func(col string) float64 {
		if err != nil {
			return 0
		}
		var v float64
		v, err = strconv.ParseFloat(cell(cells, idx, col), 64)
		if err != nil {
			err = eris.Wrapf(err, "column %s", col)
		}
		return v
	}

	b.Name = cell(cells, idx, "name")
	b.Height = num("height")
	b.Dimensions.North.Width = num("north_width")
	b.Dimensions.South.Width = num("south_width")
	b.Dimensions.East.Width = num("east_width")
	b.Dimensions.West.Width = num("west_width")
	b.WWR = num("wwr")
	b.SHGC = num("shgc")

	if cell(cells, idx, "skylight_height") != "" || cell(cells, idx, "skylight_width") != "" {
		b.Skylight = &model.Skylight{Height: num("skylight_height"), Width: num("skylight_width")}
	}
	return b, err
}

func cell(cells []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, c := range row.Cells {
		cells[j] = c.String()
	}
	return cells
}
