// Package report renders analysis results as XLSX workbooks and reads
// building lists back from spreadsheets.
package report

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/facade-energy/internal/model"
)

// Sheet names used in generated workbooks.
const (
	RankingSheet    = "Ranking"
	ComparisonSheet = "Comparison"
	BuildingSheet   = "Building"
)

var facadeOrder = []model.Direction{model.North, model.South, model.East, model.West, model.Roof}

var totalsHeader = []string{"Total Heat Gain (BTU)", "Total Cooling Load (kWh)", "Total Energy Consumed (kWh)", "Total Cost"}

// RankingWorkbook builds a workbook with the building's parameters and its
// cross-city ranking, one row per city in ranking order.
func RankingWorkbook(b *model.Building, rankings []model.CityRanking) (*xlsx.File, error) {
	f := xlsx.NewFile()
	if err := addBuildingSheet(f, b); err != nil {
		return nil, err
	}

	sheet, err := f.AddSheet(RankingSheet)
	if err != nil {
		return nil, eris.Wrap(err, "report: add ranking sheet")
	}
	addStrings(sheet.AddRow(), append([]string{"Rank", "City"}, totalsHeader...)...)
	for i, r := range rankings {
		row := sheet.AddRow()
		row.AddCell().SetInt(i + 1)
		row.AddCell().SetString(r.City)
		addTotals(row, r.Totals)
	}
	return f, nil
}

// ComparisonWorkbook builds a workbook with one row per façade and one
// column pair per building.
func ComparisonWorkbook(b1, b2 *model.Building, city string, cmp *model.Comparison) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(ComparisonSheet)
	if err != nil {
		return nil, eris.Wrap(err, "report: add comparison sheet")
	}

	addStrings(sheet.AddRow(), "City", city)
	addStrings(sheet.AddRow(), "Facade", b1.Name+" Heat Gain (BTU)", b1.Name+" Cost", b2.Name+" Heat Gain (BTU)", b2.Name+" Cost")

	for _, dir := range facadeOrder {
		r1, ok1 := cmp.Result1.FacadeResults[dir]
		r2, ok2 := cmp.Result2.FacadeResults[dir]
		if !ok1 && !ok2 {
			continue
		}
		row := sheet.AddRow()
		row.AddCell().SetString(string(dir))
		row.AddCell().SetFloat(r1.HeatGainBTU)
		row.AddCell().SetFloat(r1.Cost)
		row.AddCell().SetFloat(r2.HeatGainBTU)
		row.AddCell().SetFloat(r2.Cost)
	}

	row := sheet.AddRow()
	row.AddCell().SetString("total")
	row.AddCell().SetFloat(cmp.Result1.TotalHeatGainBTU)
	row.AddCell().SetFloat(cmp.Result1.TotalCost)
	row.AddCell().SetFloat(cmp.Result2.TotalHeatGainBTU)
	row.AddCell().SetFloat(cmp.Result2.TotalCost)
	return f, nil
}

// Save writes a workbook to path.
func Save(f *xlsx.File, path string) error {
	return eris.Wrapf(f.Save(path), "report: save %s", path)
}

// Write streams a workbook to w.
func Write(f *xlsx.File, w io.Writer) error {
	return eris.Wrap(f.Write(w), "report: write workbook")
}

func addBuildingSheet(f *xlsx.File, b *model.Building) error {
	sheet, err := f.AddSheet(BuildingSheet)
	if err != nil {
		return eris.Wrap(err, "report: add building sheet")
	}

	addStrings(sheet.AddRow(), "Name", b.Name)
	addStrings(sheet.AddRow(), "ID", b.ID)
	addFloat(sheet.AddRow(), "Height", b.Height)
	for _, dir := range model.CardinalDirections {
		addFloat(sheet.AddRow(), string(dir)+" width", b.Dimensions.Width(dir))
	}
	addFloat(sheet.AddRow(), "WWR", b.WWR)
	addFloat(sheet.AddRow(), "SHGC", b.SHGC)
	if b.Skylight != nil {
		addFloat(sheet.AddRow(), "Skylight height", b.Skylight.Height)
		addFloat(sheet.AddRow(), "Skylight width", b.Skylight.Width)
	}
	return nil
}

func addStrings(row *xlsx.Row, values ...string) {
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func addFloat(row *xlsx.Row, label string, v float64) {
	row.AddCell().SetString(label)
	row.AddCell().SetFloat(v)
}

func addTotals(row *xlsx.Row, t model.Totals) {
	row.AddCell().SetFloat(t.TotalHeatGainBTU)
	row.AddCell().SetFloat(t.TotalCoolingLoadKWh)
	row.AddCell().SetFloat(t.TotalEnergyConsumedKWh)
	row.AddCell().SetFloat(t.TotalCost)
}
