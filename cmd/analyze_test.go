package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/facade-energy/internal/model"
	"github.com/sells-group/facade-energy/internal/report"
	"github.com/sells-group/facade-energy/internal/store"
)

// setupCLI points the CLI at a fresh SQLite file in a temp working directory
// and returns the database path.
func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	dbPath := filepath.Join(dir, "cli.db")
	t.Setenv("FACADE_STORE_DRIVER", "sqlite")
	t.Setenv("FACADE_STORE_DATABASE_URL", dbPath)
	t.Setenv("FACADE_LOG_LEVEL", "error")
	t.Setenv("FACADE_RETRY_MAX_ATTEMPTS", "1")
	return dbPath
}

// seedBuilding stores a box building with equal 5 m walls.
func seedBuilding(t *testing.T, dbPath, name string) string {
	t.Helper()
	ctx := context.Background()

	st, err := store.NewSQLite(dbPath)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(ctx))

	b, err := st.CreateBuilding(ctx, model.Building{
		Name:   name,
		Height: 10,
		Dimensions: model.Dimensions{
			North: model.Facade{Width: 5}, South: model.Facade{Width: 5},
			East: model.Facade{Width: 5}, West: model.Facade{Width: 5},
		},
		WWR:  0.2,
		SHGC: 0.3,
	})
	require.NoError(t, err)
	return b.ID
}

// execute runs the root command with args and returns stdout. Flag values
// are reset afterwards so later runs start from defaults.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func sampleResult() *model.AnalysisResult {
	res := &model.AnalysisResult{FacadeResults: map[model.Direction]model.FacadeResult{}}
	for _, dir := range model.CardinalDirections {
		fr := model.FacadeResult{WindowArea: 10, HeatGainBTU: 600, CoolingLoadKWh: 600.0 / 3412, EnergyConsumedKWh: 600.0 / 3412 / 4, Cost: 600.0 / 3412 / 4 * 10}
		res.FacadeResults[dir] = fr
		res.Add(fr)
	}
	return res
}

func TestFormatAnalysis(t *testing.T) {
	var buf bytes.Buffer
	formatAnalysis(&buf, "Mumbai", sampleResult())

	output := buf.String()
	assert.Contains(t, output, "City: Mumbai")
	assert.Contains(t, output, "FACADE")
	assert.Contains(t, output, "north")
	assert.Contains(t, output, "west")
	assert.NotContains(t, output, "roof")
	assert.Contains(t, output, "600.00")
	assert.Contains(t, output, "2400.00")
	assert.Contains(t, output, "total")
}

func TestFormatAnalysis_Roof(t *testing.T) {
	res := sampleResult()
	res.FacadeResults[model.Roof] = model.FacadeResult{WindowArea: 6, HeatGainBTU: 1440}
	res.Add(res.FacadeResults[model.Roof])

	var buf bytes.Buffer
	formatAnalysis(&buf, "Mumbai", res)
	assert.Contains(t, buf.String(), "roof")
	assert.Contains(t, buf.String(), "3840.00")
}

func TestFormatComparison(t *testing.T) {
	r1 := sampleResult()
	r2 := sampleResult()
	r2.TotalCost += 1

	var buf bytes.Buffer
	formatComparison(&buf, "Delhi", &model.Comparison{Result1: *r1, Result2: *r2})

	output := buf.String()
	assert.Contains(t, output, "City: Delhi")
	assert.Contains(t, output, "BUILDING_1")
	assert.Contains(t, output, "cost")
	assert.Contains(t, output, "+1.0000")
	assert.Contains(t, output, "+0.0000")
}

func TestFormatRanking(t *testing.T) {
	rankings := []model.CityRanking{
		{City: "Mumbai", Totals: model.Totals{TotalCost: 3.5}},
		{City: "Kolkata", Totals: model.Totals{TotalCost: 1.25}},
	}

	var buf bytes.Buffer
	formatRanking(&buf, rankings)

	output := buf.String()
	assert.Contains(t, output, "RANK")
	assert.Contains(t, output, "1  ")
	assert.Contains(t, output, "3.5000")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Mumbai")), bytes.Index(buf.Bytes(), []byte("Kolkata")))
}

func TestCLI_Cities(t *testing.T) {
	setupCLI(t)

	out, err := execute(t, "cities")
	require.NoError(t, err)
	assert.Equal(t, "Bangalore\nMumbai\nKolkata\nDelhi\n", out)
}

func TestCLI_AnalyzeRecordsHistory(t *testing.T) {
	dbPath := setupCLI(t)
	id := seedBuilding(t, dbPath, "Tower")

	out, err := execute(t, "analyze", id, "  mumbai ")
	require.NoError(t, err)
	assert.Contains(t, out, "City: Mumbai")
	// 10 m² glazing * 0.3 * 150 W/m² on the north wall.
	assert.Contains(t, out, "450.00")
	assert.Contains(t, out, "3090.00")

	st, err := store.NewSQLite(dbPath)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	records, err := st.ListAnalyses(context.Background(), id, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Mumbai", records[0].City)
	assert.InDelta(t, 3090.0, records[0].TotalHeatGainBTU, 1e-9)
}

func TestCLI_AnalyzeErrors(t *testing.T) {
	dbPath := setupCLI(t)
	id := seedBuilding(t, dbPath, "Tower")

	_, err := execute(t, "analyze", id, "Paris")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Invalid city "Paris"`)

	_, err = execute(t, "analyze", "not-a-uuid", "Mumbai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid building ID")

	_, err = execute(t, "analyze", "00000000-0000-0000-0000-000000000000", "Mumbai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "building not found")
}

func TestCLI_CompareRejectsSelf(t *testing.T) {
	dbPath := setupCLI(t)
	id := seedBuilding(t, dbPath, "Tower")

	_, err := execute(t, "compare", id, id, "Mumbai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot compare a building with itself")
}

func TestCLI_CompareWritesWorkbook(t *testing.T) {
	dbPath := setupCLI(t)
	id1 := seedBuilding(t, dbPath, "Tower")
	id2 := seedBuilding(t, dbPath, "Annex")
	path := filepath.Join(t.TempDir(), "compare.xlsx")

	out, err := execute(t, "compare", id1, id2, "delhi", "--xlsx", path)
	require.NoError(t, err)
	assert.Contains(t, out, "City: Delhi")
	assert.Contains(t, out, "+0.0000")

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	assert.Contains(t, f.Sheet, report.ComparisonSheet)
}

func TestCLI_RankWritesWorkbook(t *testing.T) {
	dbPath := setupCLI(t)
	id := seedBuilding(t, dbPath, "Tower")
	path := filepath.Join(t.TempDir(), "rank.xlsx")

	out, err := execute(t, "rank", id, "--xlsx", path)
	require.NoError(t, err)

	// Built-in tables: Mumbai is the most expensive, Bangalore the cheapest.
	order := []string{"Mumbai", "Delhi", "Kolkata", "Bangalore"}
	prev := 0
	for _, city := range order {
		idx := bytes.Index([]byte(out), []byte(city))
		require.Greater(t, idx, prev, city)
		prev = idx
	}

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Contains(t, f.Sheet, report.RankingSheet)
	// Header plus one row per city.
	assert.Len(t, f.Sheet[report.RankingSheet].Rows, 5)
}

func TestCLI_BuildingLifecycle(t *testing.T) {
	setupCLI(t)
	path := writeTemp(t, "buildings.yaml", buildingsYAML)

	out, err := execute(t, "building", "add", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Tower")
	assert.Contains(t, out, "Annex")

	out, err = execute(t, "building", "list", "--name", "Ann")
	require.NoError(t, err)
	assert.Contains(t, out, "Annex")
	assert.NotContains(t, out, "Tower")

	_, err = execute(t, "building", "add", "--file", writeTemp(t, "bad.json", `{"name":"","height":0}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Building name is required")
}

func TestCLI_InvalidConfig(t *testing.T) {
	setupCLI(t)
	t.Setenv("FACADE_STORE_DRIVER", "mongo")

	_, err := execute(t, "cities")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `store.driver "mongo"`)
}
