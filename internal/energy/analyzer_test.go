package energy

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/facade-energy/internal/model"
	"github.com/sells-group/facade-energy/internal/monitoring"
	"github.com/sells-group/facade-energy/internal/solar"
)

func TestAnalyzeBuilding_PerFacadeFormula(t *testing.T) {
	t.Parallel()
	tables := testTables(t)
	a := NewAnalyzer(tables, newMockFinder())

	b := boxBuilding("b1")
	b.Dimensions.East.Width = 7
	b.Dimensions.West.Width = 7

	res, err := a.AnalyzeBuilding(b, "Mumbai")
	require.NoError(t, err)

	rate, _ := tables.Rate("Mumbai")
	for _, dir := range model.CardinalDirections {
		g, _ := tables.Radiation("Mumbai", dir)
		w := b.Dimensions.Width(dir)
		fr, ok := res.FacadeResults[dir]
		require.True(t, ok, "missing %s", dir)

		heat := b.Height * w * b.WWR * b.SHGC * g
		assert.InDelta(t, b.Height*w*b.WWR, fr.WindowArea, 1e-9, dir)
		assert.InDelta(t, heat, fr.HeatGainBTU, 1e-9, dir)
		assert.InDelta(t, heat/3412, fr.CoolingLoadKWh, 1e-12, dir)
		assert.InDelta(t, heat/3412/4, fr.EnergyConsumedKWh, 1e-12, dir)
		assert.InDelta(t, heat/3412/4*rate, fr.Cost, 1e-12, dir)
	}
}

func TestAnalyzeBuilding_TotalsAreSums(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(testTables(t), newMockFinder())

	b := boxBuilding("b1")
	b.Skylight = &model.Skylight{Height: 2, Width: 3}

	res, err := a.AnalyzeBuilding(b, "Mumbai")
	require.NoError(t, err)
	require.Len(t, res.FacadeResults, 5)

	var want model.Totals
	for _, fr := range res.FacadeResults {
		want.Add(fr)
	}
	assert.InDelta(t, want.TotalHeatGainBTU, res.TotalHeatGainBTU, 1e-9)
	assert.InDelta(t, want.TotalCoolingLoadKWh, res.TotalCoolingLoadKWh, 1e-12)
	assert.InDelta(t, want.TotalEnergyConsumedKWh, res.TotalEnergyConsumedKWh, 1e-12)
	assert.InDelta(t, want.TotalCost, res.TotalCost, 1e-12)
}

func TestAnalyzeBuilding_MumbaiScenario(t *testing.T) {
	t.Parallel()
	tables, err := solar.New([]solar.CityEntry{{Name: "Mumbai", Rate: 9.5, Radiation: uniformRadiation(200)}})
	require.NoError(t, err)
	a := NewAnalyzer(tables, newMockFinder())

	res, err := a.AnalyzeBuilding(boxBuilding("b1"), "Mumbai")
	require.NoError(t, err)

	north := res.FacadeResults[model.North]
	assert.InDelta(t, 10.0, north.WindowArea, 1e-9)
	assert.InDelta(t, 600.0, north.HeatGainBTU, 1e-9)
	assert.InDelta(t, 0.1758, north.CoolingLoadKWh, 1e-4)
	assert.InDelta(t, 0.04396, north.EnergyConsumedKWh, 1e-5)
	assert.InDelta(t, north.EnergyConsumedKWh*9.5, north.Cost, 1e-12)

	assert.InDelta(t, 4*north.HeatGainBTU, res.TotalHeatGainBTU, 1e-9)
	assert.InDelta(t, 4*north.CoolingLoadKWh, res.TotalCoolingLoadKWh, 1e-12)
	assert.InDelta(t, 4*north.EnergyConsumedKWh, res.TotalEnergyConsumedKWh, 1e-12)
	assert.InDelta(t, 4*north.Cost, res.TotalCost, 1e-12)

	_, hasRoof := res.FacadeResults[model.Roof]
	assert.False(t, hasRoof)
}

func TestAnalyzeBuilding_RoofPresence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		skylight *model.Skylight
		wantRoof bool
	}{
		{name: "no skylight", skylight: nil, wantRoof: false},
		{name: "both positive", skylight: &model.Skylight{Height: 2, Width: 3}, wantRoof: true},
		{name: "zero width", skylight: &model.Skylight{Height: 2, Width: 0}, wantRoof: false},
		{name: "zero height", skylight: &model.Skylight{Height: 0, Width: 3}, wantRoof: false},
		{name: "negative height", skylight: &model.Skylight{Height: -1, Width: 3}, wantRoof: false},
	}

	a := NewAnalyzer(testTables(t), newMockFinder())
	base, err := a.AnalyzeBuilding(boxBuilding("base"), "Mumbai")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := boxBuilding("b")
			b.Skylight = tt.skylight

			res, err := a.AnalyzeBuilding(b, "Mumbai")
			require.NoError(t, err)

			roof, ok := res.FacadeResults[model.Roof]
			assert.Equal(t, tt.wantRoof, ok)
			if !tt.wantRoof {
				assert.Len(t, res.FacadeResults, 4)
				assert.InDelta(t, base.TotalCost, res.TotalCost, 1e-12)
				return
			}
			// 2*3 m² * 0.3 * 800 W/m²
			assert.InDelta(t, 6.0, roof.WindowArea, 1e-9)
			assert.InDelta(t, 1440.0, roof.HeatGainBTU, 1e-9)
			assert.InDelta(t, base.TotalCost+roof.Cost, res.TotalCost, 1e-12)
		})
	}
}

func TestAnalyzeBuilding_UnknownCity(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(testTables(t), newMockFinder())

	res, err := a.AnalyzeBuilding(boxBuilding("b1"), "Bangalore")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, eris.Is(err, solar.ErrUnknownCity))
}

func TestAnalyze(t *testing.T) {
	t.Parallel()
	finder := newMockFinder(boxBuilding("b1"))
	a := NewAnalyzer(testTables(t), finder)

	res, err := a.Analyze(context.Background(), "b1", "Delhi")
	require.NoError(t, err)
	// 4 walls * 10 m² * 0.3 * 250
	assert.InDelta(t, 3000.0, res.TotalHeatGainBTU, 1e-9)
	assert.Equal(t, 1, finder.calls)
}

func TestAnalyze_NotFound(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(testTables(t), newMockFinder())

	res, err := a.Analyze(context.Background(), "missing", "Delhi")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, eris.Is(err, model.ErrBuildingNotFound))
}

func TestAnalyze_NilBuildingIsNotFound(t *testing.T) {
	t.Parallel()
	a := NewAnalyzer(testTables(t), nilFinder{})

	_, err := a.Analyze(context.Background(), "whatever", "Delhi")
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrBuildingNotFound))
}

func TestAnalyze_FinderErrorPropagates(t *testing.T) {
	t.Parallel()
	finder := newMockFinder(boxBuilding("b1"))
	finder.err = eris.New("connection refused")
	a := NewAnalyzer(testTables(t), finder)

	_, err := a.Analyze(context.Background(), "b1", "Delhi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, eris.Is(err, model.ErrBuildingNotFound))
}

func TestAnalyze_CancelledContext(t *testing.T) {
	t.Parallel()
	finder := newMockFinder(boxBuilding("b1"))
	a := NewAnalyzer(testTables(t), finder)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, "b1", "Delhi")
	require.Error(t, err)
	assert.Equal(t, 0, finder.calls)
}

func TestAnalyze_RecordsMetrics(t *testing.T) {
	t.Parallel()
	m := monitoring.NewMetricsForTesting()
	a := NewAnalyzer(testTables(t), newMockFinder(boxBuilding("b1")), WithMetrics(m))

	_, err := a.Analyze(context.Background(), "b1", "Delhi")
	require.NoError(t, err)
	_, err = a.Analyze(context.Background(), "nope", "Delhi")
	require.Error(t, err)
	_, err = a.Analyze(context.Background(), "b1", "Atlantis")
	require.Error(t, err)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Analyses.WithLabelValues("analyze", monitoring.OutcomeSuccess)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Analyses.WithLabelValues("analyze", monitoring.OutcomeNotFound)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Analyses.WithLabelValues("analyze", monitoring.OutcomeUnknownCity)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.FacadesEvaluated.WithLabelValues("north")), 1e-9)
}
