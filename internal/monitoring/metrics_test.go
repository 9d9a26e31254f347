package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveAnalysis(t *testing.T) {
	m := NewMetricsForTesting()

	m.ObserveAnalysis("rank", OutcomeSuccess, 5*time.Millisecond)
	m.ObserveAnalysis("rank", OutcomeSuccess, 7*time.Millisecond)
	m.ObserveAnalysis("rank", OutcomeNotFound, time.Millisecond)

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.Analyses.WithLabelValues("rank", OutcomeSuccess)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Analyses.WithLabelValues("rank", OutcomeNotFound)), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(m.AnalysisDuration))
}

func TestObserveFacadeAndMutation(t *testing.T) {
	m := NewMetricsForTesting()

	m.ObserveFacade("north")
	m.ObserveFacade("roof")
	m.ObserveFacade("roof")
	m.ObserveBuildingMutation("create")

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.FacadesEvaluated.WithLabelValues("roof")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.BuildingsMutated.WithLabelValues("create")), 1e-9)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAnalysis("analyze", OutcomeError, time.Second)
		m.ObserveFacade("east")
		m.ObserveBuildingMutation("delete")
	})
}
