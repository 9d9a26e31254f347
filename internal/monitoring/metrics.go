package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "facade_energy"

// Outcome labels for analysis metrics.
const (
	OutcomeSuccess     = "success"
	OutcomeNotFound    = "not_found"
	OutcomeUnknownCity = "unknown_city"
	OutcomeError       = "error"
)

// Metrics holds the Prometheus collectors for analysis operations.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Analyses         *prometheus.CounterVec   // labels: operation={analyze,compare,rank}, outcome
	AnalysisDuration *prometheus.HistogramVec // labels: operation
	FacadesEvaluated *prometheus.CounterVec   // labels: direction
	BuildingsMutated *prometheus.CounterVec   // labels: action={create,update,delete}
}

func newMetrics() *Metrics {
	return &Metrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analysis operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of analysis operations including building lookup.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		FacadesEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "facades_evaluated_total",
			Help:      "Façade calculations performed, by direction.",
		}, []string{"direction"}),
		BuildingsMutated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buildings_mutated_total",
			Help:      "Building records created, updated or deleted.",
		}, []string{"action"}),
	}
}

// NewMetrics creates the collectors and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.Analyses, m.AnalysisDuration, m.FacadesEvaluated, m.BuildingsMutated)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build
// as many as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// ObserveAnalysis records one analysis operation.
func (m *Metrics) ObserveAnalysis(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Analyses.WithLabelValues(operation, outcome).Inc()
	m.AnalysisDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveFacade records one façade calculation.
func (m *Metrics) ObserveFacade(direction string) {
	if m == nil {
		return
	}
	m.FacadesEvaluated.WithLabelValues(direction).Inc()
}

// ObserveBuildingMutation records a building write.
func (m *Metrics) ObserveBuildingMutation(action string) {
	if m == nil {
		return
	}
	m.BuildingsMutated.WithLabelValues(action).Inc()
}
