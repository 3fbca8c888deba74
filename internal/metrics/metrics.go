// Package metrics provides the centralized Prometheus metrics registry for the
// theory engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "theory_engine",
		Name:      "evaluations_total",
		Help:      "Total number of theory evaluation runs",
	}, []string{"verdict"})
	RowsTriggeredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "theory_engine",
		Name:      "rows_triggered_total",
		Help:      "Total number of micro-rows passing trigger checks",
	})
	RowsSelectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "theory_engine",
		Name:      "rows_selected_total",
		Help:      "Total number of micro-rows selected by exposure controls",
	})
	FeaturesDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "theory_engine",
		Name:      "features_dropped_total",
		Help:      "Total number of feature columns dropped, by reason",
	}, []string{"reason"})
	MonteCarloRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "theory_engine",
		Name:      "monte_carlo_runs_total",
		Help:      "Total number of Monte Carlo simulations executed",
	})
)

// Gauge metrics
var (
	LastModelAccuracy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "theory_engine",
		Name:      "last_model_accuracy",
		Help:      "Accuracy of the most recently trained model",
	})
	LastLuckScore = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "theory_engine",
		Name:      "last_luck_score",
		Help:      "Luck score of the most recent Monte Carlo simulation",
	})
)

// Histogram metrics
var (
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "theory_engine",
		Name:      "run_duration_seconds",
		Help:      "Duration of full evaluation runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
	ModelTrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "theory_engine",
		Name:      "model_training_duration_seconds",
		Help:      "Duration of model training in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(EvaluationsTotal)
		registry.MustRegister(RowsTriggeredTotal)
		registry.MustRegister(RowsSelectedTotal)
		registry.MustRegister(FeaturesDroppedTotal)
		registry.MustRegister(MonteCarloRunsTotal)

		registry.MustRegister(LastModelAccuracy)
		registry.MustRegister(LastLuckScore)

		registry.MustRegister(RunDuration)
		registry.MustRegister(ModelTrainingDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEvaluation records a completed evaluation run.
func RecordEvaluation(verdict string, durationSeconds float64) {
	EvaluationsTotal.WithLabelValues(verdict).Inc()
	RunDuration.Observe(durationSeconds)
}

// RecordTriggeredRows records micro-rows that passed the trigger checks.
func RecordTriggeredRows(count int) {
	RowsTriggeredTotal.Add(float64(count))
}

// RecordSelectedRows records micro-rows kept by the exposure controller.
func RecordSelectedRows(count int) {
	RowsSelectedTotal.Add(float64(count))
}

// RecordFeatureDrop records a dropped feature column.
func RecordFeatureDrop(reason string) {
	FeaturesDroppedTotal.WithLabelValues(reason).Inc()
}

// RecordModelTraining records a trained model.
func RecordModelTraining(accuracy, durationSeconds float64) {
	LastModelAccuracy.Set(accuracy)
	ModelTrainingDuration.Observe(durationSeconds)
}

// RecordMonteCarlo records a Monte Carlo simulation.
func RecordMonteCarlo(luckScore float64) {
	MonteCarloRunsTotal.Inc()
	LastLuckScore.Set(luckScore)
}
