package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crimeanalytics_predictions_generated_total",
			Help: "Predictions written during regeneration passes, by forecast method",
		},
		[]string{"method"},
	)

	PredictionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crimeanalytics_prediction_failures_total",
			Help: "Per-combination failures during prediction regeneration",
		},
	)

	RecommendationsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crimeanalytics_recommendations_generated_total",
			Help: "Recommendations written during regeneration passes",
		},
	)

	ModelTrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crimeanalytics_model_training_duration_seconds",
			Help:    "Wall time of sequence model training runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	RowsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crimeanalytics_rows_imported_total",
			Help: "Spreadsheet rows imported, by file type",
		},
		[]string{"type"},
	)
)
