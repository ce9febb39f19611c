package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// batch ETL job.
type Metrics struct {
	RecordsExtracted   prometheus.Counter
	RecordsTransformed prometheus.Counter
	TransformErrors    prometheus.Counter
	PartitionsWritten  prometheus.Counter
	BytesWritten       prometheus.Counter
	CatalogUpdates     *prometheus.CounterVec // labels: outcome={success,error}
	QualityCheckPassed prometheus.Gauge
	JobRunning         prometheus.Gauge
	RunDuration        prometheus.Histogram
}

// NewMetrics creates and registers all job metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsExtracted,
		m.RecordsTransformed,
		m.TransformErrors,
		m.PartitionsWritten,
		m.BytesWritten,
		m.CatalogUpdates,
		m.QualityCheckPassed,
		m.JobRunning,
		m.RunDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gsod_etl",
			Name:      "records_extracted_total",
			Help:      "Total records read from the input partition set.",
		}),
		RecordsTransformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gsod_etl",
			Name:      "records_transformed_total",
			Help:      "Total records successfully transformed.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gsod_etl",
			Name:      "transform_errors_total",
			Help:      "Total transformation failures; each one aborts a run.",
		}),
		PartitionsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gsod_etl",
			Name:      "partitions_written_total",
			Help:      "Total report_date partitions written to the output store.",
		}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gsod_etl",
			Name:      "bytes_written_total",
			Help:      "Total payload bytes written to the output store.",
		}),
		CatalogUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gsod_etl",
			Name:      "catalog_updates_total",
			Help:      "Catalog registration attempts by outcome.",
		}, []string{"outcome"}),
		QualityCheckPassed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gsod_etl",
			Name:      "quality_check_passed",
			Help:      "1 when the last run's column-count rule passed, 0 otherwise.",
		}),
		JobRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gsod_etl",
			Name:      "job_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gsod_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}
}
