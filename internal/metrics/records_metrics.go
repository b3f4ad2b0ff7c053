package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordOperationsTotal   *prometheus.CounterVec
	recordOperationDuration *prometheus.HistogramVec
	recordsStored           prometheus.Gauge

	recordMetricsOnce sync.Once
)

// initializeRecordMetrics initializes record store metrics if they haven't been initialized yet
func initializeRecordMetrics() {
	recordMetricsOnce.Do(func() {
		recordOperationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "records_operations_total",
				Help: "Total number of patient record operations",
			},
			[]string{"operation", "result"}, // result: "success", "not_found", "conflict", ...
		)

		recordOperationDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "records_operation_duration_seconds",
				Help:    "Time spent in a load/mutate/save cycle",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)

		recordsStored = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "records_stored",
				Help: "Number of patient records in the collection after the last load or save",
			},
		)

		Registry().MustRegister(
			recordOperationsTotal,
			recordOperationDuration,
			recordsStored,
		)
	})
}

// RecordOperation records the outcome and duration of a record operation
func RecordOperation(operation, result string, startTime time.Time) {
	if !BusinessMetricsEnabled() {
		return
	}
	initializeRecordMetrics()

	recordOperationsTotal.WithLabelValues(operation, result).Inc()
	recordOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
}

// SetRecordsStored records the collection size
func SetRecordsStored(n int) {
	if !BusinessMetricsEnabled() {
		return
	}
	initializeRecordMetrics()

	recordsStored.Set(float64(n))
}
