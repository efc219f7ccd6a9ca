// Package metrics provides Prometheus metrics for the service
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DocumentsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bmr_documents_generated_total",
			Help: "Total number of PDF generations",
		},
		[]string{"kind", "status"},
	)

	DocumentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bmr_document_duration_seconds",
			Help:    "Time taken to render and export a document",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"},
	)

	RecordsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bmr_records_saved_total",
			Help: "Total number of record saves",
		},
		[]string{"entity", "op", "status"},
	)

	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bmr_lookups_total",
			Help: "Total number of list and search queries",
		},
		[]string{"entity"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Documents records document generations.
type Documents struct{}

func (Documents) ObserveGeneration(kind string, elapsed time.Duration, err error) {
	DocumentsGenerated.WithLabelValues(kind, status(err)).Inc()
	DocumentDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// RecordSave counts one create or update of entity.
func RecordSave(entity, op string, err error) {
	RecordsSaved.WithLabelValues(entity, op, status(err)).Inc()
}

func RecordLookup(entity string) {
	LookupsTotal.WithLabelValues(entity).Inc()
}
