// Package metrics holds the Prometheus collectors for the ingestion pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ingestion outcomes.
const (
	OutcomeAccepted   = "accepted"
	OutcomeSuspicious = "suspicious"
	OutcomeRejected   = "rejected"
	OutcomeFailed     = "failed"
)

// Ingest counts pipeline outcomes. A nil *Ingest records nothing.
type Ingest struct {
	documents      *prometheus.CounterVec
	classification *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
}

// NewIngest creates the collectors and registers them on reg.
func NewIngest(reg prometheus.Registerer) (*Ingest, error) {
	m := &Ingest{
		documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_ingested_total",
				Help: "Ingestion attempts by outcome.",
			},
			[]string{"outcome"},
		),
		classification: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "document_classification_total",
				Help: "Classifier results by status.",
			},
			[]string{"status"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "document_ingest_stage_duration_seconds",
				Help:    "Duration of each ingestion stage.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
	for _, c := range []prometheus.Collector{m.documents, m.classification, m.stageDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Ingest) Outcome(outcome string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(outcome).Inc()
}

func (m *Ingest) Classification(status string) {
	if m == nil {
		return
	}
	m.classification.WithLabelValues(status).Inc()
}

// Stage records how long a named stage took since start.
func (m *Ingest) Stage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
