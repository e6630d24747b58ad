package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ingested    *prometheus.CounterVec
	rejected    prometheus.Counter
	errorsTotal *prometheus.CounterVec
	riskLevels  *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ingested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_transactions_ingested_total",
				Help: "Total number of accepted transactions by kind",
			},
			[]string{"kind"},
		),
		rejected: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "finsight_transactions_rejected_total",
				Help: "Total number of rejected transaction records",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		riskLevels: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsight_risk_assessments_total",
				Help: "Total number of risk assessments by resulting level",
			},
			[]string{"level"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsight_analysis_duration_seconds",
				Help:    "Duration of analysis stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// RecordIngested records accepted transactions of one kind.
func (r *Recorder) RecordIngested(kind string, n int) {
	r.ingested.WithLabelValues(kind).Add(float64(n))
}

// RecordRejected records rejected transaction records.
func (r *Recorder) RecordRejected(n int) {
	r.rejected.Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRiskLevel records the level produced by one risk assessment.
func (r *Recorder) RecordRiskLevel(level string) {
	r.riskLevels.WithLabelValues(level).Inc()
}

// RecordAnalysis records analysis stage latency in seconds.
func (r *Recorder) RecordAnalysis(stage string, seconds float64) {
	r.latency.WithLabelValues(stage).Observe(seconds)
}
