package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	insightsTotal  *prometheus.CounterVec
	cacheTotal     *prometheus.CounterVec
	admissionTotal *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	stageLatency   *prometheus.HistogramVec
}

var (
	defaultRecorder *Recorder
	recorderOnce    sync.Once
)

// New returns the process-wide Prometheus metrics recorder. Collectors
// register against the default registry exactly once.
func New() *Recorder {
	recorderOnce.Do(func() {
		defaultRecorder = newRecorder()
	})
	return defaultRecorder
}

func newRecorder() *Recorder {
	return &Recorder{
		insightsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insighthub_insights_total",
				Help: "Total number of insights generated",
			},
			[]string{"analysis_type", "category"},
		),
		cacheTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insighthub_cache_requests_total",
				Help: "Response cache lookups by outcome",
			},
			[]string{"outcome"},
		),
		admissionTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insighthub_admission_total",
				Help: "Admission decisions by tier and outcome",
			},
			[]string{"tier", "outcome"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insighthub_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		stageLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "insighthub_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// RecordInsight counts one generated insight.
func (r *Recorder) RecordInsight(analysisType, category string) {
	r.insightsTotal.WithLabelValues(analysisType, category).Inc()
}

// RecordCache counts a cache lookup outcome (hit | miss).
func (r *Recorder) RecordCache(outcome string) {
	r.cacheTotal.WithLabelValues(outcome).Inc()
}

// RecordAdmission counts an admission decision.
func (r *Recorder) RecordAdmission(tier, outcome string) {
	r.admissionTotal.WithLabelValues(tier, outcome).Inc()
}

// RecordError counts an error by kind.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency observes a pipeline stage duration.
func (r *Recorder) RecordLatency(stage string, seconds float64) {
	r.stageLatency.WithLabelValues(stage).Observe(seconds)
}
