package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	InsightLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "insighthub",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of the insights endpoint",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"analysis_type"},
	)

	InsightErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insighthub",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by kind on the insights endpoint",
		},
		[]string{"kind"},
	)

	AdmissionDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insighthub",
			Subsystem: "api",
			Name:      "admission_denials_total",
			Help:      "Requests denied by admission control",
		},
		[]string{"reason"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(InsightLatency, InsightErrors, AdmissionDenials)
	})
}
