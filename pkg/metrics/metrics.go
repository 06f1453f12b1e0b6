package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "syncboard", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "syncboard", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	DocumentsUpdated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "syncboard", Name: "documents_updated_total", Help: "Number of successful document updates."},
	)
	VersionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "syncboard", Name: "versions_created_total", Help: "Number of version snapshots created."},
	)
	RealtimePublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "syncboard", Name: "realtime_publish_failures_total", Help: "Number of failed realtime publish attempts (best-effort, never fatal)."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(DocumentsUpdated)
	reg.MustRegister(VersionsCreated)
	reg.MustRegister(RealtimePublishFailures)
}
