package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// EstimateRequests counts travel-time estimates by mode and outcome.
	EstimateRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traveltime_estimate_requests_total",
			Help: "Total travel-time estimate requests",
		},
		[]string{"mode", "outcome"},
	)

	// ProviderCalls counts upstream provider round trips by outcome.
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traveltime_provider_calls_total",
			Help: "Total upstream provider calls",
		},
		[]string{"provider", "outcome"},
	)

	// QuotaRejections counts admissions denied by the daily quota.
	QuotaRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traveltime_quota_rejections_total",
			Help: "Total admissions denied by the daily provider quota",
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(EstimateRequests)
	prometheus.MustRegister(ProviderCalls)
	prometheus.MustRegister(QuotaRejections)
}
