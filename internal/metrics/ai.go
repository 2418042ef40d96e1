package metrics

import "github.com/prometheus/client_golang/prometheus"

// AI provider and search cache Prometheus metrics.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bizsearch",
			Name:      "provider_requests_total",
			Help:      "Total number of AI provider requests",
		},
		[]string{"provider", "kind", "status"}, // kind: "embed" / "chat"
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bizsearch",
			Name:      "provider_request_duration_seconds",
			Help:      "AI provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "kind"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bizsearch",
			Name:      "search_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	SearchCandidatesRetrieved = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bizsearch",
			Name:      "search_candidates_retrieved",
			Help:      "Number of candidate businesses retrieved per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)
)

var aiMetricsRegistered bool

// RegisterAIMetrics registers AI and cache metrics. Must be called once from main.
func RegisterAIMetrics() {
	if aiMetricsRegistered {
		return
	}
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderRequestDuration)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(SearchCandidatesRetrieved)
	aiMetricsRegistered = true
}
