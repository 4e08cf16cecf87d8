package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements Hooks backed by Prometheus counters on the
// default registry, exposed through the /metrics endpoint.
type PrometheusHooks struct {
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	fetchRuns      *prometheus.CounterVec
	fetchCompleted *prometheus.CounterVec
	fetchItems     *prometheus.CounterVec
	upstreamErrors *prometheus.CounterVec
}

// NewPrometheusHooks creates hooks registered on the default registry.
// Call at most once per process.
func NewPrometheusHooks() *PrometheusHooks {
	return &PrometheusHooks{
		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "indcat_cache_hits_total",
			Help: "Catalog reads served from a populated cache entry.",
		}, []string{"category"}),
		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "indcat_cache_misses_total",
			Help: "Catalog reads against an absent cache entry.",
		}, []string{"category"}),
		fetchRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "indcat_fetch_runs_started_total",
			Help: "Populate runs started.",
		}, []string{"category"}),
		fetchCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "indcat_fetch_runs_completed_total",
			Help: "Populate runs completed, by outcome.",
		}, []string{"category", "outcome"}),
		fetchItems: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "indcat_fetch_items_total",
			Help: "Catalog items collected by completed populate runs.",
		}, []string{"category"}),
		upstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "indcat_upstream_errors_total",
			Help: "Metadata source failures, by pipeline stage.",
		}, []string{"stage"}),
	}
}

func (h *PrometheusHooks) CacheHit(category string) {
	h.cacheHits.WithLabelValues(category).Inc()
}

func (h *PrometheusHooks) CacheMiss(category string) {
	h.cacheMisses.WithLabelValues(category).Inc()
}

func (h *PrometheusHooks) FetchStarted(category string) {
	h.fetchRuns.WithLabelValues(category).Inc()
}

func (h *PrometheusHooks) FetchCompleted(category, outcome string, items int) {
	h.fetchCompleted.WithLabelValues(category, outcome).Inc()
	h.fetchItems.WithLabelValues(category).Add(float64(items))
}

func (h *PrometheusHooks) UpstreamError(stage string) {
	h.upstreamErrors.WithLabelValues(stage).Inc()
}
