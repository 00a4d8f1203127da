package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "civicsearch_points_total",
		Help: "Points matched, by dataset and match status",
	}, []string{"dataset", "status"})
	MatchDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "civicsearch_match_duration_ms",
		Help:    "Duration of one lookup or batch match in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"dataset"})
	DatasetRegions = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "civicsearch_dataset_regions",
		Help: "Regions loaded per dataset",
	}, []string{"dataset"})
	DatasetLoadFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "civicsearch_dataset_load_fail_total",
		Help: "Archive loads that failed, by dataset",
	}, []string{"dataset"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "civicsearch_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(LookupsTotal)
	prometheus.MustRegister(MatchDurationMs)
	prometheus.MustRegister(DatasetRegions)
	prometheus.MustRegister(DatasetLoadFailTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
