// Package metrics exposes Prometheus collectors for the crawl pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesFetchedTotal    prometheus.Counter
	reviewsStoredTotal   prometheus.Counter
	reviewsSkippedTotal  prometheus.Counter
	fetchDurationSeconds prometheus.Histogram
	storeFailuresTotal   prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "reviewharvest_pages_fetched_total",
			Help: "Total number of listing pages fetched.",
		})
		reviewsStoredTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "reviewharvest_reviews_stored_total",
			Help: "Total number of review rows committed.",
		})
		reviewsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "reviewharvest_reviews_skipped_total",
			Help: "Total number of review blocks skipped as malformed.",
		})
		fetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "reviewharvest_fetch_duration_seconds",
			Help:    "Histogram of page fetch latencies.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		})
		storeFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "reviewharvest_store_failures_total",
			Help: "Total number of failed review inserts.",
		})
	})
}

// ObservePageFetched records one fetched page and its latency.
func ObservePageFetched(d time.Duration) {
	if pagesFetchedTotal == nil {
		return
	}
	pagesFetchedTotal.Inc()
	fetchDurationSeconds.Observe(d.Seconds())
}

// ObserveReviewStored records one committed row.
func ObserveReviewStored() {
	if reviewsStoredTotal == nil {
		return
	}
	reviewsStoredTotal.Inc()
}

// ObserveReviewsSkipped records review blocks dropped as malformed.
func ObserveReviewsSkipped(n int) {
	if reviewsSkippedTotal == nil || n <= 0 {
		return
	}
	reviewsSkippedTotal.Add(float64(n))
}

// ObserveStoreFailure records a failed insert.
func ObserveStoreFailure() {
	if storeFailuresTotal == nil {
		return
	}
	storeFailuresTotal.Inc()
}

// Handler returns an http.Handler serving /metrics and /healthz, for
// watching long crawls.
func Handler() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
