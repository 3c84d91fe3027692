// Package metrics defines the Prometheus collectors used across the engine
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	SearchResultsCount   prometheus.Histogram
	ResultCacheHitsTotal prometheus.Counter
	ResultCacheMissTotal prometheus.Counter
	DocsIndexedTotal     prometheus.Counter
	IngestBatchesTotal   *prometheus.CounterVec
	ShardCacheResident   prometheus.Gauge
	LexiconSize          prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by match type (Exact, Semantic, empty).",
			},
			[]string{"match_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query page.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		ResultCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "result_cache_hits_total",
				Help: "Total query-result cache hits.",
			},
		),
		ResultCacheMissTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "result_cache_misses_total",
				Help: "Total query-result cache misses.",
			},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Total documents successfully indexed by the incremental indexer.",
			},
		),
		IngestBatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_batches_total",
				Help: "Total ingest batches processed, by outcome (success, failure, rejected).",
			},
			[]string{"outcome"},
		),
		ShardCacheResident: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "shard_cache_resident_barrels",
				Help: "Number of barrel shards currently resident in the shard cache.",
			},
		),
		LexiconSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lexicon_size",
				Help: "Number of distinct tokens currently interned in the lexicon.",
			},
		),
	}

	prometheus.MustRegister(
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.ResultCacheHitsTotal,
		m.ResultCacheMissTotal,
		m.DocsIndexedTotal,
		m.IngestBatchesTotal,
		m.ShardCacheResident,
		m.LexiconSize,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
