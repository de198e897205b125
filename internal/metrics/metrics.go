// Package metrics holds the Prometheus collectors for the recommender.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome and source label values.
const (
	OutcomeSemantic = "semantic"
	OutcomeFallback = "fallback"

	SourceCache    = "cache"
	SourceRebuilt  = "rebuilt"
	SourceDisabled = "disabled"
)

var (
	// IndexBuilds counts EnsureReady runs by where the matrix came from.
	IndexBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hobby_index_builds_total",
			Help: "Embedding index initializations by source",
		},
		[]string{"source"},
	)

	// IndexRows is the number of embedding rows currently served.
	IndexRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hobby_index_rows",
			Help: "Rows in the active embedding matrix",
		},
	)

	// IndexQueries counts nearest-neighbour queries by outcome.
	IndexQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hobby_index_queries_total",
			Help: "Embedding index queries by outcome",
		},
		[]string{"outcome"},
	)

	// QueryDuration observes the time spent embedding and comparing one query.
	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hobby_index_query_duration_seconds",
			Help:    "Duration of embedding index queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Recommendations counts Recommend calls by ranking mode.
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hobby_recommendations_total",
			Help: "Recommendation requests by ranking mode",
		},
		[]string{"mode"},
	)

	// TopScore observes the best match score of each recommendation.
	TopScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hobby_recommendation_top_score",
			Help:    "Match score of the first recommended hobby",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	// HTTPRequests counts API requests by method, route pattern and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hobby_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration observes request latency per route.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hobby_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
