// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Voting metrics
var (
	// VotesTotal counts applied vote operations by votable type and outcome
	// (created, switched, removed, unchanged).
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyra_votes_total",
			Help: "Vote operations by votable type and outcome",
		},
		[]string{"votable_type", "outcome"},
	)

	// VoteConflictsTotal counts compare-and-set misses that were retried.
	VoteConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pyra_vote_conflicts_total",
			Help: "Concurrent vote writes detected and retried",
		},
	)

	VoteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pyra_vote_duration_seconds",
			Help:    "Time to apply a vote including lock wait",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// CountsBatchSize tracks how many votables each aggregate read covers.
	CountsBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pyra_counts_batch_size",
			Help:    "Number of votables per aggregate read",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
		},
	)
)

// Listing metrics
var (
	ListingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pyra_listing_duration_seconds",
			Help:    "Time to load, score and order an article listing",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"sort"},
	)
)

// HTTP metrics
var (
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pyra_http_errors_total",
			Help: "HTTP errors by error kind",
		},
		[]string{"kind"},
	)
)
