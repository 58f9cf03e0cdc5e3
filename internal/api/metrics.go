package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scoresComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fitscore_scores_computed_total",
		Help: "Scores computed, labeled by tier.",
	}, []string{"tier"})

	scoresDisqualified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fitscore_scores_disqualified_total",
		Help: "Scores that hit a disqualifying custom instruction.",
	})

	compositeObserved = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fitscore_composite_score",
		Help:    "Distribution of composite scores.",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	decisionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fitscore_decisions_total",
		Help: "Decisions recorded, labeled by action.",
	}, []string{"action"})
)
