// Package metrics provides Prometheus metrics for recordlink.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ComparisonsTotal counts scored record pairs by weight profile
	ComparisonsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recordlink",
			Subsystem: "engine",
			Name:      "comparisons_total",
			Help:      "Total number of record pairs scored by weight profile",
		},
		[]string{"profile"},
	)

	// Scores tracks the distribution of similarity scores
	Scores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "recordlink",
			Subsystem: "engine",
			Name:      "score",
			Help:      "Distribution of record similarity scores",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// StoreRecords tracks how many records the in-memory store holds
	StoreRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "recordlink",
			Subsystem: "store",
			Name:      "records",
			Help:      "Number of records held in the store",
		},
	)
)

// ObserveScore records one scored pair.
func ObserveScore(profile string, score float64) {
	ComparisonsTotal.WithLabelValues(profile).Inc()
	Scores.Observe(score)
}
