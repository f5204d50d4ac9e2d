package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "spam_detective",
		Subsystem: "engine",
		Name:      "analyses_total",
		Help:      "Number of completed account analyses by risk tier.",
	}, []string{"risk_level"})

	suspiciousTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spam_detective",
		Subsystem: "engine",
		Name:      "suspicious_total",
		Help:      "Number of accounts classified as suspicious.",
	})

	batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spam_detective",
		Subsystem: "engine",
		Name:      "batches_total",
		Help:      "Number of completed batch analysis runs.",
	})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spam_detective",
		Subsystem: "engine",
		Name:      "cache_hits_total",
		Help:      "Analysis results served from the cache.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spam_detective",
		Subsystem: "engine",
		Name:      "cache_misses_total",
		Help:      "Analysis cache lookups that missed.",
	})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "spam_detective",
		Subsystem: "engine",
		Name:      "analysis_duration_seconds",
		Help:      "Wall time of a single account analysis.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
	})
)
