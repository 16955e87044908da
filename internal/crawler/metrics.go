package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deck_crawler_fetch_attempts_total",
		Help: "Fetch attempts by outcome (success, failure)",
	}, []string{"outcome"})

	fetchBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "deck_crawler_fetch_backoff_seconds",
		Help:    "Backoff waited after a failed fetch attempt",
		Buckets: []float64{1, 5, 10, 20, 30, 60},
	})

	fetchExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deck_crawler_fetch_exhausted_total",
		Help: "Fetches that failed on every attempt of the retry budget",
	})

	rowsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deck_crawler_rows_emitted_total",
		Help: "Rows produced by the traversal, by completeness",
	}, []string{"complete"})

	commandersProcessed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "deck_crawler_commanders_processed",
		Help: "Commanders whose decks have all been visited in the current run",
	})
)
