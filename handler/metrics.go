package handler

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the print service Prometheus metrics.
type metrics struct {
	prints    *prometheus.CounterVec
	cacheHits prometheus.Counter
	duration  prometheus.Histogram
}

func newMetrics(registry *prometheus.Registry) *metrics {
	m := &metrics{
		prints: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sdlprint_prints_total",
				Help: "Schemas printed, labelled by outcome",
			},
			[]string{"outcome"},
		),
		cacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sdlprint_cache_hits_total",
				Help: "Print requests answered from the result cache",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sdlprint_print_duration_seconds",
				Help:    "Time spent parsing and printing one schema",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
	}
	registry.MustRegister(m.prints, m.cacheHits, m.duration)
	return m
}
