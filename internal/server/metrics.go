package server

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	queries  *prometheus.CounterVec
	duration prometheus.Histogram
	charts   prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pandacode_queries_total",
			Help: "Processed queries by outcome (ok or error kind).",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pandacode_query_duration_seconds",
			Help:    "End-to-end query latency.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
		}),
		charts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pandacode_charts_captured_total",
			Help: "Charts copied into the charts directory.",
		}),
	}
	reg.MustRegister(m.queries, m.duration, m.charts)
	return m
}
