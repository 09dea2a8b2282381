package canned

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	requests *prometheus.CounterVec
	replies  *prometheus.CounterVec
	bytes    prometheus.Counter
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coach",
				Subsystem: "canned",
				Name:      "requests_total",
				Help:      "Completion requests by response status.",
			},
			[]string{"status"},
		),
		replies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coach",
				Subsystem: "canned",
				Name:      "replies_total",
				Help:      "Replies served by kind (keyword or fallback).",
			},
			[]string{"kind"},
		),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "coach",
			Subsystem: "canned",
			Name:      "stream_bytes_total",
			Help:      "Event stream bytes written.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coach",
			Subsystem: "canned",
			Name:      "stream_duration_seconds",
			Help:      "Time to stream a complete reply.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.requests, m.replies, m.bytes, m.duration)
	return m
}
