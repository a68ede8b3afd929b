package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PersonsReported = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "persons_reported_total",
		Help:      "Total number of lost-person reports accepted",
	})

	MatchesReported = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "matches_reported_total",
		Help:      "Total number of match reports received from the recognition service",
	})

	NotificationsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "notifications_resolved_total",
		Help:      "Total number of staff resolutions by action",
	}, []string{"action"})

	RecognitionCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "recognition_calls_total",
		Help:      "Outbound calls to the recognition service by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reunite",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "reunite",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
