package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	StoreOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_store_operations_total",
			Help: "Task store operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskboard_store_operation_seconds",
			Help:    "Task store operation duration",
			Buckets: []float64{.005, .025, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)

	BotUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_bot_updates_total",
			Help: "Telegram updates handled by kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(StoreOperations, StoreLatency, HTTPRequests, BotUpdates)
}
