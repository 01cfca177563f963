package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Credential exchange metrics
var (
	TokenRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commit_notifier_token_requests_total",
			Help: "Total number of WeCom access token requests",
		},
		[]string{"result"}, // success, failure
	)
)

// Delivery metrics
var (
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commit_notifier_deliveries_total",
			Help: "Total number of notification attempts by outcome",
		},
		[]string{"status", "kind"}, // sent/skipped/failed, error kind or "none"
	)

	DeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "commit_notifier_delivery_duration_seconds",
			Help:    "Duration of a full collect and send run",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecordsCollected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "commit_notifier_records_collected",
			Help: "Number of commits read from git in the last run",
		},
	)
)

// Collectors returns every metric of this package, for pushing or custom
// registries.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		TokenRequestsTotal,
		DeliveriesTotal,
		DeliveryDuration,
		RecordsCollected,
	}
}
