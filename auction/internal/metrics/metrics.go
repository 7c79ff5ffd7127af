package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event publication metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gavel_auction_events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"event_type"},
	)

	PublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gavel_auction_publish_failures_total",
			Help: "Total number of event publish attempts that failed",
		},
	)

	PublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gavel_auction_publish_retries_total",
			Help: "Total number of deferred publish retries",
		},
	)

	PublishQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gavel_auction_publish_queue_depth",
			Help: "Envelopes waiting in the deferred publish queue",
		},
	)

	PublishDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gavel_auction_publish_dropped_total",
			Help: "Envelopes dropped because the deferred publish queue was full",
		},
	)

	// Fault compensation metrics
	FaultsCompensated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gavel_auction_faults_compensated_total",
			Help: "Faults resolved by republishing a corrected event",
		},
	)

	FaultsUnrecoverable = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gavel_auction_faults_unrecoverable_total",
			Help: "Faults with no compensation action, surfaced for operators",
		},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gavel_auction_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"seller"},
	)
)
