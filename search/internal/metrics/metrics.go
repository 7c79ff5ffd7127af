// Package metrics defines Prometheus metrics for the search service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsProjected counts successfully applied events by type.
	EventsProjected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gavel_search_events_projected_total",
		Help: "Total number of events applied to the search index",
	}, []string{"event_type"})

	// ProjectionErrors counts failed projection attempts by error category.
	ProjectionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gavel_search_projection_errors_total",
		Help: "Total number of failed projection attempts",
	}, []string{"category"})

	// ProjectionSkipped counts updates ignored because the document is
	// tombstoned.
	ProjectionSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gavel_search_projection_skipped_total",
		Help: "Total number of events skipped for tombstoned documents",
	})

	// BootstrapDocuments records the number of documents loaded by the last
	// backfill.
	BootstrapDocuments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gavel_search_bootstrap_documents",
		Help: "Number of documents loaded by the last bootstrap backfill",
	})

	// SearchRequests counts query-surface requests by status class.
	SearchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gavel_search_requests_total",
		Help: "Total number of search requests",
	}, []string{"status"})
)
