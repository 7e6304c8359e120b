package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "querykit"

// Outcome labels for ListingRequests.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	ListingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_requests_total",
			Help:      "Collection listing requests by resource and outcome.",
		},
		[]string{"resource", "outcome"},
	)

	ListingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "listing_duration_seconds",
			Help:      "Time spent assembling a collection response.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	RejectedParams = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_params_total",
			Help:      "Query parameters rejected by validation, by parameter name.",
		},
		[]string{"parameter"},
	)

	ListedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listed_records_total",
			Help:      "Records returned in collection pages.",
		},
		[]string{"resource"},
	)
)

// ObserveListing records one finished listing request.
func ObserveListing(resource, outcome string, started time.Time, records int) {
	ListingRequests.WithLabelValues(resource, outcome).Inc()
	ListingDuration.WithLabelValues(resource).Observe(time.Since(started).Seconds())
	if records > 0 {
		ListedRecords.WithLabelValues(resource).Add(float64(records))
	}
}

// ObserveRejected counts a validation failure for the named query parameter.
func ObserveRejected(parameter string) {
	if parameter == "" {
		parameter = "unknown"
	}
	RejectedParams.WithLabelValues(parameter).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
