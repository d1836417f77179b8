package bulksync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bulk_sync_request_duration_seconds",
			Help:    "Duration of bulk sync exchanges",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"result"},
	)

	SyncPackagesReturned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bulk_sync_packages_returned_total",
			Help: "Packages returned by successful bulk syncs",
		},
	)
)
