package local

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "local_store_operations_total",
			Help: "Total number of local package store operations",
		},
		[]string{"operation", "result"},
	)

	StoreEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "local_store_evictions_total",
			Help: "Total number of packages evicted by storage size limit",
		},
	)

	StorePackages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "local_store_packages",
			Help: "Number of packages held by the local store",
		},
	)
)

func observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreOperationsTotal.WithLabelValues(operation, result).Inc()
}
