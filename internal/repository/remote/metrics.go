package remote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_store_cache_lookups_total",
			Help: "Cache lookups by cache and result (hit, miss, stale)",
		},
		[]string{"cache", "result"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "remote_store_queue_depth",
			Help: "Number of mutations waiting for connectivity",
		},
	)

	QueueReplayedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_store_queue_replayed_total",
			Help: "Replayed offline mutations by kind and result",
		},
		[]string{"kind", "result"},
	)

	QueueDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_store_queue_dropped_total",
			Help: "Offline mutations dropped after max age or attempts",
		},
		[]string{"kind"},
	)

	PushEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_store_push_events_total",
			Help: "Push events received by type",
		},
		[]string{"type"},
	)

	PushReconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "remote_store_push_reconnects_total",
			Help: "Push stream reconnect attempts",
		},
	)

	StoreOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "remote_store_online",
			Help: "1 when the remote store believes the server is reachable",
		},
	)
)
