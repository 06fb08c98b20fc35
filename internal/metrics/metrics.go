// Package metrics holds the Prometheus collectors of the balance scanner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AggregatorCalls tracks batched calls sent to the aggregator contract
	AggregatorCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethscan_aggregator_calls_total",
			Help: "Total number of batched aggregator calls",
		},
		[]string{"provider", "selector"},
	)

	// AggregatorLatency tracks latency of a single chunk call
	AggregatorLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ethscan_aggregator_latency_seconds",
			Help:    "Aggregator call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "selector"},
	)

	// ChunkSize tracks how many items go into each aggregator call
	ChunkSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ethscan_chunk_items",
			Help:    "Number of items per aggregator call",
			Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 2500},
		},
	)

	// TransportErrors tracks calls that failed at the transport or decode level
	TransportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethscan_transport_errors_total",
			Help: "Total number of fatal aggregator call errors",
		},
		[]string{"provider", "error_type"},
	)

	// ItemFailures tracks items the aggregator reported as failed
	ItemFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethscan_item_failures_total",
			Help: "Total number of per-item failures inside aggregator responses",
		},
		[]string{"selector"},
	)

	// ItemRetries tracks direct retries of failed items by outcome
	ItemRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethscan_item_retries_total",
			Help: "Total number of direct single-item retries",
		},
		[]string{"outcome"},
	)
)
