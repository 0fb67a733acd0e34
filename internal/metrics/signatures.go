package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SignatureOperations tracks sign/verify calls over the
	// state-replication artifacts (shared state, mod list via hash,
	// sanctions, topic).
	SignatureOperations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signatures",
			Name:      "operations_total",
			Help:      "Total number of sign/verify operations over replicated state",
		},
		[]string{"artifact", "operation"}, // shared_state|sanctions|topic, sign|verify
	)

	// SignatureFailures tracks verification failures by artifact.
	SignatureFailures = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signatures",
			Name:      "failures_total",
			Help:      "Total number of signature verification failures over replicated state",
		},
		[]string{"artifact"},
	)

	// SignatureDuration tracks sign/verify latency.
	SignatureDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "signatures",
			Name:      "duration_seconds",
			Help:      "Sign/verify duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 15),
		},
		[]string{"artifact", "operation"},
	)
)
