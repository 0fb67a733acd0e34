package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LosslessSent tracks lossless packets sent, by inner kind.
	LosslessSent = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "lossless_sent_total",
			Help:      "Total number of lossless packets sent",
		},
		[]string{"inner_kind"},
	)

	// LosslessReceived tracks lossless packets delivered in order.
	LosslessReceived = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "lossless_received_total",
			Help:      "Total number of lossless packets delivered in order",
		},
		[]string{"inner_kind"},
	)

	// LosslessRetransmits tracks window-slot retries.
	LosslessRetransmits = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "lossless_retransmits_total",
			Help:      "Total number of lossless packet retransmit attempts",
		},
	)

	// LosslessGaps tracks out-of-order arrivals that triggered a
	// MESSAGE_ACK request_id gap-fill.
	LosslessGaps = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "lossless_gaps_total",
			Help:      "Total number of out-of-order lossless arrivals that requested a gap fill",
		},
	)

	// LosslessDuplicates tracks duplicate/stale message_id arrivals.
	LosslessDuplicates = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "lossless_duplicates_total",
			Help:      "Total number of duplicate or stale lossless packets observed",
		},
	)

	// LossySent/LossyReceived track best-effort datagrams.
	LossySent = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "lossy_sent_total",
			Help:      "Total number of lossy packets sent",
		},
		[]string{"inner_kind"},
	)
	LossyReceived = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "lossy_received_total",
			Help:      "Total number of lossy packets received",
		},
		[]string{"inner_kind"},
	)
)
