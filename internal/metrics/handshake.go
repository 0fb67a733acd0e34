package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HandshakesInitiated tracks REQUEST steps sent, by join type.
	HandshakesInitiated = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "handshakes",
			Name:      "initiated_total",
			Help:      "Total number of handshake REQUEST steps sent",
		},
		[]string{"join_type"}, // public, private
	)

	// HandshakesCompleted tracks handshakes that reached handshaked=true.
	HandshakesCompleted = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "handshakes",
			Name:      "completed_total",
			Help:      "Total number of handshakes that reached the handshaked state",
		},
		[]string{"status"}, // success, failure
	)

	// HandshakesFailed tracks handshake failures by cause.
	HandshakesFailed = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "handshakes",
			Name:      "failed_total",
			Help:      "Total number of failed handshakes by error kind",
		},
		[]string{"error_kind"}, // timeout, decrypt_failed, rate_limited, malformed
	)

	// HandshakeStepDuration tracks per-step latency.
	HandshakeStepDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "handshakes",
			Name:      "step_duration_seconds",
			Help:      "Handshake step duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"step"}, // request, response, response_ack
	)

	// RateLimitedHandshakes tracks inbound REQUESTs dropped by the
	// per-chat new-connection rate limiter.
	RateLimitedHandshakes = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "handshakes",
			Name:      "rate_limited_total",
			Help:      "Total number of handshake requests dropped by the rate limiter",
		},
	)
)
