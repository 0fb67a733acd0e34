package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PeersConfirmed tracks the current confirmed-peer count, by chat.
	PeersConfirmed = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "peers",
			Name:      "confirmed",
			Help:      "Current number of confirmed peers in a chat",
		},
		[]string{"chat_id_hash"},
	)

	// PeerChurn tracks peer table add/remove events by reason.
	PeerChurn = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "peers",
			Name:      "churn_total",
			Help:      "Total number of peer-table add/remove events",
		},
		[]string{"event"}, // added, timeout, kicked, banned, duplicate_nick, part, role_invalid
	)

	// SyncRequestsSent and SyncRequestsHandled track the sync protocol.
	SyncRequestsSent = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "requests_sent_total",
			Help:      "Total number of SyncRequest packets sent",
		},
	)
	SyncRequestsHandled = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "requests_handled_total",
			Help:      "Total number of SyncRequest packets answered with a SyncResponse",
		},
	)

	// PingsBehind tracks the two-ping-rule deferred sync trigger.
	PingsBehind = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "pings_behind_total",
			Help:      "Total number of pings observed reporting a newer peer/state/sanctions/topic version",
		},
	)
)
