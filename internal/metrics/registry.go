// Package metrics exposes Prometheus counters/histograms for the
// group-chat core: handshakes, lossless retransmits/gaps, sync
// rounds, peer churn, and state-replication signature checks:
// promauto-registered vars on a private Registry, one file per
// concern.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "groupchat"

// Registry is the private Prometheus registry all metrics in this
// package register against, so embedding applications can compose it
// with their own registry instead of inheriting the global default one.
var Registry = prometheus.NewRegistry()
