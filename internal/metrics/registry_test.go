package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistered(t *testing.T) {
	if HandshakesInitiated == nil || HandshakesCompleted == nil || HandshakesFailed == nil {
		t.Fatal("handshake metrics not registered")
	}
	if LosslessSent == nil || LosslessRetransmits == nil || LosslessGaps == nil {
		t.Fatal("transport metrics not registered")
	}
	if PeersConfirmed == nil || PeerChurn == nil || SyncRequestsSent == nil {
		t.Fatal("peer/sync metrics not registered")
	}
	if SignatureOperations == nil || SignatureFailures == nil {
		t.Fatal("signature metrics not registered")
	}
}

func TestMetricsIncrement(t *testing.T) {
	HandshakesInitiated.WithLabelValues("public").Inc()
	HandshakesCompleted.WithLabelValues("success").Inc()
	LosslessSent.WithLabelValues("PING").Inc()
	LosslessRetransmits.Inc()
	PeerChurn.WithLabelValues("added").Inc()
	SignatureOperations.WithLabelValues("shared_state", "verify").Inc()

	if c := testutil.CollectAndCount(HandshakesInitiated); c == 0 {
		t.Error("HandshakesInitiated has no samples")
	}
	if c := testutil.CollectAndCount(PeerChurn); c == 0 {
		t.Error("PeerChurn has no samples")
	}
}

func TestCollectorSnapshot(t *testing.T) {
	c := NewCollector()
	c.RecordHandshake(true, 5*time.Millisecond)
	c.RecordHandshake(false, 10*time.Millisecond)
	c.RecordVerification(true, time.Millisecond)
	c.RecordVerification(false, time.Millisecond)
	c.RecordRetransmit()
	c.RecordSync(20 * time.Millisecond)

	snap := c.Snapshot()
	if snap.HandshakeCount != 2 || snap.HandshakeFailures != 1 {
		t.Fatalf("unexpected handshake counts: %+v", snap)
	}
	if snap.VerificationCount != 2 || snap.VerificationFails != 1 {
		t.Fatalf("unexpected verification counts: %+v", snap)
	}
	if rate := snap.VerificationSuccessRate(); rate != 50 {
		t.Fatalf("expected 50%% success rate, got %v", rate)
	}
	if snap.RetransmitCount != 1 || snap.SyncRequestCount != 1 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
}
