package metrics

import (
	"sync"
	"time"
)

// Collector accumulates lightweight in-process timing samples for the
// group-chat core, independent of the Prometheus vars above. It exists
// for callers (tests, the keygen CLI's diagnostics) that want a
// snapshot without scraping /metrics.
type Collector struct {
	mu sync.RWMutex

	HandshakeCount    int64
	HandshakeFailures int64
	SignatureCount    int64
	VerificationCount int64
	VerificationFails int64
	RetransmitCount   int64
	SyncRequestCount  int64

	handshakeTimes    []int64
	verificationTimes []int64
	syncTimes         []int64

	startTime        time.Time
	maxTimingSamples int
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		startTime:        time.Now(),
		maxTimingSamples: 1000,
	}
}

// RecordHandshake records a completed (or failed) handshake attempt.
func (c *Collector) RecordHandshake(success bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.HandshakeCount++
	if !success {
		c.HandshakeFailures++
	}
	c.recordTiming(&c.handshakeTimes, duration)
}

// RecordVerification records a signature verification over replicated state.
func (c *Collector) RecordVerification(success bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.VerificationCount++
	if !success {
		c.VerificationFails++
	}
	c.recordTiming(&c.verificationTimes, duration)
}

// RecordSignature records a signing operation (no pass/fail axis).
func (c *Collector) RecordSignature() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SignatureCount++
}

// RecordRetransmit records one lossless retransmit attempt.
func (c *Collector) RecordRetransmit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RetransmitCount++
}

// RecordSync records a completed sync round (request through response applied).
func (c *Collector) RecordSync(duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SyncRequestCount++
	c.recordTiming(&c.syncTimes, duration)
}

func (c *Collector) recordTiming(timings *[]int64, d time.Duration) {
	*timings = append(*timings, d.Microseconds())
	if len(*timings) > c.maxTimingSamples {
		*timings = (*timings)[len(*timings)-c.maxTimingSamples:]
	}
}

// Snapshot is a point-in-time copy of the collector's counters/averages.
type Snapshot struct {
	Timestamp time.Time
	Uptime    time.Duration

	HandshakeCount    int64
	HandshakeFailures int64
	SignatureCount    int64
	VerificationCount int64
	VerificationFails int64
	RetransmitCount   int64
	SyncRequestCount  int64

	AvgHandshakeMicros    float64
	AvgVerificationMicros float64
	AvgSyncMicros         float64
}

// Snapshot returns a copy of the collector's current state.
func (c *Collector) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Snapshot{
		Timestamp:             time.Now(),
		Uptime:                time.Since(c.startTime),
		HandshakeCount:        c.HandshakeCount,
		HandshakeFailures:     c.HandshakeFailures,
		SignatureCount:        c.SignatureCount,
		VerificationCount:     c.VerificationCount,
		VerificationFails:     c.VerificationFails,
		RetransmitCount:       c.RetransmitCount,
		SyncRequestCount:      c.SyncRequestCount,
		AvgHandshakeMicros:    average(c.handshakeTimes),
		AvgVerificationMicros: average(c.verificationTimes),
		AvgSyncMicros:         average(c.syncTimes),
	}
}

// VerificationSuccessRate returns the verification success rate as a percentage.
func (s *Snapshot) VerificationSuccessRate() float64 {
	if s.VerificationCount == 0 {
		return 0
	}
	return float64(s.VerificationCount-s.VerificationFails) / float64(s.VerificationCount) * 100
}

func average(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int64
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

var global = NewCollector()

// Global returns the process-wide Collector instance.
func Global() *Collector { return global }
