package membership

import (
	"time"

	"github.com/ingvar1995/toxcore/internal/metrics"
)

// rateLimitThreshold is the new_connection_counter ceiling above
// which inbound handshake requests are dropped.
const rateLimitThreshold = 10

// RateLimiter implements the per-chat new_connection_counter/
// block_handshakes pair: the counter increments per admitted
// handshake-request and decays by exactly one per elapsed second,
// never blocking — the chat's own tick drives the decay, so the
// cooperative loop never suspends on admission control.
type RateLimiter struct {
	counter   int
	lastDecay time.Time
}

// NewRateLimiter constructs a RateLimiter at zero.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{}
}

// Admit records one inbound handshake-request attempt that would add
// a new peer, returning false (and bumping the rate-limited metric)
// once the counter has reached the threshold.
func (r *RateLimiter) Admit() bool {
	if r.counter >= rateLimitThreshold {
		metrics.RateLimitedHandshakes.Inc()
		return false
	}
	r.counter++
	return true
}

// Tick decays the counter by one per full second elapsed since the
// last decay; block_handshakes clears as soon as the counter drops
// below the threshold.
func (r *RateLimiter) Tick(now time.Time) {
	if r.lastDecay.IsZero() {
		r.lastDecay = now
		return
	}
	for now.Sub(r.lastDecay) >= time.Second && r.counter > 0 {
		r.counter--
		r.lastDecay = r.lastDecay.Add(time.Second)
	}
	if r.counter == 0 {
		r.lastDecay = now
	}
}

// Blocked reports whether block_handshakes is currently set.
func (r *RateLimiter) Blocked() bool {
	return r.counter >= rateLimitThreshold
}
