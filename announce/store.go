// Package announce implements the process-wide AnnounceStore used for
// public-group rendezvous discovery: a fixed-capacity ring of
// recent peer announces per chat id, with periodic staleness pruning.
// Buckets are slice-backed ring arenas indexed by slot.
package announce

import (
	"time"

	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/internal/clock"
)

// capacityPerChat is the maximum number of recent announces retained
// per chat id.
const capacityPerChat = 16

// staleTimeout is how long an unrefreshed bucket survives a prune tick.
const staleTimeout = 10 * time.Minute

// bucket is one chat id's ring of announces plus its last-touched time.
type bucket struct {
	entries     [capacityPerChat]codec.AnnounceNode
	occupied    [capacityPerChat]bool
	head        int // next slot to write (overwrites oldest when full)
	count       int
	lastTouched time.Time
}

// Store is the process-wide map chat_id -> bucket. Mutated only from
// within a single tick; callers owning multiple goroutines must
// serialize access themselves.
type Store struct {
	buckets map[[32]byte]*bucket
	clock   clock.Clock
}

// NewStore constructs an empty AnnounceStore. A nil clock defaults to
// the real wall clock.
func NewStore(clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Store{buckets: make(map[[32]byte]*bucket), clock: clk}
}

// AddAnnounce inserts at head, overwriting the oldest entry once the
// chat's bucket is full.
func (s *Store) AddAnnounce(node codec.AnnounceNode) {
	b, ok := s.buckets[node.ChatID]
	if !ok {
		b = &bucket{}
		s.buckets[node.ChatID] = b
	}
	b.entries[b.head] = node
	b.occupied[b.head] = true
	b.head = (b.head + 1) % capacityPerChat
	if b.count < capacityPerChat {
		b.count++
	}
	b.lastTouched = s.clock.Now()
}

// GetAnnounces returns up to max entries for chatID with distinct peer
// public keys, excluding exceptPeerPK.
func (s *Store) GetAnnounces(chatID [32]byte, max int, exceptPeerPK [32]byte) []codec.AnnounceNode {
	b, ok := s.buckets[chatID]
	if !ok {
		return nil
	}
	seen := make(map[[32]byte]bool, max)
	out := make([]codec.AnnounceNode, 0, max)
	// Walk newest-first: head-1, head-2, ... wrapping, for `count` slots.
	for i := 0; i < capacityPerChat && len(out) < max; i++ {
		idx := (b.head - 1 - i + capacityPerChat) % capacityPerChat
		if !b.occupied[idx] {
			continue
		}
		n := b.entries[idx]
		if n.PeerPublicKey == exceptPeerPK || seen[n.PeerPublicKey] {
			continue
		}
		seen[n.PeerPublicKey] = true
		out = append(out, n)
	}
	return out
}

// CleanupGCA removes chatID's bucket entirely, called when a group
// becomes private.
func (s *Store) CleanupGCA(chatID [32]byte) {
	delete(s.buckets, chatID)
}

// Prune removes every bucket whose last insertion predates the
// staleness timeout, called periodically from the session tick.
func (s *Store) Prune() {
	now := s.clock.Now()
	for id, b := range s.buckets {
		if now.Sub(b.lastTouched) > staleTimeout {
			delete(s.buckets, id)
		}
	}
}

// Len reports the number of live announces for chatID, for tests and diagnostics.
func (s *Store) Len(chatID [32]byte) int {
	b, ok := s.buckets[chatID]
	if !ok {
		return 0
	}
	return b.count
}
