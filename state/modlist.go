package state

import (
	"crypto/sha256"

	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/internal/logger"
)

// maxMods is the configured moderator-list capacity.
const maxMods = 128

// ModList is the founder-mutable ordered list of moderator signing keys.
type ModList struct {
	keys [][32]byte
}

// NewModList constructs an empty moderator list.
func NewModList() *ModList { return &ModList{} }

// Keys returns the ordered moderator signing keys.
func (m *ModList) Keys() [][32]byte { return m.keys }

// Contains reports whether signPub is currently a moderator.
func (m *ModList) Contains(signPub [32]byte) bool {
	for _, k := range m.keys {
		if k == signPub {
			return true
		}
	}
	return false
}

// Hash returns the 32-byte hash over the packed list, stored in
// shared_state.mod_list_hash.
func (m *ModList) Hash() [32]byte {
	return sha256.Sum256(codec.PackModList(m.keys))
}

// Add appends a moderator, pruning the oldest moderator not currently
// connected when the list is at capacity.
// connected reports whether a signing key belongs to a live peer
// connection; the caller supplies it from the peer table.
func (m *ModList) Add(signPub [32]byte, connected func([32]byte) bool) error {
	if m.Contains(signPub) {
		return nil
	}
	if len(m.keys) >= maxMods {
		pruned := false
		for i, k := range m.keys {
			if connected == nil || !connected(k) {
				m.keys = append(m.keys[:i], m.keys[i+1:]...)
				pruned = true
				break
			}
		}
		if !pruned {
			return logger.New(logger.CodeMalformed, "state: mod list full, no prunable entry")
		}
	}
	m.keys = append(m.keys, signPub)
	return nil
}

// Remove deletes a moderator signing key, reporting whether it was present.
func (m *ModList) Remove(signPub [32]byte) bool {
	for i, k := range m.keys {
		if k == signPub {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			return true
		}
	}
	return false
}

// Pack encodes the list for the wire.
func (m *ModList) Pack() []byte { return codec.PackModList(m.keys) }

// ValidateAgainstHash recomputes the hash of an incoming packed mod
// list and compares it with the shared state's recorded hash.
func ValidateAgainstHash(packed []byte, wantHash [32]byte) ([][32]byte, error) {
	keys, err := codec.UnpackModList(packed)
	if err != nil {
		return nil, err
	}
	got := sha256.Sum256(codec.PackModList(keys))
	if got != wantHash {
		return nil, logger.New(logger.CodeBadSignature, "state: mod list hash mismatch")
	}
	return keys, nil
}
