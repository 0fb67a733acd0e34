// Package membership implements the per-chat peer table: insertion,
// duplicate-nick and role validation, peer_id allocation, and the
// new-connection rate limiter.
package membership

import (
	"bytes"

	"github.com/ingvar1995/toxcore/internal/idgen"
	"github.com/ingvar1995/toxcore/internal/logger"
)

// Role is a peer's validated standing within the group.
type Role int

const (
	RoleInvalid Role = iota
	RoleObserver
	RoleUser
	RoleModerator
	RoleFounder
)

// Status is the small presence enum peers report, valid when < StatusInvalid.
type Status byte

const (
	StatusNone Status = iota
	StatusAway
	StatusBusy
	StatusInvalid
)

// Peer is one non-self or self entry in a chat's peer table.
type Peer struct {
	Nick             []byte // <= 128 bytes, unique within the group
	Status           Status
	Role             Role
	PeerID           uint32 // opaque, random, unique within the chat
	Ignore           bool   // local-only
	EncryptPublicKey [32]byte
	SignPublicKey    [32]byte
}

const maxNickLen = 128

// confirmedRingCap is the size of the confirmed-peers ring used for
// reconnect validation.
const confirmedRingCap = 10

// Table is one chat's peer table. Index 0 is always self.
type Table struct {
	peers []*Peer
	ids   idgen.Source

	confirmedRing [confirmedRingCap][32]byte
	confirmedLen  int
	confirmedPos  int
}

// NewTable constructs a Table with self pre-inserted at index 0,
// drawing peer_ids from the process-wide cryptographic RNG.
func NewTable(self *Peer) *Table {
	return &Table{peers: []*Peer{self}, ids: idgen.Crypto}
}

// SetIDSource overrides the peer_id RNG, so tests can assign
// deterministic ids.
func (t *Table) SetIDSource(src idgen.Source) { t.ids = src }

// Add inserts a new peer with an Invalid role and a freshly allocated
// peer_id, rejecting duplicates by encryption public key.
func (t *Table) Add(encPub, signPub [32]byte) (*Peer, error) {
	for _, p := range t.peers {
		if p.EncryptPublicKey == encPub {
			return nil, logger.New(logger.CodePeerDuplicate, "membership: peer already present")
		}
	}
	id, err := t.allocatePeerID()
	if err != nil {
		return nil, err
	}
	p := &Peer{EncryptPublicKey: encPub, SignPublicKey: signPub, Role: RoleInvalid, PeerID: id}
	t.peers = append(t.peers, p)
	return p, nil
}

// allocatePeerID rejection-samples a fresh 32-bit peer_id from the
// table's id source until it finds one not already in use.
func (t *Table) allocatePeerID() (uint32, error) {
	for {
		id, err := idgen.Uint32(t.ids)
		if err != nil {
			return 0, err
		}
		if t.peerIDInUse(id) {
			continue
		}
		return id, nil
	}
}

func (t *Table) peerIDInUse(id uint32) bool {
	for _, p := range t.peers {
		if p.PeerID == id {
			return true
		}
	}
	return false
}

// Update copies nick/status/role onto the peer at index, rejecting an
// empty nick and deleting the peer on a duplicate-nick collision.
func (t *Table) Update(index int, nick []byte, status Status, role Role) error {
	if index <= 0 || index >= len(t.peers) {
		return logger.New(logger.CodePeerUnknown, "membership: peer index out of range")
	}
	if len(nick) == 0 {
		return logger.New(logger.CodeMalformed, "membership: empty nick rejected")
	}
	if len(nick) > maxNickLen {
		nick = nick[:maxNickLen]
	}
	for i, other := range t.peers {
		if i == index {
			continue
		}
		if bytes.Equal(other.Nick, nick) {
			t.Delete(index)
			return logger.New(logger.CodeDuplicateNick, "membership: nick collides with existing peer")
		}
	}
	p := t.peers[index]
	p.Nick = nick
	p.Status = status
	p.Role = role
	return nil
}

// Delete removes the peer at index, compacting the list by swapping
// with the last element. If the departing peer
// was ever handshaked (tracked by the caller before calling Delete),
// its key should be recorded via RecordConfirmed first.
func (t *Table) Delete(index int) {
	if index <= 0 || index >= len(t.peers) {
		return
	}
	last := len(t.peers) - 1
	t.peers[index] = t.peers[last]
	t.peers = t.peers[:last]
}

// RecordConfirmed appends encPub to the confirmed-peers ring so a
// future reconnect from the same identity is accepted even when the
// group is not public.
func (t *Table) RecordConfirmed(encPub [32]byte) {
	t.confirmedRing[t.confirmedPos] = encPub
	t.confirmedPos = (t.confirmedPos + 1) % confirmedRingCap
	if t.confirmedLen < confirmedRingCap {
		t.confirmedLen++
	}
}

// WasConfirmed reports whether encPub appears in the confirmed-peers ring.
func (t *Table) WasConfirmed(encPub [32]byte) bool {
	for i := 0; i < t.confirmedLen; i++ {
		if t.confirmedRing[i] == encPub {
			return true
		}
	}
	return false
}

// SetIgnore toggles a peer's local-only ignore flag: it suppresses
// delivery on the read path but triggers no broadcast or sync traffic.
func (t *Table) SetIgnore(index int, ignore bool) error {
	if index < 0 || index >= len(t.peers) {
		return logger.New(logger.CodePeerUnknown, "membership: peer index out of range")
	}
	t.peers[index].Ignore = ignore
	return nil
}

// Peers returns the live peer slice, index 0 is self.
func (t *Table) Peers() []*Peer { return t.peers }

// ByEncryptKey finds a peer's index by its encryption public key, or
// -1 if not present.
func (t *Table) ByEncryptKey(encPub [32]byte) int {
	for i, p := range t.peers {
		if p.EncryptPublicKey == encPub {
			return i
		}
	}
	return -1
}
