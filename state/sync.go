package state

import (
	"encoding/binary"

	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/internal/logger"
)

// SyncRequest is sent by a peer that suspects it is behind: it
// declares how many confirmed peers it already knows, plus the group
// password if the chat requires one.
type SyncRequest struct {
	NumPeersKnown uint32
	Password      []byte // <= 32 bytes
}

// Pack encodes a SyncRequest as [num_peers_known(4) | pw_len(1) | password].
func (r SyncRequest) Pack() []byte {
	out := make([]byte, 4, 4+1+len(r.Password))
	binary.BigEndian.PutUint32(out, r.NumPeersKnown)
	out = append(out, byte(len(r.Password)))
	out = append(out, r.Password...)
	return out
}

// UnpackSyncRequest decodes a SyncRequest.
func UnpackSyncRequest(data []byte) (SyncRequest, error) {
	if len(data) < 5 {
		return SyncRequest{}, logger.New(logger.CodeShortBuffer, "state: sync request short buffer")
	}
	r := SyncRequest{NumPeersKnown: binary.BigEndian.Uint32(data[:4])}
	pwLen := int(data[4])
	if len(data) < 5+pwLen {
		return SyncRequest{}, logger.New(logger.CodeShortBuffer, "state: sync request short password")
	}
	r.Password = append([]byte(nil), data[5:5+pwLen]...)
	return r, nil
}

// NewPeerEntry is one row of the peer-list tail of a SyncResponse: the
// new peer's encryption public key plus the relay nodes through which
// it can be reached.
type NewPeerEntry struct {
	EncryptPublicKey [32]byte
	Relays           []codec.RelayNode
}

// SyncResponseBody is the final body sent after the headers
// (SHARED_STATE, MOD_LIST, SANCTIONS_LIST, TOPIC) in a SyncResponse
// : the peers the requester doesn't know about yet.
type SyncResponseBody struct {
	Peers []NewPeerEntry
}

// Pack encodes a SyncResponseBody as
// [num_new_peers(2) | {enc_pk(32) | relay_count(2) | packed_relay * relay_count} * num_new_peers].
func (b SyncResponseBody) Pack() []byte {
	out := make([]byte, 2)
	binary.BigEndian.PutUint16(out, uint16(len(b.Peers)))
	for _, p := range b.Peers {
		out = append(out, p.EncryptPublicKey[:]...)
		relayCount := make([]byte, 2)
		binary.BigEndian.PutUint16(relayCount, uint16(len(p.Relays)))
		out = append(out, relayCount...)
		for _, r := range p.Relays {
			out = append(out, r.Pack()...)
		}
	}
	return out
}

// DecodeSyncResponse decodes a SyncResponseBody.
func DecodeSyncResponse(data []byte) (SyncResponseBody, error) {
	if len(data) < 2 {
		return SyncResponseBody{}, logger.New(logger.CodeShortBuffer, "state: sync response missing count")
	}
	count := int(binary.BigEndian.Uint16(data[:2]))
	off := 2
	out := SyncResponseBody{Peers: make([]NewPeerEntry, 0, count)}
	for i := 0; i < count; i++ {
		if len(data) < off+32+2 {
			return SyncResponseBody{}, logger.New(logger.CodeShortBuffer, "state: sync response short peer entry")
		}
		var entry NewPeerEntry
		copy(entry.EncryptPublicKey[:], data[off:off+32])
		off += 32
		relayCount := int(binary.BigEndian.Uint16(data[off : off+2]))
		off += 2
		for j := 0; j < relayCount; j++ {
			relay, n, err := codec.UnpackRelayNode(data[off:])
			if err != nil {
				return SyncResponseBody{}, err
			}
			entry.Relays = append(entry.Relays, relay)
			off += n
		}
		out.Peers = append(out.Peers, entry)
	}
	return out, nil
}

// BuildSyncResponse packs the peer-list tail from a peer table
// snapshot, skipping peers the requester already knows (the caller
// filters by its own peer count/identity before calling). The new
// peer's public key lands in this body before the caller fans out the
// per-existing-peer PEER_ANNOUNCE broadcasts, so a slow PEER_ANNOUNCE
// can never race ahead of the sync response that introduces the peer.
func BuildSyncResponse(peers []NewPeerEntry) SyncResponseBody {
	return SyncResponseBody{Peers: peers}
}
