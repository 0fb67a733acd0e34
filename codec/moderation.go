package codec

import "encoding/binary"

// RemovePeerEvent distinguishes a kick from a ban inside a REMOVE_PEER
// broadcast body.
type RemovePeerEvent byte

const (
	RemovePeerKick RemovePeerEvent = 1
	RemovePeerBan  RemovePeerEvent = 2
)

// RemovePeerBody is the REMOVE_PEER broadcast sub-body: [event(1) |
// target_peer_id(4)]. A ban additionally carries the new ban sanction
// as a separate SANCTIONS_LIST broadcast, not inline here, so a
// receiver missing the kick/ban notice still heals via the next sync.
type RemovePeerBody struct {
	Event        RemovePeerEvent
	TargetPeerID uint32
}

// Pack encodes a RemovePeerBody.
func (b RemovePeerBody) Pack() []byte {
	out := make([]byte, 5)
	out[0] = byte(b.Event)
	binary.BigEndian.PutUint32(out[1:], b.TargetPeerID)
	return out
}

// UnpackRemovePeerBody decodes a RemovePeerBody.
func UnpackRemovePeerBody(data []byte) (RemovePeerBody, error) {
	if len(data) < 5 {
		return RemovePeerBody{}, errShortBuffer("remove peer: short buffer")
	}
	return RemovePeerBody{
		Event:        RemovePeerEvent(data[0]),
		TargetPeerID: binary.BigEndian.Uint32(data[1:5]),
	}, nil
}

// RemoveBanBody is the REMOVE_BAN broadcast sub-body: [ban_id(4)]. The
// updated sanctions list follows as a separate SANCTIONS_LIST broadcast.
type RemoveBanBody struct {
	BanID uint32
}

// Pack encodes a RemoveBanBody.
func (b RemoveBanBody) Pack() []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, b.BanID)
	return out
}

// UnpackRemoveBanBody decodes a RemoveBanBody.
func UnpackRemoveBanBody(data []byte) (RemoveBanBody, error) {
	if len(data) < 4 {
		return RemoveBanBody{}, errShortBuffer("remove ban: short buffer")
	}
	return RemoveBanBody{BanID: binary.BigEndian.Uint32(data[:4])}, nil
}

// SetModBody is the SET_MOD broadcast sub-body: [added(1) |
// signing_public_key(32)]. The updated MOD_LIST and SHARED_STATE
// packets follow as separate broadcasts.
type SetModBody struct {
	Added     bool
	SigningPK [32]byte
}

// Pack encodes a SetModBody.
func (b SetModBody) Pack() []byte {
	out := make([]byte, 33)
	if b.Added {
		out[0] = 1
	}
	copy(out[1:], b.SigningPK[:])
	return out
}

// UnpackSetModBody decodes a SetModBody.
func UnpackSetModBody(data []byte) (SetModBody, error) {
	if len(data) < 33 {
		return SetModBody{}, errShortBuffer("set mod: short buffer")
	}
	var b SetModBody
	b.Added = data[0] != 0
	copy(b.SigningPK[:], data[1:33])
	return b, nil
}

// SetObserverBody is the SET_OBSERVER broadcast sub-body: [added(1) |
// encrypt_public_key(32)]. The updated SANCTIONS_LIST follows as a
// separate broadcast.
type SetObserverBody struct {
	Added     bool
	EncryptPK [32]byte
}

// Pack encodes a SetObserverBody.
func (b SetObserverBody) Pack() []byte {
	out := make([]byte, 33)
	if b.Added {
		out[0] = 1
	}
	copy(out[1:], b.EncryptPK[:])
	return out
}

// UnpackSetObserverBody decodes a SetObserverBody.
func UnpackSetObserverBody(data []byte) (SetObserverBody, error) {
	if len(data) < 33 {
		return SetObserverBody{}, errShortBuffer("set observer: short buffer")
	}
	var b SetObserverBody
	b.Added = data[0] != 0
	copy(b.EncryptPK[:], data[1:33])
	return b, nil
}
