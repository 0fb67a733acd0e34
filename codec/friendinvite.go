package codec

// FriendInviteType is the step of the friend-invite dance a payload
// represents: the inviter's GROUP_INVITE, the invitee's
// GROUP_INVITE_ACCEPTED reply, and the inviter's final
// GROUP_INVITE_CONFIRMATION carrying rendezvous relays.
type FriendInviteType byte

const (
	FriendInvite FriendInviteType = iota + 1
	FriendInviteAccepted
	FriendInviteConfirmation
)

// FriendInvitePayload is the body of a friend-invite packet delivered
// over the friend overlay (whose transport is external to this
// module). SenderKey is the sending side's encryption public key;
// Relays is populated only on the confirmation step.
type FriendInvitePayload struct {
	Type      FriendInviteType
	ChatID    [32]byte
	SenderKey [32]byte
	Relays    []RelayNode
}

// Pack encodes a FriendInvitePayload as
// [type(1) | chat_id(32) | sender_pk(32) | relay_count(1) | relays...].
func (p FriendInvitePayload) Pack() []byte {
	out := make([]byte, 0, 1+32+32+1)
	out = append(out, byte(p.Type))
	out = append(out, p.ChatID[:]...)
	out = append(out, p.SenderKey[:]...)
	out = append(out, byte(len(p.Relays)))
	for _, r := range p.Relays {
		out = append(out, r.Pack()...)
	}
	return out
}

// UnpackFriendInvite decodes a FriendInvitePayload.
func UnpackFriendInvite(data []byte) (FriendInvitePayload, error) {
	if len(data) < 1+32+32+1 {
		return FriendInvitePayload{}, errShortBuffer("friend invite: short buffer")
	}
	var p FriendInvitePayload
	p.Type = FriendInviteType(data[0])
	if p.Type < FriendInvite || p.Type > FriendInviteConfirmation {
		return FriendInvitePayload{}, errMalformed("friend invite: unknown type")
	}
	copy(p.ChatID[:], data[1:33])
	copy(p.SenderKey[:], data[33:65])
	count := int(data[65])
	off := 66
	for i := 0; i < count; i++ {
		relay, n, err := UnpackRelayNode(data[off:])
		if err != nil {
			return FriendInvitePayload{}, err
		}
		p.Relays = append(p.Relays, relay)
		off += n
	}
	return p, nil
}
