package codec

// InvitePayload is the body of an INVITE_REQUEST packet: the
// requester's own nick plus the group password, if any.
type InvitePayload struct {
	Nick     []byte // <= 128 bytes
	Password []byte // <= 32 bytes
}

// Pack encodes an InvitePayload as [nick_len(1) | nick | pw_len(1) | password].
func (p InvitePayload) Pack() []byte {
	out := make([]byte, 1, 1+len(p.Nick)+1+len(p.Password))
	out[0] = byte(len(p.Nick))
	out = append(out, p.Nick...)
	out = append(out, byte(len(p.Password)))
	out = append(out, p.Password...)
	return out
}

// UnpackInvitePayload decodes an InvitePayload.
func UnpackInvitePayload(data []byte) (InvitePayload, error) {
	if len(data) < 1 {
		return InvitePayload{}, errShortBuffer("invite: missing nick length")
	}
	nickLen := int(data[0])
	if len(data) < 1+nickLen+1 {
		return InvitePayload{}, errShortBuffer("invite: short nick/password length")
	}
	nick := append([]byte(nil), data[1:1+nickLen]...)
	off := 1 + nickLen
	pwLen := int(data[off])
	off++
	if len(data) < off+pwLen {
		return InvitePayload{}, errShortBuffer("invite: short password")
	}
	password := append([]byte(nil), data[off:off+pwLen]...)
	return InvitePayload{Nick: nick, Password: password}, nil
}

// InviteRejectReason is the single byte body of an INVITE_RESPONSE_REJECT packet.
type InviteRejectReason byte

const (
	RejectBadPassword InviteRejectReason = iota + 1
	RejectNickTaken
	RejectGroupFull
)
