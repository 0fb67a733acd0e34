package groupchat

import (
	"github.com/ingvar1995/toxcore/codec"
	gcrypto "github.com/ingvar1995/toxcore/crypto"
	"github.com/ingvar1995/toxcore/handshake"
	"github.com/ingvar1995/toxcore/internal/logger"
	"github.com/ingvar1995/toxcore/transport"
)

// The friend-invite dance runs over the friend overlay, whose
// transport is external to this module: each step here builds or
// consumes the packed payload, and the host carries it between
// friends.
//
// step 1  inviter:  InviteFriend            -> GROUP_INVITE
// step 2  invitee:  AcceptFriendInvite      -> GROUP_INVITE_ACCEPTED
// step 3  inviter:  HandleInviteAccepted    -> GROUP_INVITE_CONFIRMATION
//         invitee:  HandleInviteConfirmation (schedules the handshake)

// InviteFriend builds a GROUP_INVITE payload for friendID and records
// the outbound invite so the accepted reply can be validated later.
func (s *Session) InviteFriend(chatIDHash uint32, friendID [32]byte) ([]byte, error) {
	c, ok := s.chats[chatIDHash]
	if !ok {
		return nil, logger.New(logger.CodePeerUnknown, "groupchat: invite for unknown chat")
	}
	c.SavedInvites = append(c.SavedInvites, SavedInvite{
		FriendID:  friendID,
		ChatID:    c.ChatID,
		InvitedAt: s.clock.Now(),
	})
	if ring := s.cfg.Membership.SavedInvitesRing; len(c.SavedInvites) > ring {
		c.SavedInvites = c.SavedInvites[len(c.SavedInvites)-ring:]
	}
	return codec.FriendInvitePayload{
		Type:      codec.FriendInvite,
		ChatID:    c.ChatID,
		SenderKey: c.SelfIdentity.EncryptPublicBytes(),
	}.Pack(), nil
}

// AcceptFriendInvite consumes a GROUP_INVITE: it creates the chat in
// Connecting and returns it together with the GROUP_INVITE_ACCEPTED
// payload for the host to send back to the inviter.
func (s *Session) AcceptFriendInvite(sock transport.Socket, data []byte, password []byte, self *gcrypto.Identity, selfInfo SelfInfo) (*Chat, []byte, error) {
	p, err := codec.UnpackFriendInvite(data)
	if err != nil {
		return nil, nil, err
	}
	if p.Type != codec.FriendInvite {
		return nil, nil, logger.New(logger.CodeMalformed, "groupchat: not a friend invite")
	}
	chat, err := s.Join(sock, p.ChatID, password, self, selfInfo, handshake.JoinPrivate)
	if err != nil {
		return nil, nil, err
	}
	accepted := codec.FriendInvitePayload{
		Type:      codec.FriendInviteAccepted,
		ChatID:    p.ChatID,
		SenderKey: self.EncryptPublicBytes(),
	}.Pack()
	return chat, accepted, nil
}

// HandleInviteAccepted consumes the invitee's GROUP_INVITE_ACCEPTED on
// the inviter side. The reply is only honored if a matching invite is
// still in the chat's saved-invites ring; it returns the
// GROUP_INVITE_CONFIRMATION payload carrying the rendezvous relays the
// invitee should handshake through.
func (s *Session) HandleInviteAccepted(friendID [32]byte, data []byte, relays []codec.RelayNode) ([]byte, error) {
	p, err := codec.UnpackFriendInvite(data)
	if err != nil {
		return nil, err
	}
	if p.Type != codec.FriendInviteAccepted {
		return nil, logger.New(logger.CodeMalformed, "groupchat: not an invite-accepted reply")
	}
	c, ok := s.chats[codec.JenkinsHash(p.ChatID[:])]
	if !ok {
		return nil, logger.New(logger.CodePeerUnknown, "groupchat: accepted reply for unknown chat")
	}
	saved := false
	for _, inv := range c.SavedInvites {
		if inv.FriendID == friendID && inv.ChatID == p.ChatID {
			saved = true
			break
		}
	}
	if !saved {
		return nil, logger.New(logger.CodePeerUnknown, "groupchat: no saved invite for this friend")
	}
	return codec.FriendInvitePayload{
		Type:      codec.FriendInviteConfirmation,
		ChatID:    c.ChatID,
		SenderKey: c.SelfIdentity.EncryptPublicBytes(),
		Relays:    relays,
	}.Pack(), nil
}

// HandleInviteConfirmation consumes the inviter's final
// GROUP_INVITE_CONFIRMATION on the invitee side and schedules a
// handshake to the inviter through the confirmed relays (out-of-band
// when only a relay public key is known).
func (s *Session) HandleInviteConfirmation(data []byte) error {
	p, err := codec.UnpackFriendInvite(data)
	if err != nil {
		return err
	}
	if p.Type != codec.FriendInviteConfirmation {
		return logger.New(logger.CodeMalformed, "groupchat: not an invite confirmation")
	}
	c, ok := s.chats[codec.JenkinsHash(p.ChatID[:])]
	if !ok {
		return logger.New(logger.CodePeerUnknown, "groupchat: confirmation for unknown chat")
	}
	return c.AddPeer(p.SenderKey, p.Relays)
}
