package groupchat

import (
	"time"

	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/internal/logger"
	"github.com/ingvar1995/toxcore/membership"
)

// GroupName returns the group's current name from shared state.
func (c *Chat) GroupName() []byte { return c.SharedState.Current.Fields.GroupName }

// Password returns the group's join password, empty if none is set.
func (c *Chat) Password() []byte { return c.SharedState.Current.Fields.Password }

// MaxPeers returns the group's hard size cap.
func (c *Chat) MaxPeers() uint32 { return c.SharedState.Current.Fields.MaxPeers }

// PrivacyState returns the group's visibility setting.
func (c *Chat) PrivacyState() Privacy { return Privacy(c.SharedState.Current.Fields.Privacy) }

// TopicText returns the current topic bytes.
func (c *Chat) TopicText() []byte { return c.Topic.Fields.Topic }

// SelfNick returns our own display nick.
func (c *Chat) SelfNick() []byte { return c.Peers.Peers()[0].Nick }

// SelfPeerID returns our opaque peer id within this chat.
func (c *Chat) SelfPeerID() uint32 { return c.Peers.Peers()[0].PeerID }

// SelfRole returns our current validated role.
func (c *Chat) SelfRole() membership.Role { return c.Peers.Peers()[0].Role }

// PeerNick returns a peer's display nick by peer id.
func (c *Chat) PeerNick(peerID uint32) ([]byte, bool) {
	if idx := c.peerIndexByID(peerID); idx >= 0 {
		return c.Peers.Peers()[idx].Nick, true
	}
	return nil, false
}

// PeerPublicKey returns a peer's encryption public key by peer id.
func (c *Chat) PeerPublicKey(peerID uint32) ([32]byte, bool) {
	if idx := c.peerIndexByID(peerID); idx >= 0 {
		return c.Peers.Peers()[idx].EncryptPublicKey, true
	}
	return [32]byte{}, false
}

// PeerStatus returns a peer's presence status by peer id.
func (c *Chat) PeerStatus(peerID uint32) (membership.Status, bool) {
	if idx := c.peerIndexByID(peerID); idx >= 0 {
		return c.Peers.Peers()[idx].Status, true
	}
	return membership.StatusInvalid, false
}

// PeerRole returns a peer's validated role by peer id.
func (c *Chat) PeerRole(peerID uint32) (membership.Role, bool) {
	if idx := c.peerIndexByID(peerID); idx >= 0 {
		return c.Peers.Peers()[idx].Role, true
	}
	return membership.RoleInvalid, false
}

// SetIgnore toggles local-only read suppression for a peer. No
// broadcast or sync traffic results.
func (c *Chat) SetIgnore(peerID uint32, ignore bool) error {
	idx := c.peerIndexByID(peerID)
	if idx <= 0 {
		return logger.New(logger.CodePeerUnknown, "groupchat: ignore target unknown")
	}
	return c.Peers.SetIgnore(idx, ignore)
}

// SetSelfNick changes our nick and broadcasts the change: 0 success,
// -1 too long, -2 empty, -3 taken by another peer, -5 send failed.
func (c *Chat) SetSelfNick(nick []byte) int {
	if len(nick) == 0 {
		return -2
	}
	if len(nick) > 128 {
		return -1
	}
	for _, p := range c.Peers.Peers()[1:] {
		if string(p.Nick) == string(nick) {
			return -3
		}
	}
	c.Peers.Peers()[0].Nick = append([]byte(nil), nick...)
	c.broadcastLossless(codec.KindBroadcast, c.broadcastBody(codec.BroadcastNick, nick))
	return 0
}

// SetSelfStatus changes our presence status and broadcasts it: 0
// success, -3 bad status value.
func (c *Chat) SetSelfStatus(status membership.Status) int {
	if status >= membership.StatusInvalid {
		return -3
	}
	c.Peers.Peers()[0].Status = status
	c.broadcastLossless(codec.KindBroadcast, c.broadcastBody(codec.BroadcastStatus, []byte{byte(status)}))
	return 0
}

// SetRole moves a peer to the requested role, routed through the
// matching moderation action. The founder role is not assignable.
func (c *Chat) SetRole(peerID uint32, role membership.Role) error {
	current, ok := c.PeerRole(peerID)
	if !ok {
		return logger.New(logger.CodePeerUnknown, "groupchat: set role target unknown")
	}
	if role == current {
		return nil
	}
	switch role {
	case membership.RoleModerator:
		return c.AddModerator(peerID)
	case membership.RoleObserver:
		return c.AddObserver(peerID)
	case membership.RoleUser:
		switch current {
		case membership.RoleModerator:
			return c.RemoveModerator(peerID)
		case membership.RoleObserver:
			return c.RemoveObserver(peerID)
		default:
			return nil
		}
	default:
		return logger.New(logger.CodeRoleInsufficient, "groupchat: role not assignable")
	}
}

// Rejoin forces a disconnected or stalled chat back into the join
// cycle on its next tick.
func (s *Session) Rejoin(chatIDHash uint32) {
	c, ok := s.chats[chatIDHash]
	if !ok {
		return
	}
	c.State = StateDisconnected
	c.LastJoinAttempt = time.Time{} // due immediately on the next tick
}

// Kill marks every chat Closing with partMessage; the next Tick
// broadcasts the parts and prunes them all.
func (s *Session) Kill(partMessage []byte) {
	for hash := range s.chats {
		s.Exit(hash, partMessage)
	}
}
