package groupchat

import (
	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/membership"
)

// Callbacks is the immutable set of application-visible notifications
// a Session fires synchronously during Tick. A nil field is simply
// never called. Callbacks must not call back into a mutating
// Chat/Session API within the same tick.
type Callbacks struct {
	OnSelfJoin         func(chat *Chat)
	OnPeerJoin         func(chat *Chat, peerID uint32)
	OnPeerExit         func(chat *Chat, peerID uint32, partMessage []byte)
	OnPeerKicked       func(chat *Chat, peerID, sourcePeerID uint32)
	OnPeerBanned       func(chat *Chat, peerID, sourcePeerID uint32)
	OnNickChange       func(chat *Chat, peerID uint32, nick []byte)
	OnStatusChange     func(chat *Chat, peerID uint32, status membership.Status)
	OnModeratorChange  func(chat *Chat, peerID uint32, isMod bool)
	OnObserverChange   func(chat *Chat, peerID uint32, isObserver bool)
	OnTopicChange      func(chat *Chat, setterPeerID uint32, topic []byte)
	OnPasswordChange   func(chat *Chat, hasPassword bool)
	OnPrivacyChange    func(chat *Chat, privacy Privacy)
	OnMaxPeersChange   func(chat *Chat, maxPeers uint32)
	OnMessage          func(chat *Chat, peerID uint32, action bool, text []byte)
	OnPrivateMessage   func(chat *Chat, peerID uint32, text []byte)
	OnCustomPacket     func(chat *Chat, peerID uint32, lossless bool, data []byte)
	OnConnectionChange func(chat *Chat, state ConnState)
	OnRejected         func(chat *Chat, reason codec.InviteRejectReason)
}

func (c *Callbacks) fireSelfJoin(chat *Chat) {
	if c != nil && c.OnSelfJoin != nil {
		c.OnSelfJoin(chat)
	}
}

func (c *Callbacks) firePeerJoin(chat *Chat, peerID uint32) {
	if c != nil && c.OnPeerJoin != nil {
		c.OnPeerJoin(chat, peerID)
	}
}

func (c *Callbacks) firePeerExit(chat *Chat, peerID uint32, partMessage []byte) {
	if c != nil && c.OnPeerExit != nil {
		c.OnPeerExit(chat, peerID, partMessage)
	}
}

func (c *Callbacks) firePeerKicked(chat *Chat, peerID, sourcePeerID uint32) {
	if c != nil && c.OnPeerKicked != nil {
		c.OnPeerKicked(chat, peerID, sourcePeerID)
	}
}

func (c *Callbacks) firePeerBanned(chat *Chat, peerID, sourcePeerID uint32) {
	if c != nil && c.OnPeerBanned != nil {
		c.OnPeerBanned(chat, peerID, sourcePeerID)
	}
}

func (c *Callbacks) fireNickChange(chat *Chat, peerID uint32, nick []byte) {
	if c != nil && c.OnNickChange != nil {
		c.OnNickChange(chat, peerID, nick)
	}
}

func (c *Callbacks) fireStatusChange(chat *Chat, peerID uint32, status membership.Status) {
	if c != nil && c.OnStatusChange != nil {
		c.OnStatusChange(chat, peerID, status)
	}
}

func (c *Callbacks) fireModeratorChange(chat *Chat, peerID uint32, isMod bool) {
	if c != nil && c.OnModeratorChange != nil {
		c.OnModeratorChange(chat, peerID, isMod)
	}
}

func (c *Callbacks) fireObserverChange(chat *Chat, peerID uint32, isObserver bool) {
	if c != nil && c.OnObserverChange != nil {
		c.OnObserverChange(chat, peerID, isObserver)
	}
}

func (c *Callbacks) fireTopicChange(chat *Chat, setterPeerID uint32, topic []byte) {
	if c != nil && c.OnTopicChange != nil {
		c.OnTopicChange(chat, setterPeerID, topic)
	}
}

func (c *Callbacks) firePasswordChange(chat *Chat, hasPassword bool) {
	if c != nil && c.OnPasswordChange != nil {
		c.OnPasswordChange(chat, hasPassword)
	}
}

func (c *Callbacks) firePrivacyChange(chat *Chat, privacy Privacy) {
	if c != nil && c.OnPrivacyChange != nil {
		c.OnPrivacyChange(chat, privacy)
	}
}

func (c *Callbacks) fireMaxPeersChange(chat *Chat, maxPeers uint32) {
	if c != nil && c.OnMaxPeersChange != nil {
		c.OnMaxPeersChange(chat, maxPeers)
	}
}

func (c *Callbacks) fireMessage(chat *Chat, peerID uint32, action bool, text []byte) {
	if c != nil && c.OnMessage != nil {
		c.OnMessage(chat, peerID, action, text)
	}
}

func (c *Callbacks) firePrivateMessage(chat *Chat, peerID uint32, text []byte) {
	if c != nil && c.OnPrivateMessage != nil {
		c.OnPrivateMessage(chat, peerID, text)
	}
}

func (c *Callbacks) fireCustomPacket(chat *Chat, peerID uint32, lossless bool, data []byte) {
	if c != nil && c.OnCustomPacket != nil {
		c.OnCustomPacket(chat, peerID, lossless, data)
	}
}

func (c *Callbacks) fireConnectionChange(chat *Chat, state ConnState) {
	if c != nil && c.OnConnectionChange != nil {
		c.OnConnectionChange(chat, state)
	}
}

func (c *Callbacks) fireRejected(chat *Chat, reason codec.InviteRejectReason) {
	if c != nil && c.OnRejected != nil {
		c.OnRejected(chat, reason)
	}
}
