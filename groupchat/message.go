package groupchat

import (
	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/membership"
)

const (
	maxMessageLength = 1372
	maxPartMessage   = 128
)

// SendMessage broadcasts a plain or action message to the group,
// following the negative error-code convention documented for
// mutators: 0 success, -1 too long, -2 empty, -4 insufficient role,
// -5 send failed.
func (c *Chat) SendMessage(action bool, text []byte) int {
	if len(text) == 0 {
		return -2
	}
	if len(text) > maxMessageLength {
		return -1
	}
	if c.isObserver() {
		return -4
	}
	kind := codec.BroadcastPlainMessage
	if action {
		kind = codec.BroadcastActionMessage
	}
	c.broadcastLossless(codec.KindBroadcast, c.broadcastBody(kind, text))
	return 0
}

// SendPrivateMessage unicasts text to a single confirmed peer.
func (c *Chat) SendPrivateMessage(peerID uint32, text []byte) int {
	if len(text) == 0 {
		return -2
	}
	if len(text) > maxMessageLength {
		return -1
	}
	if c.isObserver() {
		return -4
	}
	body := c.broadcastBody(codec.BroadcastPrivateMessage, text)
	if !c.unicastLossless(peerID, codec.KindBroadcast, body) {
		return -5
	}
	return 0
}

// SendCustomPacket delivers an application-defined payload to a single
// peer, lossless or lossy per the caller's choice.
func (c *Chat) SendCustomPacket(peerID uint32, lossless bool, data []byte) int {
	if len(data) == 0 {
		return -2
	}
	conn, ok := c.Conns[peerID]
	if !ok || !conn.Confirmed {
		return -5
	}
	addr := AddrOf(conn)
	var err error
	if lossless {
		err = c.sendLossless(conn, addr, codec.KindCustomPacket, data)
	} else {
		err = c.sendLossy(conn, addr, codec.KindCustomPacket, data)
	}
	if err != nil {
		return -5
	}
	return 0
}

// isObserver reports whether self currently carries the observer
// role; observers may read but not broadcast.
func (c *Chat) isObserver() bool {
	return c.Peers.Peers()[0].Role == membership.RoleObserver
}
