package groupchat

import (
	"net"

	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/peerconn"
)

// sendLossless wraps payload as a LOSSLESS inner packet of kind,
// stores it in conn's send window under the next message id, and
// queues it for delivery to addr on the next outbound flush.
func (c *Chat) sendLossless(conn *peerconn.Conn, addr net.Addr, kind codec.InnerKind, payload []byte) error {
	id := conn.SendWindow.NextID()
	datagram, err := codec.WrapLossless(c.ChatIDHash, c.SelfIdentity.EncryptPublicBytes(), conn.SharedKey, kind, id, payload)
	if err != nil {
		return err
	}
	conn.SendWindow.Store(c.clock.Now(), datagram)
	c.Transport.Enqueue(datagram, addr)
	return nil
}

// sendLossy wraps payload as a LOSSY inner packet of kind and queues
// it for immediate, unacked delivery to addr.
func (c *Chat) sendLossy(conn *peerconn.Conn, addr net.Addr, kind codec.InnerKind, payload []byte) error {
	datagram, err := codec.WrapLossy(c.ChatIDHash, c.SelfIdentity.EncryptPublicBytes(), conn.SharedKey, kind, payload)
	if err != nil {
		return err
	}
	c.Transport.Enqueue(datagram, addr)
	return nil
}

// broadcastLossless sends payload as kind, lossless, to every
// confirmed peer.
func (c *Chat) broadcastLossless(kind codec.InnerKind, payload []byte) {
	for _, p := range c.Peers.Peers()[1:] {
		conn, ok := c.Conns[p.PeerID]
		if !ok || !conn.Confirmed {
			continue
		}
		if err := c.sendLossless(conn, AddrOf(conn), kind, payload); err != nil {
			c.log.Warn("groupchat: broadcast send failed")
		}
	}
}

// unicastLossless sends payload as kind, lossless, to a single
// confirmed peer identified by its PeerID.
func (c *Chat) unicastLossless(peerID uint32, kind codec.InnerKind, payload []byte) bool {
	conn, ok := c.Conns[peerID]
	if !ok || !conn.Confirmed {
		return false
	}
	return c.sendLossless(conn, AddrOf(conn), kind, payload) == nil
}
