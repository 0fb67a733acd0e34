package groupchat

import (
	"time"

	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/handshake"
	"github.com/ingvar1995/toxcore/internal/metrics"
)

// readBufSize bounds a single inbound UDP datagram per Tick's drain loop.
const readBufSize = 65536

// AddPeer feeds a peer discovered through the external overlay into
// the handshake pipeline. The first AddPeer call in Connecting sends
// an INVITE_REQUEST-typed REQUEST; later calls (additional bootstrap
// candidates) fall back to PEER_INFO_EXCHANGE since the join dance is
// already underway.
func (c *Chat) AddPeer(encPub [32]byte, relays []codec.RelayNode) error {
	reqType := handshake.RequestPeerInfoExchange
	if c.State == StateConnecting && len(c.Peers.Peers()) == 1 {
		reqType = handshake.RequestInviteRequest
	}
	return c.connectToPeer(encPub, relays, reqType)
}

// hasConfirmedPeer reports whether any non-self connection is marked
// Confirmed, which happens after the handshake once the peer-info
// exchange with that peer has succeeded.
func (c *Chat) hasConfirmedPeer() bool {
	for _, p := range c.Peers.Peers()[1:] {
		if conn, ok := c.Conns[p.PeerID]; ok && conn.Confirmed {
			return true
		}
	}
	return false
}

// pumpTransport drains inbound datagrams, handshake/sync side effects,
// and flushes the outbound queue.
func (c *Chat) pumpTransport() {
	var buf [readBufSize]byte
	c.Transport.Tick(buf[:])
}

// Tick advances this chat's state machine by one step. It
// reports whether the chat is finished and should be removed from its
// owning Session.
func (c *Chat) Tick(now time.Time) (done bool) {
	switch c.State {
	case StateConnecting:
		c.tickConnecting(now)
	case StateDisconnected:
		c.tickDisconnected(now)
	case StateConnected:
		c.tickConnected(now)
	case StateFailed:
		// terminal; the embedder decides whether to retry via a fresh Join.
	case StateClosing:
		c.tickClosing(now)
		return true
	}
	return false
}

func (c *Chat) tickConnecting(now time.Time) {
	if now.Sub(c.LastJoinAttempt) > c.cfg.ConnectingTimeout {
		c.setState(StateDisconnected)
		return
	}
	c.pumpTransport()
	if c.hasConfirmedPeer() {
		c.setState(StateConnected)
	}
}

func (c *Chat) tickDisconnected(now time.Time) {
	c.pumpTransport()
	if now.Sub(c.LastJoinAttempt) < c.cfg.RejoinInterval {
		return
	}
	c.LastJoinAttempt = now
	c.setState(StateConnecting)
	for _, p := range c.Peers.Peers()[1:] {
		conn, ok := c.Conns[p.PeerID]
		if !ok || conn.Handshaked {
			continue
		}
		addr := AddrOf(conn)
		err := c.withHandshakeAddr(addr, func() error {
			return c.Handshake.InitiateRequest(conn, p.EncryptPublicKey, handshake.RequestPeerInfoExchange, c.JoinType, c.SharedState.Current.Fields.Version, codec.RelayNode{})
		})
		if err != nil {
			c.log.Warn("groupchat: rejoin handshake failed")
		}
	}
}

func (c *Chat) tickConnected(now time.Time) {
	c.pumpTransport()
	c.RateLimiter.Tick(now)

	sendPing := now.Sub(c.LastPingTime) >= c.cfg.PingInterval
	if sendPing {
		c.LastPingTime = now
	}
	ping := codec.PingFields{
		NumConfirmedPeers:     uint32(len(c.Peers.Peers())),
		SharedStateVersion:    c.SharedState.Current.Fields.Version,
		SanctionsCredsVersion: c.Sanctions.Creds.Version,
		TopicVersion:          c.Topic.Fields.Version,
	}.Pack()

	for i := len(c.Peers.Peers()) - 1; i >= 1; i-- {
		p := c.Peers.Peers()[i]
		conn, ok := c.Conns[p.PeerID]
		if !ok {
			continue
		}
		if !conn.Handshaked {
			if conn.HandshakeExpired(now) {
				c.Peers.Delete(i)
				delete(c.Conns, p.PeerID)
				metrics.PeerChurn.WithLabelValues("handshake_timeout").Inc()
			}
			continue
		}
		if !conn.Confirmed {
			if now.Sub(conn.AddedAt) > c.cfg.UnconfirmedPeerTimeout {
				c.Peers.Delete(i)
				delete(c.Conns, p.PeerID)
				metrics.PeerChurn.WithLabelValues("unconfirmed_timeout").Inc()
			}
			continue
		}

		addr := AddrOf(conn)
		if now.Sub(conn.LastReceivedPing) > c.cfg.ConfirmedPeerTimeout {
			c.Peers.Delete(i)
			delete(c.Conns, p.PeerID)
			metrics.PeerChurn.WithLabelValues("confirmed_timeout").Inc()
			continue
		}

		c.Transport.RetransmitPeer(now, conn, addr)

		if sendPing {
			_ = c.sendLossy(conn, addr, codec.KindPing, ping)
		}
		if now.Sub(conn.LastSharedRelays) > c.cfg.RelayShareInterval && len(conn.Relays) > 0 {
			_ = c.sendLossy(conn, addr, codec.KindTCPRelays, conn.Relays[len(conn.Relays)-1].Pack())
			conn.LastSharedRelays = now
		}
		if now.Sub(conn.LastSharedIPPort) > c.cfg.IPPortShareInterval && conn.RemoteAddr != nil {
			node := codec.RelayNode{IP: conn.RemoteAddr.IP, Port: uint16(conn.RemoteAddr.Port)}
			_ = c.sendLossy(conn, addr, codec.KindIPPort, node.Pack())
			conn.LastSharedIPPort = now
		}
	}

	if len(c.Peers.Peers()) == 1 {
		c.setState(StateDisconnected)
	}
}

func (c *Chat) tickClosing(now time.Time) {
	if len(c.Peers.Peers()) > 1 {
		body := c.broadcastBody(codec.BroadcastPeerExit, c.PartMessage)
		c.broadcastLossless(codec.KindBroadcast, body)
		c.pumpTransport()
	}
}

// setState records a connection-state transition and fires the
// matching callback.
func (c *Chat) setState(s ConnState) {
	if c.State == s {
		return
	}
	c.State = s
	c.LastStateChange = c.clock.Now()
	c.callbacks.fireConnectionChange(c, s)
}

// Tick advances every live chat by one step, pruning any that finish
// Closing and sweeping the shared AnnounceStore.
func (s *Session) Tick(now time.Time) {
	for hash, chat := range s.chats {
		if chat.Tick(now) {
			delete(s.chats, hash)
		}
	}
	s.announce.Prune()
}
