// Package groupchat is the top-level facade of the group-chat core:
// a Session manages a set of Chats, each a single-threaded
// cooperative state machine advanced by repeated calls to Tick. All
// state mutation happens during a tick; nothing here blocks.
package groupchat

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/ingvar1995/toxcore/announce"
	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/config"
	gcrypto "github.com/ingvar1995/toxcore/crypto"
	"github.com/ingvar1995/toxcore/handshake"
	"github.com/ingvar1995/toxcore/internal/clock"
	"github.com/ingvar1995/toxcore/internal/logger"
	"github.com/ingvar1995/toxcore/membership"
	"github.com/ingvar1995/toxcore/peerconn"
	"github.com/ingvar1995/toxcore/relay"
	"github.com/ingvar1995/toxcore/state"
	"github.com/ingvar1995/toxcore/transport"
)

// ConnState is a chat's connection state machine position.
type ConnState int

const (
	StateNone ConnState = iota
	StateDisconnected
	StateConnecting
	StateConnected
	StateFailed
	StateClosing
)

func (s ConnState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// SavedInvite remembers a friend id we sent GROUP_INVITE to, so a
// GROUP_INVITE_ACCEPTED reply can be matched against it.
type SavedInvite struct {
	FriendID  [32]byte
	ChatID    [32]byte
	InvitedAt time.Time
}

// Chat is one joined or founded group.
type Chat struct {
	ChatID       [32]byte // founder's signing public key
	ChatIDHash   uint32
	ChatSecret   gcrypto.KeyPair // non-nil only if we are the founder
	SelfIdentity *gcrypto.Identity

	State    ConnState
	JoinType handshake.JoinType

	Peers *membership.Table
	Conns map[uint32]*peerconn.Conn // keyed by Peer.PeerID

	SharedState SharedStateHolder
	Mods        *state.ModList
	Sanctions   state.Sanctions
	Topic       state.Topic

	RateLimiter *membership.RateLimiter

	SavedInvites []SavedInvite
	JoinPassword []byte // carried into the INVITE_REQUEST we send once handshaked
	PartMessage  []byte // broadcast once, on the tick that processes Exit (<=128 bytes)

	LastPingTime    time.Time
	LastJoinAttempt time.Time
	LastStateChange time.Time

	Transport *transport.Transport
	Dispatch  *transport.Dispatcher
	Handshake *handshake.Driver

	announce  *announce.Store
	cfg       wireConfig
	callbacks *Callbacks

	relayConn relay.Conn

	pendingHandshakeAddr net.Addr
	pendingRelayPK       [32]byte

	clock clock.Clock
	log   logger.Logger
}

// wireConfig is the subset of protocol tuning knobs the groupchat
// package consults per tick, flattened out of config.Config at
// chat-construction time so the hot path reads plain fields.
type wireConfig struct {
	LosslessRetryInterval  time.Duration
	HandshakeTimeout       time.Duration
	RelayRingCap           int
	ConfirmedPeerTimeout   time.Duration
	UnconfirmedPeerTimeout time.Duration
	ConnectingTimeout      time.Duration
	RejoinInterval         time.Duration
	PingInterval           time.Duration
	RelayShareInterval     time.Duration
	IPPortShareInterval    time.Duration
}

func wireConfigFrom(cfg *config.Config) wireConfig {
	return wireConfig{
		LosslessRetryInterval:  cfg.Network.LosslessRetryInterval,
		HandshakeTimeout:       cfg.Network.HandshakeTimeout,
		RelayRingCap:           cfg.Membership.RelayRing,
		ConfirmedPeerTimeout:   cfg.Network.ConfirmedPeerTimeout,
		UnconfirmedPeerTimeout: cfg.Network.UnconfirmedPeerTimeout,
		ConnectingTimeout:      cfg.Network.ConnectingTimeout,
		RejoinInterval:         cfg.Network.RejoinInterval,
		PingInterval:           cfg.Network.PingInterval,
		RelayShareInterval:     cfg.Network.RelayShareInterval,
		IPPortShareInterval:    cfg.Network.IPPortShareInterval,
	}
}

func defaultWireConfig() wireConfig {
	return wireConfigFrom(config.Default())
}

// SharedStateHolder holds the chat's cached SharedState.
type SharedStateHolder struct {
	Current state.SharedState
}

// NewChat constructs a Chat in state None with an empty peer table
// seeded by self at index 0, ready for Create or Join to populate.
func NewChat(now time.Time, chatID [32]byte, self *gcrypto.Identity, joinType handshake.JoinType, log logger.Logger) *Chat {
	if log == nil {
		log = logger.Get()
	}
	selfPeer := &membership.Peer{
		EncryptPublicKey: self.EncryptPublicBytes(),
		SignPublicKey:    self.SignPublicBytes(),
	}
	return &Chat{
		ChatID:       chatID,
		ChatIDHash:   codec.JenkinsHash(chatID[:]),
		SelfIdentity: self,
		State:        StateNone,
		JoinType:     joinType,
		Peers:        membership.NewTable(selfPeer),
		Conns:        make(map[uint32]*peerconn.Conn),
		Mods:         state.NewModList(),
		RateLimiter:  membership.NewRateLimiter(),
		cfg:          defaultWireConfig(),
		clock:        clock.Real{},
		log:          log,
	}
}

// Bootstrap wires a chat's network stack onto sock: the lossless/lossy
// Transport, the per-InnerKind Dispatcher, the handshake Driver, and
// the shared AnnounceStore for rendezvous lookups. Create/Join call
// this once the chat is constructed; it is split out so tests can
// substitute an in-memory Socket.
func (c *Chat) Bootstrap(sock transport.Socket, store *announce.Store, clk clock.Clock, callbacks *Callbacks) {
	if clk != nil {
		c.clock = clk
	}
	c.announce = store
	c.callbacks = callbacks
	c.Dispatch = transport.NewDispatcher(c.log)
	c.Transport = transport.New(sock, c.ChatIDHash, c.SelfIdentity.EncryptPublicBytes(), c.connLookup, c.Dispatch, c.log, c.clock)
	c.Handshake = handshake.New(c.ChatIDHash, c.SelfIdentity, chatEvents{c}, c.sendHandshakeDatagram,
		func() uint32 { return c.SharedState.Current.Fields.Version }, c.log, c.clock, c.cfg.HandshakeTimeout)
	c.Transport.SetHandshakeHandler(c.handleHandshakeFrame)
	c.registerHandlers()
}

// sendHandshakeDatagram is handshake.Sender for this chat. The
// handshake.Driver's send signature carries no address (a HANDSHAKE
// packet's frame header only names the sender, never the recipient),
// so every call into the driver that may trigger a send is wrapped in
// withHandshakeAddr, which stashes the target for this closure to
// pick up. With no direct address, the packet goes out-of-band
// through the chat's TCP relay instead.
func (c *Chat) sendHandshakeDatagram(datagram []byte) error {
	if c.pendingHandshakeAddr != nil {
		c.Transport.Enqueue(datagram, c.pendingHandshakeAddr)
		return nil
	}
	if c.relayConn != nil && c.pendingRelayPK != ([32]byte{}) {
		return c.relayConn.SendTo(context.Background(), c.pendingRelayPK, datagram)
	}
	return logger.New(logger.CodeTransportFailure, "groupchat: handshake send with no pending address or relay")
}

// withHandshakeAddr runs fn with addr available to sendHandshakeDatagram.
func (c *Chat) withHandshakeAddr(addr net.Addr, fn func() error) error {
	c.pendingHandshakeAddr = addr
	defer func() { c.pendingHandshakeAddr = nil }()
	return fn()
}

// withRelayPK runs fn with pk as the out-of-band relay target for
// sendHandshakeDatagram, for peers with no known direct address.
func (c *Chat) withRelayPK(pk [32]byte, fn func() error) error {
	c.pendingRelayPK = pk
	defer func() { c.pendingRelayPK = [32]byte{} }()
	return fn()
}

// SetRelay attaches a TCP-relay connection for out-of-band handshakes
// to peers known only by a relay public key.
// The embedder owns the relay's lifetime and feeds datagrams it
// receives back in through HandleRelayDatagram.
func (c *Chat) SetRelay(conn relay.Conn) { c.relayConn = conn }

// HandleRelayDatagram injects a datagram that arrived through the
// chat's TCP relay into the normal inbound pipeline. The reply path
// for a relayed HANDSHAKE is resolved from the packed relay node the
// handshake itself carries.
func (c *Chat) HandleRelayDatagram(datagram []byte) {
	c.Transport.InjectDatagram(datagram, nil)
}

// connLookup implements transport.PeerLookup against this chat's peer
// table and connection map.
func (c *Chat) connLookup(senderEncPub [32]byte) (*peerconn.Conn, net.Addr, bool) {
	conn, ok := c.ConnByEncryptKey(senderEncPub)
	if !ok {
		return nil, nil, false
	}
	return conn, AddrOf(conn), true
}

// ConnByEncryptKey resolves a live PeerConnection by the remote's
// long-term encryption public key.
func (c *Chat) ConnByEncryptKey(encPub [32]byte) (*peerconn.Conn, bool) {
	idx := c.Peers.ByEncryptKey(encPub)
	if idx <= 0 {
		return nil, false
	}
	conn, ok := c.Conns[c.Peers.Peers()[idx].PeerID]
	return conn, ok
}

// newTraceID mints an internal-only identifier for join attempts and
// sync rounds, never placed on the wire.
func newTraceID() string {
	return uuid.NewString()
}

// AddrOf resolves the net.Addr for a live connection, for transport wiring.
func AddrOf(conn *peerconn.Conn) net.Addr {
	if conn == nil || conn.RemoteAddr == nil {
		return nil
	}
	return conn.RemoteAddr
}
