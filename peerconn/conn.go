package peerconn

import (
	"net"
	"time"

	"github.com/ingvar1995/toxcore/codec"
	gcrypto "github.com/ingvar1995/toxcore/crypto"
)

// Conn is the per-remote-peer connection state.
// Created the moment a peer is added to a chat's peer table, before
// any packets have been exchanged.
type Conn struct {
	RemoteEncryptPublicKey [32]byte
	RemoteSignPublicKey    [32]byte
	RemoteAddr             *net.UDPAddr // nil until learned; TCP-relay-only until then

	SelfSessionKeyPair gcrypto.KeyPair // fresh per-session ephemeral keypair
	SharedKey          [32]byte        // DeriveSharedKey output, set once handshaked

	Handshaked         bool
	Confirmed          bool
	PendingSyncRequest bool
	PendingStateSync   bool

	SendWindow *SendWindow
	RecvWindow *RecvWindow

	Relays []codec.RelayNode // ring of shared TCP-relay records

	HandshakeDeadline time.Time

	LastReceivedPing  time.Time
	LastDirectReceipt time.Time
	LastSharedRelays  time.Time
	LastSharedIPPort  time.Time
	AddedAt           time.Time

	RemoteSharedStateVersion uint32

	relayCap int
}

// New constructs a fresh Conn for a peer that has just been added to
// the peer table, before any handshake has taken place.
func New(now time.Time, remoteEnc, remoteSign [32]byte, relayCap int, retryAfter time.Duration, handshakeTimeout time.Duration) *Conn {
	return &Conn{
		RemoteEncryptPublicKey: remoteEnc,
		RemoteSignPublicKey:    remoteSign,
		SendWindow:             NewSendWindow(retryAfter),
		RecvWindow:             NewRecvWindow(),
		HandshakeDeadline:      now.Add(handshakeTimeout),
		AddedAt:                now,
		relayCap:               relayCap,
	}
}

// CompleteHandshake records the fresh session keypair and derived
// shared key once a side has derived its session secret, and seeds
// both window cursors: the handshake itself counts as an implicit
// lossless message in each direction, so the first real
// lossless packet on the wire carries id 2. It does not set
// Handshaked: that flag only flips once step 3 (HS_RESPONSE_ACK) has
// genuinely completed on this side, which the handshake driver
// decides and sets separately.
func (c *Conn) CompleteHandshake(now time.Time, selfSession gcrypto.KeyPair, sharedKey [32]byte) {
	c.SelfSessionKeyPair = selfSession
	c.SharedKey = sharedKey
	c.LastReceivedPing = now
	c.RecvWindow.nextID = 1
	if c.SendWindow.nextMessageID == 1 {
		c.SendWindow.nextMessageID = 2
	}
}

// AddRelay appends a TCP-relay record the peer reported, evicting the
// oldest entry once the ring is at capacity.
func (c *Conn) AddRelay(now time.Time, node codec.RelayNode) {
	c.Relays = append(c.Relays, node)
	if len(c.Relays) > c.relayCap {
		c.Relays = c.Relays[len(c.Relays)-c.relayCap:]
	}
	c.LastSharedRelays = now
}

// HandshakeExpired reports whether the pending handshake deadline has
// passed without completion.
func (c *Conn) HandshakeExpired(now time.Time) bool {
	return !c.Handshaked && now.After(c.HandshakeDeadline)
}
