package handshake

import (
	"context"
	"time"

	"github.com/ingvar1995/toxcore/codec"
	gcrypto "github.com/ingvar1995/toxcore/crypto"
	"github.com/ingvar1995/toxcore/crypto/keys"
	"github.com/ingvar1995/toxcore/internal/clock"
	"github.com/ingvar1995/toxcore/internal/logger"
	"github.com/ingvar1995/toxcore/internal/metrics"
	"github.com/ingvar1995/toxcore/peerconn"
)

// Sender is the minimal outbound surface the handshake driver needs:
// wrap-and-send a single HANDSHAKE packet to a peer's address.
type Sender func(datagram []byte) error

// Driver runs one chat's handshake state machine: initiating new
// REQUESTs, answering inbound REQUESTs/RESPONSEs, and completing the
// HS_RESPONSE_ACK step.
type Driver struct {
	chatIDHash   uint32
	selfIdentity *gcrypto.Identity
	events       Events
	send         Sender
	stateVersion func() uint32
	log          logger.Logger
	clock        clock.Clock

	handshakeTimeout time.Duration
}

// New constructs a handshake Driver for one chat. stateVersion reports
// the chat's current shared-state version, carried in every outbound
// handshake step so the remote side can run the tie-break rule;
// nil means version 0.
func New(chatIDHash uint32, selfIdentity *gcrypto.Identity, events Events, send Sender, stateVersion func() uint32, log logger.Logger, clk clock.Clock, handshakeTimeout time.Duration) *Driver {
	if events == nil {
		events = NoopEvents{}
	}
	if stateVersion == nil {
		stateVersion = func() uint32 { return 0 }
	}
	if log == nil {
		log = logger.Get()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Driver{chatIDHash: chatIDHash, selfIdentity: selfIdentity, events: events, send: send, stateVersion: stateVersion, log: log, clock: clk, handshakeTimeout: handshakeTimeout}
}

// InitiateRequest sends step 1 (REQUEST) to a peer whose long-term
// encryption public key is peerEncPub, generating a fresh session
// keypair for conn.
func (d *Driver) InitiateRequest(conn *peerconn.Conn, peerEncPub [32]byte, reqType RequestType, join JoinType, sharedStateVersion uint32, relay codec.RelayNode) error {
	sessionKP, err := keys.GenerateX25519KeyPair()
	if err != nil {
		return err
	}
	conn.SelfSessionKeyPair = sessionKP

	selfEncPub := d.selfIdentity.EncryptPublicBytes()
	msg := Message{
		Type:                   PhaseRequest,
		SenderPublicKeyHash:    codec.JenkinsHash(selfEncPub[:]),
		SessionPublicKey:       rawPub32(sessionKP),
		SelfSigningPublicKey:   d.selfIdentity.SignPublicBytes(),
		RequestType:            reqType,
		JoinType:               join,
		SelfSharedStateVersion: sharedStateVersion,
		Relay:                  relay,
	}

	if err := d.sendHandshake(peerEncPub, msg); err != nil {
		return err
	}
	joinLabel := "public"
	if join == JoinPrivate {
		joinLabel = "private"
	}
	metrics.HandshakesInitiated.WithLabelValues(joinLabel).Inc()
	return nil
}

// HandleInbound processes a decrypted HANDSHAKE payload from a peer,
// driving the conn's state forward and emitting the matching Events
// callback.
func (d *Driver) HandleInbound(ctx context.Context, now time.Time, conn *peerconn.Conn, peerEncPub [32]byte, payload []byte) error {
	msg, err := Unpack(payload)
	if err != nil {
		metrics.HandshakesFailed.WithLabelValues("malformed").Inc()
		return err
	}

	switch msg.Type {
	case PhaseRequest:
		return d.handleRequest(ctx, now, conn, peerEncPub, msg)
	case PhaseResponse:
		return d.handleResponse(ctx, now, conn, peerEncPub, msg)
	default:
		return logger.New(logger.CodeMalformed, "handshake: unexpected phase in HANDSHAKE packet")
	}
}

func (d *Driver) handleRequest(ctx context.Context, now time.Time, conn *peerconn.Conn, peerEncPub [32]byte, msg Message) error {
	sessionKP, err := keys.GenerateX25519KeyPair()
	if err != nil {
		return err
	}
	conn.SelfSessionKeyPair = sessionKP
	conn.RemoteSignPublicKey = msg.SelfSigningPublicKey
	conn.RemoteSharedStateVersion = msg.SelfSharedStateVersion

	selfEncPub := d.selfIdentity.EncryptPublicBytes()
	resp := Message{
		Type:                   PhaseResponse,
		SenderPublicKeyHash:    codec.JenkinsHash(selfEncPub[:]),
		SessionPublicKey:       rawPub32(sessionKP),
		SelfSigningPublicKey:   d.selfIdentity.SignPublicBytes(),
		RequestType:            msg.RequestType,
		JoinType:               msg.JoinType,
		SelfSharedStateVersion: d.stateVersion(),
		Relay:                  msg.Relay,
	}
	if err := d.sendHandshake(peerEncPub, resp); err != nil {
		return err
	}

	if err := d.completeSharedKey(conn, sessionKP, msg.SessionPublicKey); err != nil {
		return err
	}
	conn.LastReceivedPing = now

	return d.events.OnRequest(ctx, peerEncPub, msg)
}

func (d *Driver) handleResponse(ctx context.Context, now time.Time, conn *peerconn.Conn, peerEncPub [32]byte, msg Message) error {
	conn.RemoteSignPublicKey = msg.SelfSigningPublicKey
	conn.RemoteSharedStateVersion = msg.SelfSharedStateVersion

	if conn.SelfSessionKeyPair == nil {
		return logger.New(logger.CodeMalformed, "handshake: RESPONSE received without a pending REQUEST")
	}
	if err := d.completeSharedKey(conn, conn.SelfSessionKeyPair, msg.SessionPublicKey); err != nil {
		return err
	}
	conn.LastReceivedPing = now

	// The handshake REQUEST consumed id 1 implicitly, so the ack is the
	// first real lossless packet on this direction; it goes through the
	// send window like any other so it is retransmitted until acked.
	ackID := conn.SendWindow.NextID()
	ack, err := codec.WrapLossless(d.chatIDHash, d.selfIdentity.EncryptPublicBytes(), conn.SharedKey, codec.KindHSResponseAck, ackID, nil)
	if err != nil {
		return err
	}
	conn.SendWindow.Store(now, ack)
	if err := d.send(ack); err != nil {
		return err
	}
	// The initiator sends the HS_RESPONSE_ACK itself, so it has already
	// completed step 3 of the handshake; the responder only
	// reaches that point in HandleResponseAck, once the ack arrives.
	conn.Handshaked = true
	metrics.HandshakesCompleted.WithLabelValues("success").Inc()

	return d.events.OnResponse(ctx, peerEncPub, msg)
}

// HandleResponseAck processes the inbound HS_RESPONSE_ACK lossless
// packet completing step 3 for the responder side.
func (d *Driver) HandleResponseAck(ctx context.Context, conn *peerconn.Conn, peerEncPub [32]byte) error {
	conn.Handshaked = true
	metrics.HandshakesCompleted.WithLabelValues("success").Inc()
	return d.events.OnResponseAck(ctx, peerEncPub)
}

// completeSharedKey derives and installs the session shared key common
// to both sides of the handshake. It does not itself mark the
// connection Handshaked: that only happens once the caller's side has
// genuinely completed step 3 (see handleResponse and HandleResponseAck).
func (d *Driver) completeSharedKey(conn *peerconn.Conn, selfSession gcrypto.KeyPair, peerSessionPub [32]byte) error {
	secret, err := selfSession.(interface {
		DeriveSharedSecretBytes([]byte) ([]byte, error)
	}).DeriveSharedSecretBytes(peerSessionPub[:])
	if err != nil {
		return err
	}
	sharedKey := peerconn.DeriveSharedKey(secret, rawPub32(selfSession), peerSessionPub)
	conn.CompleteHandshake(d.clock.Now(), selfSession, sharedKey)
	return nil
}

func (d *Driver) sendHandshake(peerEncPub [32]byte, msg Message) error {
	type rawPrivate interface{ RawPrivateKey() []byte }
	var selfPriv [32]byte
	if rp, ok := d.selfIdentity.Encrypt.(rawPrivate); ok {
		copy(selfPriv[:], rp.RawPrivateKey())
	}

	datagram, err := codec.WrapHandshake(d.chatIDHash, d.selfIdentity.EncryptPublicBytes(), peerEncPub, selfPriv, msg.Pack())
	if err != nil {
		return err
	}
	return d.send(datagram)
}

func rawPub32(kp gcrypto.KeyPair) [32]byte {
	type rawPublic interface{ RawPublicKey() []byte }
	var out [32]byte
	if rp, ok := kp.(rawPublic); ok {
		copy(out[:], rp.RawPublicKey())
	}
	return out
}
