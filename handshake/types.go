// Package handshake implements the three-step group-chat connection
// handshake: REQUEST, RESPONSE, and HS_RESPONSE_ACK, plus the
// simultaneous-connect tie-break rule.
package handshake

import (
	"context"

	"github.com/ingvar1995/toxcore/codec"
)

// Phase is the handshake step an inbound/outbound HANDSHAKE packet
// represents.
type Phase int

const (
	PhaseRequest Phase = iota + 1
	PhaseResponse
	PhaseResponseAck
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseRequest:
		return "request"
	case PhaseResponse:
		return "response"
	case PhaseResponseAck:
		return "response_ack"
	default:
		return "unknown"
	}
}

// RequestType selects what follows a successful handshake.
type RequestType byte

const (
	RequestInviteRequest RequestType = iota + 1
	RequestPeerInfoExchange
)

// JoinType mirrors the chat's own join-type enum, carried in the
// handshake so the responder can validate it against the invite.
type JoinType byte

const (
	JoinPublic JoinType = iota + 1
	JoinPrivate
)

// Message is the decoded HANDSHAKE inner plaintext:
// [handshake_type(1) | sender_public_key_hash(4) | session_public_key(32) |
//
//	self_signing_public_key(32) | request_type(1) | join_type(1) |
//	self_shared_state_version(4) | packed_relay_node(variable)].
type Message struct {
	Type                   Phase
	SenderPublicKeyHash    uint32
	SessionPublicKey       [32]byte
	SelfSigningPublicKey   [32]byte
	RequestType            RequestType
	JoinType               JoinType
	SelfSharedStateVersion uint32
	Relay                  codec.RelayNode
}

// Events receives handshake-step notifications so the owning chat can
// create/confirm peers and kick off sync, without the handshake
// package needing to know about membership or state replication
// directly.
type Events interface {
	OnRequest(ctx context.Context, peerEncPub [32]byte, msg Message) error
	OnResponse(ctx context.Context, peerEncPub [32]byte, msg Message) error
	OnResponseAck(ctx context.Context, peerEncPub [32]byte) error
}

// NoopEvents is a default no-op Events implementation for tests.
type NoopEvents struct{}

func (NoopEvents) OnRequest(context.Context, [32]byte, Message) error  { return nil }
func (NoopEvents) OnResponse(context.Context, [32]byte, Message) error { return nil }
func (NoopEvents) OnResponseAck(context.Context, [32]byte) error       { return nil }
