// Package codec implements the group-chat wire format: outer
// framing, authenticated encryption, padding, nonce handling, and
// fixed-layout packing for the typed records carried inside packets
// (peer info, shared state, mod list, sanctions, topic, relay/peer
// addresses, announce nodes). Records are packed big-endian in a
// fixed field order; encryption uses the nacl/curve25519 family.
package codec

// PacketKind is the outer framing byte.
type PacketKind byte

const (
	PacketKindLossless  PacketKind = 0x5A
	PacketKindLossy     PacketKind = 0x5B
	PacketKindHandshake PacketKind = 0x5C
)

func (k PacketKind) String() string {
	switch k {
	case PacketKindLossless:
		return "LOSSLESS"
	case PacketKindLossy:
		return "LOSSY"
	case PacketKindHandshake:
		return "HANDSHAKE"
	default:
		return "UNKNOWN"
	}
}

// InnerKind is the single enum of inner packet kinds, stable
// across versions for wire compatibility.
type InnerKind byte

const (
	KindPing InnerKind = iota + 1
	KindMessageAck
	KindInviteRequest
	KindInviteResponse
	KindInviteResponseReject
	KindSyncRequest
	KindSyncResponse
	KindTopic
	KindSharedState
	KindModList
	KindSanctionsList
	KindHSResponseAck
	KindPeerInfoRequest
	KindPeerInfoResponse
	KindPeerAnnounce
	KindTCPRelays
	KindIPPort
	KindCustomPacket
	KindBroadcast
)

func (k InnerKind) String() string {
	switch k {
	case KindPing:
		return "PING"
	case KindMessageAck:
		return "MESSAGE_ACK"
	case KindInviteRequest:
		return "INVITE_REQUEST"
	case KindInviteResponse:
		return "INVITE_RESPONSE"
	case KindInviteResponseReject:
		return "INVITE_RESPONSE_REJECT"
	case KindSyncRequest:
		return "SYNC_REQUEST"
	case KindSyncResponse:
		return "SYNC_RESPONSE"
	case KindTopic:
		return "TOPIC"
	case KindSharedState:
		return "SHARED_STATE"
	case KindModList:
		return "MOD_LIST"
	case KindSanctionsList:
		return "SANCTIONS_LIST"
	case KindHSResponseAck:
		return "HS_RESPONSE_ACK"
	case KindPeerInfoRequest:
		return "PEER_INFO_REQUEST"
	case KindPeerInfoResponse:
		return "PEER_INFO_RESPONSE"
	case KindPeerAnnounce:
		return "PEER_ANNOUNCE"
	case KindTCPRelays:
		return "TCP_RELAYS"
	case KindIPPort:
		return "IP_PORT"
	case KindCustomPacket:
		return "CUSTOM_PACKET"
	case KindBroadcast:
		return "BROADCAST"
	default:
		return "UNKNOWN"
	}
}

// Lossless reports whether packets of this inner kind are always sent
// over the lossless (acked, ordered) channel.
func (k InnerKind) Lossless() bool {
	switch k {
	case KindPing, KindMessageAck, KindIPPort, KindTCPRelays, KindInviteResponseReject, KindCustomPacket:
		return false
	default:
		return true
	}
}

// BroadcastKind is the sub-type of a BROADCAST inner packet.
type BroadcastKind byte

const (
	BroadcastStatus BroadcastKind = iota + 1
	BroadcastNick
	BroadcastPlainMessage
	BroadcastActionMessage
	BroadcastPrivateMessage
	BroadcastPeerExit
	BroadcastRemovePeer
	BroadcastRemoveBan
	BroadcastSetMod
	BroadcastSetObserver
)

func (k BroadcastKind) String() string {
	switch k {
	case BroadcastStatus:
		return "STATUS"
	case BroadcastNick:
		return "NICK"
	case BroadcastPlainMessage:
		return "PLAIN_MESSAGE"
	case BroadcastActionMessage:
		return "ACTION_MESSAGE"
	case BroadcastPrivateMessage:
		return "PRIVATE_MESSAGE"
	case BroadcastPeerExit:
		return "PEER_EXIT"
	case BroadcastRemovePeer:
		return "REMOVE_PEER"
	case BroadcastRemoveBan:
		return "REMOVE_BAN"
	case BroadcastSetMod:
		return "SET_MOD"
	case BroadcastSetObserver:
		return "SET_OBSERVER"
	default:
		return "UNKNOWN"
	}
}

// MaxPacketSize is the hard ceiling on a group packet.
const MaxPacketSize = 65507

// Fixed field widths used throughout the outer frame and records.
const (
	chatIDHashLen = 4
	pubKeyLen     = 32
	nonceLen      = 24
	messageIDLen  = 8
)
