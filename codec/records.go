package codec

import (
	"encoding/binary"
	"net"
)

// Fixed-layout record types packed/unpacked in canonical big-endian,
// fixed-field order. Each has a Pack/Unpack pair that round-trips.

// BroadcastHeader is the 12-byte inner header every BROADCAST payload
// begins with.
type BroadcastHeader struct {
	Type       BroadcastKind
	ChatIDHash uint32
	UnixTime   int64
}

// Pack encodes a BroadcastHeader as [type(1) | chat_id_hash(4) | unix_time(8)].
func (h BroadcastHeader) Pack() []byte {
	out := make([]byte, 1, 13)
	out[0] = byte(h.Type)
	out = appendUint32(out, h.ChatIDHash)
	out = appendInt64(out, h.UnixTime)
	return out
}

// UnpackBroadcastHeader decodes a BroadcastHeader and bytes consumed.
func UnpackBroadcastHeader(data []byte) (BroadcastHeader, int, error) {
	if len(data) < 13 {
		return BroadcastHeader{}, 0, errShortBuffer("broadcast header: short buffer")
	}
	h := BroadcastHeader{
		Type:       BroadcastKind(data[0]),
		ChatIDHash: binary.BigEndian.Uint32(data[1:5]),
		UnixTime:   int64(binary.BigEndian.Uint64(data[5:13])),
	}
	return h, 13, nil
}

// RelayNode is a TCP-relay rendezvous point: ip, port, and the
// relay's own public key.
type RelayNode struct {
	IP        net.IP
	Port      uint16
	PublicKey [32]byte
}

// Pack encodes a RelayNode as [ip_version(1B: 4 or 6) | ip_bytes | port(2B) | pubkey(32B)].
func (r RelayNode) Pack() []byte {
	ip4 := r.IP.To4()
	var ipVersion byte
	var ipBytes []byte
	if ip4 != nil {
		ipVersion = 4
		ipBytes = ip4
	} else {
		ipVersion = 6
		ipBytes = r.IP.To16()
		if ipBytes == nil {
			ipBytes = make(net.IP, 16)
		}
	}
	out := make([]byte, 1+len(ipBytes)+2+32)
	out[0] = ipVersion
	copy(out[1:], ipBytes)
	binary.BigEndian.PutUint16(out[1+len(ipBytes):], r.Port)
	copy(out[1+len(ipBytes)+2:], r.PublicKey[:])
	return out
}

// UnpackRelayNode decodes a RelayNode and returns the number of bytes
// consumed, so callers can chain further records after it.
func UnpackRelayNode(data []byte) (RelayNode, int, error) {
	if len(data) < 1 {
		return RelayNode{}, 0, errShortBuffer("relay node: missing ip version byte")
	}
	ipLen := 4
	if data[0] == 6 {
		ipLen = 16
	} else if data[0] != 4 {
		return RelayNode{}, 0, errMalformed("relay node: bad ip version byte")
	}
	total := 1 + ipLen + 2 + 32
	if len(data) < total {
		return RelayNode{}, 0, errShortBuffer("relay node: short buffer")
	}
	ip := make(net.IP, ipLen)
	copy(ip, data[1:1+ipLen])
	port := binary.BigEndian.Uint16(data[1+ipLen : 1+ipLen+2])
	var pub [32]byte
	copy(pub[:], data[1+ipLen+2:total])
	return RelayNode{IP: ip, Port: port, PublicKey: pub}, total, nil
}

// PeerInfo is the nick/status/role triple exchanged in
// PEER_INFO_REQUEST/RESPONSE and sync responses.
type PeerInfo struct {
	Nick   []byte // <= 128 bytes
	Status byte
	Role   byte
}

// Pack encodes PeerInfo as [nick_len(1B) | nick | status(1B) | role(1B)].
func (p PeerInfo) Pack() []byte {
	out := make([]byte, 1+len(p.Nick)+2)
	out[0] = byte(len(p.Nick))
	copy(out[1:], p.Nick)
	out[1+len(p.Nick)] = p.Status
	out[1+len(p.Nick)+1] = p.Role
	return out
}

// UnpackPeerInfo decodes a PeerInfo record and the number of bytes consumed.
func UnpackPeerInfo(data []byte) (PeerInfo, int, error) {
	if len(data) < 1 {
		return PeerInfo{}, 0, errShortBuffer("peer info: missing nick length")
	}
	nickLen := int(data[0])
	total := 1 + nickLen + 2
	if len(data) < total {
		return PeerInfo{}, 0, errShortBuffer("peer info: short buffer")
	}
	nick := make([]byte, nickLen)
	copy(nick, data[1:1+nickLen])
	return PeerInfo{Nick: nick, Status: data[1+nickLen], Role: data[1+nickLen+1]}, total, nil
}

// SharedStateFields is the signed portion of shared state:
// everything except the detached signature itself.
type SharedStateFields struct {
	FounderEncryptPublicKey [32]byte
	FounderSignPublicKey    [32]byte
	MaxPeers                uint32
	GroupName               []byte // 1-48 bytes
	Privacy                 byte
	Password                []byte // <= 32 bytes
	ModListHash             [32]byte
	Version                 uint32
}

// Pack encodes SharedStateFields canonically for both signing and the
// wire: [founder_enc_pk(32) | founder_sign_pk(32) | maxpeers(4) |
// name_len(1) | name | privacy(1) | pw_len(1) | password |
// mod_list_hash(32) | version(4)].
func (s SharedStateFields) Pack() []byte {
	out := make([]byte, 0, 32+32+4+1+len(s.GroupName)+1+1+len(s.Password)+32+4)
	out = append(out, s.FounderEncryptPublicKey[:]...)
	out = append(out, s.FounderSignPublicKey[:]...)
	out = appendUint32(out, s.MaxPeers)
	out = append(out, byte(len(s.GroupName)))
	out = append(out, s.GroupName...)
	out = append(out, s.Privacy)
	out = append(out, byte(len(s.Password)))
	out = append(out, s.Password...)
	out = append(out, s.ModListHash[:]...)
	out = appendUint32(out, s.Version)
	return out
}

// UnpackSharedStateFields decodes a SharedStateFields record.
func UnpackSharedStateFields(data []byte) (SharedStateFields, error) {
	const fixedBefore = 32 + 32 + 4
	if len(data) < fixedBefore+1 {
		return SharedStateFields{}, errShortBuffer("shared state: short buffer")
	}
	var s SharedStateFields
	copy(s.FounderEncryptPublicKey[:], data[0:32])
	copy(s.FounderSignPublicKey[:], data[32:64])
	s.MaxPeers = binary.BigEndian.Uint32(data[64:68])
	off := 68
	nameLen := int(data[off])
	off++
	if len(data) < off+nameLen+2 {
		return SharedStateFields{}, errShortBuffer("shared state: short name/privacy")
	}
	s.GroupName = append([]byte(nil), data[off:off+nameLen]...)
	off += nameLen
	s.Privacy = data[off]
	off++
	pwLen := int(data[off])
	off++
	if len(data) < off+pwLen+32+4 {
		return SharedStateFields{}, errShortBuffer("shared state: short password/hash/version")
	}
	s.Password = append([]byte(nil), data[off:off+pwLen]...)
	off += pwLen
	copy(s.ModListHash[:], data[off:off+32])
	off += 32
	s.Version = binary.BigEndian.Uint32(data[off : off+4])
	return s, nil
}

// PackModList encodes an ordered list of moderator signing public keys
// as [count(2B) | pk(32) * count].
func PackModList(mods [][32]byte) []byte {
	out := make([]byte, 2, 2+len(mods)*32)
	binary.BigEndian.PutUint16(out, uint16(len(mods)))
	for _, pk := range mods {
		out = append(out, pk[:]...)
	}
	return out
}

// UnpackModList decodes a mod-list record.
func UnpackModList(data []byte) ([][32]byte, error) {
	if len(data) < 2 {
		return nil, errShortBuffer("mod list: missing count")
	}
	count := int(binary.BigEndian.Uint16(data[:2]))
	need := 2 + count*32
	if len(data) < need {
		return nil, errShortBuffer("mod list: short buffer")
	}
	out := make([][32]byte, count)
	for i := 0; i < count; i++ {
		copy(out[i][:], data[2+i*32:2+(i+1)*32])
	}
	return out, nil
}

// SanctionTag distinguishes observer vs ban sanctions.
type SanctionTag byte

const (
	SanctionObserver SanctionTag = 1
	SanctionBan      SanctionTag = 2
)

// Sanction is a single signed moderation record.
type Sanction struct {
	Tag SanctionTag

	// Observer fields.
	ObserverPublicKey [32]byte

	// Ban fields.
	BanIP   net.IP
	BanPort uint16
	BanID   uint32

	IssuerPublicKey [32]byte
	Signature       [64]byte
}

// signedFields returns the portion of the sanction that is signed:
// everything except Signature itself.
func (s Sanction) signedFields() []byte {
	out := []byte{byte(s.Tag)}
	switch s.Tag {
	case SanctionObserver:
		out = append(out, s.ObserverPublicKey[:]...)
	case SanctionBan:
		ip4 := s.BanIP.To4()
		if ip4 == nil {
			ip4 = make(net.IP, 4)
		}
		out = append(out, ip4...)
		out = appendUint16(out, s.BanPort)
		out = appendUint32(out, s.BanID)
	}
	out = append(out, s.IssuerPublicKey[:]...)
	return out
}

// SignedFields exposes the signed payload for Sign/Verify callers in state.
func (s Sanction) SignedFields() []byte { return s.signedFields() }

// Pack encodes a Sanction including its signature.
func (s Sanction) Pack() []byte {
	return append(s.signedFields(), s.Signature[:]...)
}

// UnpackSanction decodes a Sanction record and bytes consumed.
func UnpackSanction(data []byte) (Sanction, int, error) {
	if len(data) < 1 {
		return Sanction{}, 0, errShortBuffer("sanction: missing tag")
	}
	tag := SanctionTag(data[0])
	var s Sanction
	s.Tag = tag
	off := 1
	switch tag {
	case SanctionObserver:
		if len(data) < off+32 {
			return Sanction{}, 0, errShortBuffer("sanction: short observer key")
		}
		copy(s.ObserverPublicKey[:], data[off:off+32])
		off += 32
	case SanctionBan:
		if len(data) < off+4+2+4 {
			return Sanction{}, 0, errShortBuffer("sanction: short ban fields")
		}
		ip := make(net.IP, 4)
		copy(ip, data[off:off+4])
		s.BanIP = ip
		off += 4
		s.BanPort = binary.BigEndian.Uint16(data[off : off+2])
		off += 2
		s.BanID = binary.BigEndian.Uint32(data[off : off+4])
		off += 4
	default:
		return Sanction{}, 0, errMalformed("sanction: unknown tag")
	}
	if len(data) < off+32+64 {
		return Sanction{}, 0, errShortBuffer("sanction: short issuer/signature")
	}
	copy(s.IssuerPublicKey[:], data[off:off+32])
	off += 32
	copy(s.Signature[:], data[off:off+64])
	off += 64
	return s, off, nil
}

// SanctionsCredsFields is the signed portion of the sanctions
// credentials.
type SanctionsCredsFields struct {
	Version   uint32
	Checksum  uint32
	SignerKey [32]byte
}

// Pack encodes SanctionsCredsFields as [version(4) | checksum(4) | signer_pk(32)].
func (c SanctionsCredsFields) Pack() []byte {
	out := make([]byte, 0, 4+4+32)
	out = appendUint32(out, c.Version)
	out = appendUint32(out, c.Checksum)
	out = append(out, c.SignerKey[:]...)
	return out
}

// UnpackSanctionsCredsFields decodes a SanctionsCredsFields record.
func UnpackSanctionsCredsFields(data []byte) (SanctionsCredsFields, error) {
	if len(data) < 4+4+32 {
		return SanctionsCredsFields{}, errShortBuffer("sanctions creds: short buffer")
	}
	var c SanctionsCredsFields
	c.Version = binary.BigEndian.Uint32(data[0:4])
	c.Checksum = binary.BigEndian.Uint32(data[4:8])
	copy(c.SignerKey[:], data[8:40])
	return c, nil
}

// TopicFields is the signed portion of a topic update.
type TopicFields struct {
	Topic     []byte // <= 512 bytes
	SetterKey [32]byte
	Version   uint32
}

// Pack encodes TopicFields as [topic_len(2) | topic | setter_pk(32) | version(4)].
func (t TopicFields) Pack() []byte {
	out := make([]byte, 0, 2+len(t.Topic)+32+4)
	out = appendUint16(out, uint16(len(t.Topic)))
	out = append(out, t.Topic...)
	out = append(out, t.SetterKey[:]...)
	out = appendUint32(out, t.Version)
	return out
}

// UnpackTopicFields decodes a TopicFields record.
func UnpackTopicFields(data []byte) (TopicFields, error) {
	if len(data) < 2 {
		return TopicFields{}, errShortBuffer("topic: missing length")
	}
	topicLen := int(binary.BigEndian.Uint16(data[:2]))
	need := 2 + topicLen + 32 + 4
	if len(data) < need {
		return TopicFields{}, errShortBuffer("topic: short buffer")
	}
	var t TopicFields
	t.Topic = append([]byte(nil), data[2:2+topicLen]...)
	copy(t.SetterKey[:], data[2+topicLen:2+topicLen+32])
	t.Version = binary.BigEndian.Uint32(data[2+topicLen+32 : need])
	return t, nil
}

// PeerAddress is the persisted-layout entry {public_key, tcp_relay_node}.
type PeerAddress struct {
	PublicKey [32]byte
	Relay     RelayNode
}

// Pack encodes a PeerAddress.
func (a PeerAddress) Pack() []byte {
	out := make([]byte, 32)
	copy(out, a.PublicKey[:])
	return append(out, a.Relay.Pack()...)
}

// UnpackPeerAddress decodes a PeerAddress and bytes consumed.
func UnpackPeerAddress(data []byte) (PeerAddress, int, error) {
	if len(data) < 32 {
		return PeerAddress{}, 0, errShortBuffer("peer address: short buffer")
	}
	var a PeerAddress
	copy(a.PublicKey[:], data[:32])
	relay, n, err := UnpackRelayNode(data[32:])
	if err != nil {
		return PeerAddress{}, 0, err
	}
	a.Relay = relay
	return a, 32 + n, nil
}

// AnnounceNode is a peer-announce record stored in the AnnounceStore.
type AnnounceNode struct {
	ChatID        [32]byte
	PeerPublicKey [32]byte
	Relay         RelayNode
	UnixTimestamp int64
}

// Pack encodes an AnnounceNode.
func (a AnnounceNode) Pack() []byte {
	out := make([]byte, 0, 32+32+8+1+32+2)
	out = append(out, a.ChatID[:]...)
	out = append(out, a.PeerPublicKey[:]...)
	relay := a.Relay.Pack()
	out = appendUint16(out, uint16(len(relay)))
	out = append(out, relay...)
	out = appendInt64(out, a.UnixTimestamp)
	return out
}

// UnpackAnnounceNode decodes an AnnounceNode and bytes consumed.
func UnpackAnnounceNode(data []byte) (AnnounceNode, int, error) {
	if len(data) < 32+32+2 {
		return AnnounceNode{}, 0, errShortBuffer("announce node: short buffer")
	}
	var a AnnounceNode
	copy(a.ChatID[:], data[0:32])
	copy(a.PeerPublicKey[:], data[32:64])
	relayLen := int(binary.BigEndian.Uint16(data[64:66]))
	off := 66
	if len(data) < off+relayLen+8 {
		return AnnounceNode{}, 0, errShortBuffer("announce node: short relay/timestamp")
	}
	relay, _, err := UnpackRelayNode(data[off : off+relayLen])
	if err != nil {
		return AnnounceNode{}, 0, err
	}
	a.Relay = relay
	off += relayLen
	a.UnixTimestamp = int64(binary.BigEndian.Uint64(data[off : off+8]))
	return a, off + 8, nil
}

func appendUint16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendInt64(b []byte, v int64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	return append(b, tmp[:]...)
}
