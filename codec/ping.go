package codec

import "encoding/binary"

// PingFields is the body of a PING packet: the sender's four
// version counters, used by the receiver to detect it has fallen
// behind.
type PingFields struct {
	NumConfirmedPeers     uint32
	SharedStateVersion    uint32
	SanctionsCredsVersion uint32
	TopicVersion          uint32
}

// Pack encodes PingFields as four big-endian uint32s.
func (p PingFields) Pack() []byte {
	out := make([]byte, 16)
	binary.BigEndian.PutUint32(out[0:4], p.NumConfirmedPeers)
	binary.BigEndian.PutUint32(out[4:8], p.SharedStateVersion)
	binary.BigEndian.PutUint32(out[8:12], p.SanctionsCredsVersion)
	binary.BigEndian.PutUint32(out[12:16], p.TopicVersion)
	return out
}

// UnpackPingFields decodes a PingFields record.
func UnpackPingFields(data []byte) (PingFields, error) {
	if len(data) < 16 {
		return PingFields{}, errShortBuffer("ping: short buffer")
	}
	return PingFields{
		NumConfirmedPeers:     binary.BigEndian.Uint32(data[0:4]),
		SharedStateVersion:    binary.BigEndian.Uint32(data[4:8]),
		SanctionsCredsVersion: binary.BigEndian.Uint32(data[8:12]),
		TopicVersion:          binary.BigEndian.Uint32(data[12:16]),
	}, nil
}
