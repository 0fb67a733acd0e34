package handshake

import (
	"encoding/binary"

	"github.com/ingvar1995/toxcore/codec"
	"github.com/ingvar1995/toxcore/internal/logger"
)

// Pack encodes a Message in its fixed wire layout.
func (m Message) Pack() []byte {
	out := make([]byte, 0, 1+4+32+32+1+1+4)
	out = append(out, byte(m.Type))
	out = appendUint32(out, m.SenderPublicKeyHash)
	out = append(out, m.SessionPublicKey[:]...)
	out = append(out, m.SelfSigningPublicKey[:]...)
	out = append(out, byte(m.RequestType))
	out = append(out, byte(m.JoinType))
	out = appendUint32(out, m.SelfSharedStateVersion)
	out = append(out, m.Relay.Pack()...)
	return out
}

// Unpack decodes a Message from a HANDSHAKE packet's decrypted plaintext.
func Unpack(data []byte) (Message, error) {
	const fixedLen = 1 + 4 + 32 + 32 + 1 + 1 + 4
	if len(data) < fixedLen {
		return Message{}, logger.New(logger.CodeShortBuffer, "handshake: short message")
	}
	var m Message
	m.Type = Phase(data[0])
	m.SenderPublicKeyHash = binary.BigEndian.Uint32(data[1:5])
	copy(m.SessionPublicKey[:], data[5:37])
	copy(m.SelfSigningPublicKey[:], data[37:69])
	m.RequestType = RequestType(data[69])
	m.JoinType = JoinType(data[70])
	m.SelfSharedStateVersion = binary.BigEndian.Uint32(data[71:75])

	relay, _, err := codec.UnpackRelayNode(data[75:])
	if err != nil {
		return Message{}, err
	}
	m.Relay = relay
	return m, nil
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}
