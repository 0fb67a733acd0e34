package transport

import "encoding/binary"

// packAck encodes a MESSAGE_ACK payload as [read_id(8) | request_id(8)].
func packAck(readID, requestID uint64) []byte {
	out := make([]byte, 16)
	binary.BigEndian.PutUint64(out[0:8], readID)
	binary.BigEndian.PutUint64(out[8:16], requestID)
	return out
}

func unpackAck(payload []byte) (readID, requestID uint64, err error) {
	if len(payload) < 16 {
		return 0, 0, errAckShort
	}
	return binary.BigEndian.Uint64(payload[0:8]), binary.BigEndian.Uint64(payload[8:16]), nil
}
